// Package cli реализует команды клиента охранника.
// Каждая команда работает с локальным хранилищем и офлайн-очередью;
// сеть нужна только командам sync и watch.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/iudanet/patrolkeeper/internal/client/occurrence"
	"github.com/iudanet/patrolkeeper/internal/client/queue"
	"github.com/iudanet/patrolkeeper/internal/client/round"
	"github.com/iudanet/patrolkeeper/internal/client/storage"
	"github.com/iudanet/patrolkeeper/internal/client/sync"
	"github.com/iudanet/patrolkeeper/internal/models"
)

type Cli struct {
	controller  *round.Controller
	occurrences *occurrence.Service
	queue       *queue.Queue
	reconciler  *sync.Reconciler
	guardID     string
	role        models.Role
}

func New(
	controller *round.Controller,
	occurrences *occurrence.Service,
	q *queue.Queue,
	reconciler *sync.Reconciler,
	guardID string,
	role models.Role,
) *Cli {
	return &Cli{
		controller:  controller,
		occurrences: occurrences,
		queue:       q,
		reconciler:  reconciler,
		guardID:     guardID,
		role:        role,
	}
}

// mutating перечисляет команды, изменяющие состояние обхода
func mutating(command string) bool {
	switch command {
	case "start", "verify", "complete", "emergency", "panic":
		return true
	}
	return false
}

// Run выполняет одну команду клиента
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	if mutating(command) {
		switch c.role {
		case models.RoleGuard:
			// Обходы исполняет только охранник
		case models.RoleSupervisor, models.RoleAdmin:
			return fmt.Errorf("command %q requires the guard role, current role is %q", command, c.role)
		default:
			return fmt.Errorf("unknown role: %q", c.role)
		}
	}

	switch command {
	case "start":
		return c.runStart(ctx, args)
	case "verify":
		return c.runVerify(ctx, args)
	case "next":
		return c.runNext(ctx, args)
	case "status":
		return c.runStatus(ctx)
	case "complete":
		return c.runComplete(ctx)
	case "emergency":
		return c.runEmergency(ctx, args)
	case "panic":
		return c.runPanic(ctx, args)
	case "pending":
		return c.runPending(ctx)
	case "sync":
		return c.runSync(ctx)
	case "watch":
		return c.runWatch(ctx, args)
	default:
		PrintUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

// activeRound возвращает активный обход охранника или понятную ошибку
func (c *Cli) activeRound(ctx context.Context) (*models.Round, error) {
	active, err := c.controller.Active(ctx, c.guardID)
	if err != nil {
		if errors.Is(err, storage.ErrNoActiveRound) {
			return nil, errors.New("no active round, run 'patrolkeeper start' first")
		}
		return nil, fmt.Errorf("failed to look up active round: %w", err)
	}
	return active, nil
}

// loadRoute читает снимок маршрута из JSON файла
func loadRoute(path string) (*models.Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read route file: %w", err)
	}

	var route models.Route
	if err := json.Unmarshal(data, &route); err != nil {
		return nil, fmt.Errorf("failed to parse route file: %w", err)
	}

	return &route, nil
}

func PrintUsage() {
	fmt.Println("PatrolKeeper Client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  patrolkeeper [OPTIONS] COMMAND")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version         Show version information")
	fmt.Println("  --server URL      Server URL (default: http://localhost:8080)")
	fmt.Println("  --db PATH         Path to local database (default: patrolkeeper-client.db)")
	fmt.Println("  --guard ID        Guard identifier (or PATROLKEEPER_GUARD_ID env var)")
	fmt.Println("  --role ROLE       User role: guard, supervisor or admin (default: guard)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  start --route FILE       Start a round from a route snapshot file")
	fmt.Println("  verify --checkpoint ID   Verify a checkpoint of the active round")
	fmt.Println("      --code CODE              scanned code for qrcode checkpoints")
	fmt.Println("      --photo REF              photo reference for photo checkpoints")
	fmt.Println("      --lat N --lon N          current position for geolocation checkpoints")
	fmt.Println("  next [--lat N --lon N]   Show the next unverified checkpoint")
	fmt.Println("  status                   Show active round, progress and queue state")
	fmt.Println("  complete                 Complete the active round (all checkpoints verified)")
	fmt.Println("  emergency --reason TEXT --confirm")
	fmt.Println("                           Emergency-finish the active round")
	fmt.Println("  panic [--reason TEXT]    Raise a standalone emergency occurrence")
	fmt.Println("  pending                  List queued offline actions")
	fmt.Println("  sync                     Drain the offline queue to the server")
	fmt.Println("  watch [--interval DUR]   Keep syncing until interrupted")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  patrolkeeper --guard guard-17 start --route warehouse.json")
	fmt.Println("  patrolkeeper --guard guard-17 verify --checkpoint cp-3 --code QR-553")
	fmt.Println("  patrolkeeper --guard guard-17 verify --checkpoint cp-5 --lat 59.93 --lon 30.36")
	fmt.Println("  patrolkeeper --guard guard-17 emergency --reason 'access point blocked' --confirm")
	fmt.Println("  patrolkeeper --guard guard-17 watch --interval 30s")
}
