package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/patrolkeeper/internal/client/api"
	"github.com/iudanet/patrolkeeper/internal/client/cli"
	"github.com/iudanet/patrolkeeper/internal/client/occurrence"
	"github.com/iudanet/patrolkeeper/internal/client/queue"
	"github.com/iudanet/patrolkeeper/internal/client/round"
	"github.com/iudanet/patrolkeeper/internal/client/storage/boltdb"
	"github.com/iudanet/patrolkeeper/internal/client/sync"
	"github.com/iudanet/patrolkeeper/internal/models"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Server URL")
	dbPath := flag.String("db", "patrolkeeper-client.db", "Path to local database")
	guardID := flag.String("guard", os.Getenv("PATROLKEEPER_GUARD_ID"), "Guard identifier")
	roleName := flag.String("role", "guard", "User role (guard, supervisor, admin)")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	// Получаем команду
	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage()
		os.Exit(1)
	}
	command := args[0]

	if *guardID == "" {
		fmt.Fprintln(os.Stderr, "Error: guard id is required (--guard or PATROLKEEPER_GUARD_ID)")
		os.Exit(1)
	}

	role, err := models.ParseRole(*roleName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Клиентский лог по умолчанию тихий, команды печатают результат сами
	logLevel := slog.LevelWarn
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	// Контекст отменяется по Ctrl+C: важно для watch
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Открываем BoltDB storage
	boltStorage, err := boltdb.New(ctx, *dbPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	// Собираем сервисы клиента
	apiClient := api.NewClient(*serverURL)
	q := queue.New(boltStorage, logger)
	controller := round.NewController(boltStorage, q, logger)
	occurrences := occurrence.NewService(q, logger)
	reconciler := sync.NewReconciler(apiClient, boltStorage, q, logger)

	c := cli.New(controller, occurrences, q, reconciler, *guardID, role)

	if err := c.Run(ctx, command, args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("PatrolKeeper Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
