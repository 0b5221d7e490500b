package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/patrolkeeper/internal/models"
	"github.com/iudanet/patrolkeeper/internal/server/storage"
)

// UpsertRound creates or updates a round keyed by its client ID.
// Терминальные обходы не изменяются: повторная доставка update после
// завершения — no-op, статус назад не откатывается.
func (s *Storage) UpsertRound(ctx context.Context, round *models.Round) error {
	query := `
		INSERT INTO rounds (id, route_id, guard_id, status, mode, started_at, completed_at, completion_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			mode = excluded.mode,
			completed_at = excluded.completed_at,
			completion_rate = excluded.completion_rate
		WHERE rounds.status NOT IN ('completed', 'emergency_finished')
	`

	_, err := s.db.ExecContext(ctx, query,
		round.ID,
		round.RouteID,
		round.GuardID,
		round.Status,
		round.Mode,
		round.StartedAt,
		round.CompletedAt,
		round.CompletionRate,
	)

	if err != nil {
		// Частичный уникальный индекс: другой активный обход этого охранника
		if strings.Contains(err.Error(), "UNIQUE constraint failed: rounds.guard_id") {
			return storage.ErrActiveRoundExists
		}
		return fmt.Errorf("failed to upsert round: %w", err)
	}

	return nil
}

// GetRound retrieves a round by ID
func (s *Storage) GetRound(ctx context.Context, id string) (*models.Round, error) {
	query := `
		SELECT id, route_id, guard_id, status, mode, started_at, completed_at, completion_rate
		FROM rounds
		WHERE id = ?
	`

	round := &models.Round{}
	var completedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&round.ID,
		&round.RouteID,
		&round.GuardID,
		&round.Status,
		&round.Mode,
		&round.StartedAt,
		&completedAt,
		&round.CompletionRate,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get round: %w", err)
	}

	if completedAt.Valid {
		round.CompletedAt = &completedAt.Time
	}

	return round, nil
}
