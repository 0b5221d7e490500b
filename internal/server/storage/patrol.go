package storage

import (
	"context"

	"github.com/iudanet/patrolkeeper/internal/models"
)

// RoundStorage определяет интерфейс хранения обходов.
// Идентичность сущности — клиентский ID: повторная доставка того же
// создания/обновления применяется как upsert, а не как дубликат.
type RoundStorage interface {
	// UpsertRound creates or updates a round keyed by its client ID.
	// Terminal rounds are never modified, so a redelivered update is a no-op.
	// Returns ErrActiveRoundExists when a different in-progress round
	// already exists for the guard.
	UpsertRound(ctx context.Context, round *models.Round) error

	// GetRound retrieves a round by ID.
	// Returns ErrRoundNotFound if the round doesn't exist.
	GetRound(ctx context.Context, id string) (*models.Round, error)
}

// VerificationStorage определяет интерфейс хранения отметок
type VerificationStorage interface {
	// UpsertVerification stores a verification keyed by (roundID, checkpointID).
	// If the pair already exists, the stored record is returned unchanged
	// and created is false: a duplicate check-in is a successful no-op.
	UpsertVerification(ctx context.Context, v *models.CheckpointVerification) (stored *models.CheckpointVerification, created bool, err error)

	// ListVerifications returns all verifications of the round.
	ListVerifications(ctx context.Context, roundID string) ([]*models.CheckpointVerification, error)
}

// OccurrenceStorage определяет интерфейс хранения происшествий
type OccurrenceStorage interface {
	// UpsertOccurrence creates or updates an occurrence keyed by its client ID.
	UpsertOccurrence(ctx context.Context, occ *models.Occurrence) error

	// GetOccurrence retrieves an occurrence by ID.
	// Returns ErrOccurrenceNotFound if it doesn't exist.
	GetOccurrence(ctx context.Context, id string) (*models.Occurrence, error)
}
