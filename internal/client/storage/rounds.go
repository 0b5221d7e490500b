package storage

import (
	"context"

	"github.com/iudanet/patrolkeeper/internal/models"
)

// RoundStorage определяет интерфейс локального кэша обходов на клиенте.
// Это рекомендательное состояние: авторитетный инвариант "один активный
// обход на охранника" обеспечивает только сервер.
type RoundStorage interface {
	// SaveRoute stores a route snapshot taken at round start.
	// The snapshot keeps the route immutable for the round's lifetime.
	SaveRoute(ctx context.Context, route *models.Route) error

	// GetRoute retrieves a route snapshot by ID.
	// Returns ErrRouteNotFound if the snapshot doesn't exist.
	GetRoute(ctx context.Context, id string) (*models.Route, error)

	// SaveRound stores or updates a round.
	SaveRound(ctx context.Context, round *models.Round) error

	// GetRound retrieves a round by ID.
	// Returns ErrRoundNotFound if the round doesn't exist.
	GetRound(ctx context.Context, id string) (*models.Round, error)

	// GetActiveRound returns the guard's round with status InProgress.
	// Returns ErrNoActiveRound if there is none.
	GetActiveRound(ctx context.Context, guardID string) (*models.Round, error)

	// SaveVerification stores a checkpoint verification.
	SaveVerification(ctx context.Context, v *models.CheckpointVerification) error

	// GetVerification retrieves a verification by (roundID, checkpointID).
	// Returns ErrVerificationNotFound if it doesn't exist.
	GetVerification(ctx context.Context, roundID, checkpointID string) (*models.CheckpointVerification, error)

	// ListVerifications returns all verifications of the round.
	ListVerifications(ctx context.Context, roundID string) ([]*models.CheckpointVerification, error)
}
