package storage

import (
	"context"

	"github.com/iudanet/patrolkeeper/internal/models"
)

// ActionStorage определяет интерфейс долговечного журнала офлайн-действий.
// Журнал append-only и упорядочен: Seq присваивается при добавлении и
// задает FIFO-порядок; запись удаляется только после подтверждения сервером.
type ActionStorage interface {
	// Append stores the action and assigns its sequence number.
	Append(ctx context.Context, action *models.OfflineAction) error

	// ListPending returns pending actions in append order.
	// A corrupted journal is reset to empty with a warning instead of
	// failing the engine (data loss is preferred over a dead queue).
	ListPending(ctx context.Context) ([]*models.OfflineAction, error)

	// ListAll returns all actions (pending and failed) in append order.
	ListAll(ctx context.Context) ([]*models.OfflineAction, error)

	// Delete removes a confirmed action from the journal.
	Delete(ctx context.Context, seq uint64) error

	// MarkFailed marks the action as permanently rejected by the server.
	// Failed actions are kept for manual inspection and never retried.
	MarkFailed(ctx context.Context, seq uint64, reason string) error

	// PendingCount returns the number of pending actions.
	PendingCount(ctx context.Context) (int, error)

	// Reset removes all actions from the journal.
	Reset(ctx context.Context) error
}
