package api

import (
	"context"

	"github.com/iudanet/patrolkeeper/pkg/api"
)

//go:generate moq -out client_mock.go . ClientAPI

// ClientAPI определяет интерфейс клиента сервиса хранения.
// Единственный потребитель — sync reconciler: остальные компоненты
// движка не ходят в сеть напрямую, а кладут мутации в офлайн-очередь.
type ClientAPI interface {
	// Sync submits a batch of queued actions.
	// The response carries one result per action, matched by index.
	Sync(ctx context.Context, req api.SyncRequest) (*api.SyncResponse, error)

	// Health probes the server; used as the connectivity check.
	Health(ctx context.Context) error
}
