// Package queue реализует офлайн-очередь действий: долговечный,
// упорядоченный журнал мутаций, которые еще не подтверждены сервером.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/patrolkeeper/internal/client/storage"
	"github.com/iudanet/patrolkeeper/internal/models"
)

// Queue владеет журналом OfflineAction и наблюдает за связностью.
// Продюсеры (контроллер обхода, верификатор, происшествия) добавляют
// действия; единственный потребитель — sync reconciler, получающий
// сигналы на drain через канал Triggers.
type Queue struct {
	actions  storage.ActionStorage
	logger   *slog.Logger
	triggers chan struct{}
	now      func() time.Time
	online   atomic.Bool
}

// New creates a new offline action queue
func New(actions storage.ActionStorage, logger *slog.Logger) *Queue {
	return &Queue{
		actions: actions,
		logger:  logger,
		// Буфер 1: совпавшие триггеры (reconnect + таймер) схлопываются
		// в один проход drain
		triggers: make(chan struct{}, 1),
		now:      time.Now,
	}
}

// Enqueue сериализует payload и добавляет действие в журнал.
// Если связность есть, неблокирующе сигналит reconciler'у начать drain.
func (q *Queue) Enqueue(ctx context.Context, entity models.EntityType, op models.Operation, payload any) (*models.OfflineAction, error) {
	if !entity.Valid() {
		return nil, fmt.Errorf("invalid entity type: %q", entity)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal action payload: %w", err)
	}

	action := &models.OfflineAction{
		ID:         uuid.NewString(),
		EntityType: entity,
		Operation:  op,
		Payload:    data,
		EnqueuedAt: q.now().UTC(),
		Status:     models.ActionPending,
	}

	if err := q.actions.Append(ctx, action); err != nil {
		return nil, fmt.Errorf("failed to append action: %w", err)
	}

	q.logger.Debug("action enqueued",
		"action_id", action.ID,
		"entity_type", action.EntityType,
		"operation", action.Operation,
		"seq", action.Seq)

	if q.Online() {
		q.TriggerDrain()
	}

	return action, nil
}

// List возвращает снимок журнала для диагностики ("N pending changes")
func (q *Queue) List(ctx context.Context) ([]*models.OfflineAction, error) {
	return q.actions.ListAll(ctx)
}

// PendingCount возвращает количество действий, ожидающих отправки
func (q *Queue) PendingCount(ctx context.Context) (int, error) {
	return q.actions.PendingCount(ctx)
}

// Online reports the last observed connectivity state.
func (q *Queue) Online() bool {
	return q.online.Load()
}

// SetOnline обновляет сигнал связности.
// Переход offline→online всегда запускает drain.
func (q *Queue) SetOnline(online bool) {
	was := q.online.Swap(online)
	if !was && online {
		q.logger.Info("connectivity restored, triggering drain")
		q.TriggerDrain()
	}
}

// TriggerDrain неблокирующе сигналит потребителю.
// Если сигнал уже ожидает обработки, новый схлопывается с ним.
func (q *Queue) TriggerDrain() {
	select {
	case q.triggers <- struct{}{}:
	default:
	}
}

// Triggers возвращает канал сигналов drain для единственного потребителя
func (q *Queue) Triggers() <-chan struct{} {
	return q.triggers
}
