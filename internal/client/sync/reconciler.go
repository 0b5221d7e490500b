// Package sync реализует reconciler офлайн-очереди: единственный
// компонент движка, выполняющий сетевой ввод-вывод.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	httpClient "github.com/iudanet/patrolkeeper/internal/client/api"
	"github.com/iudanet/patrolkeeper/internal/client/queue"
	"github.com/iudanet/patrolkeeper/internal/client/storage"
	"github.com/iudanet/patrolkeeper/internal/models"
	"github.com/iudanet/patrolkeeper/pkg/api"
)

// ErrResultMismatch возвращается, когда длина results не совпадает с
// длиной отправленного батча. Сопоставление строго позиционное, поэтому
// угадывать нечего: весь батч остается pending и уходит в следующий drain.
var ErrResultMismatch = errors.New("sync results length does not match submitted batch")

const (
	// retryBaseDelay начальная задержка между попытками отправки батча
	retryBaseDelay = 500 * time.Millisecond
	// retryMaxAttempts попыток отправки батча за один drain
	retryMaxAttempts = 5
)

// DrainResult contains the outcome of a single drain pass
type DrainResult struct {
	Submitted int  // действий отправлено на сервер
	Synced    int  // подтверждено и удалено из очереди
	Failed    int  // окончательно отклонено (4xx), помечено failed
	Remaining int  // осталось pending до следующего drain
	Skipped   bool // drain уже выполнялся, проход схлопнут
}

// Reconciler drains the offline action queue against the remote service.
// FIFO-порядок сохраняется в пределах одного entityType: после временного
// отказа более поздние действия того же типа не обрабатываются в этом
// проходе, чтобы update не применился раньше своего create.
type Reconciler struct {
	apiClient  httpClient.ClientAPI
	actions    storage.ActionStorage
	queue      *queue.Queue
	logger     *slog.Logger
	newBackoff func() retry.Backoff
	draining   atomic.Bool
}

// NewReconciler creates a new sync reconciler
func NewReconciler(apiClient httpClient.ClientAPI, actions storage.ActionStorage, q *queue.Queue, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		apiClient: apiClient,
		actions:   actions,
		queue:     q,
		logger:    logger,
		newBackoff: func() retry.Backoff {
			return retry.WithMaxRetries(retryMaxAttempts-1, retry.NewExponential(retryBaseDelay))
		},
	}
}

// Drain отправляет pending-действия на сервер одним батчем.
// Одновременно выполняется не более одного прохода: совпавшие триггеры
// (reconnect + таймер) схлопываются, второй вызов возвращает Skipped.
func (r *Reconciler) Drain(ctx context.Context) (*DrainResult, error) {
	if !r.draining.CompareAndSwap(false, true) {
		return &DrainResult{Skipped: true}, nil
	}
	defer r.draining.Store(false)

	result := &DrainResult{}

	batch, err := r.actions.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending actions: %w", err)
	}

	if len(batch) == 0 {
		return result, nil
	}

	result.Submitted = len(batch)

	// Конвертируем журнал в API формат, сохраняя порядок
	apiActions := make([]api.SyncAction, 0, len(batch))
	for _, action := range batch {
		apiActions = append(apiActions, api.SyncAction{
			ID:         action.ID,
			EntityType: string(action.EntityType),
			Operation:  string(action.Operation),
			Payload:    action.Payload,
			EnqueuedAt: action.EnqueuedAt,
		})
	}

	r.logger.Info("draining offline queue", "actions", len(batch))

	resp, err := r.submit(ctx, api.SyncRequest{Actions: apiActions})
	if err != nil {
		// Транспортный отказ: весь батч остается pending до следующего
		// триггера (reconnect, таймер, ручной sync)
		result.Remaining = len(batch)
		r.queue.SetOnline(false)
		return result, fmt.Errorf("sync submit failed: %w", err)
	}

	if len(resp.Results) != len(batch) {
		result.Remaining = len(batch)
		r.logger.Error("sync response length mismatch",
			"submitted", len(batch),
			"results", len(resp.Results))
		return result, ErrResultMismatch
	}

	// Сопоставляем результаты с действиями по индексу.
	// После временного отказа блокируем более поздние действия того же
	// entityType до следующего прохода.
	blocked := make(map[models.EntityType]bool)

	for i, res := range resp.Results {
		action := batch[i]

		if err := ctx.Err(); err != nil {
			// Приложение останавливается: бросаем проход чисто,
			// необработанные действия остаются pending
			result.Remaining = len(batch) - i
			return result, err
		}

		if blocked[action.EntityType] {
			result.Remaining++
			continue
		}

		switch {
		case res.Success:
			if err := r.actions.Delete(ctx, action.Seq); err != nil {
				return result, fmt.Errorf("failed to remove synced action %s: %w", action.ID, err)
			}
			result.Synced++

		case !res.Retryable:
			// Окончательный отказ (malformed payload и т.п.):
			// бесконечный ретрай бессмыслен, помечаем для ручного разбора
			if err := r.actions.MarkFailed(ctx, action.Seq, res.Error); err != nil {
				return result, fmt.Errorf("failed to mark action %s failed: %w", action.ID, err)
			}
			result.Failed++
			r.logger.Warn("action permanently rejected",
				"action_id", action.ID,
				"entity_type", action.EntityType,
				"error", res.Error)

		default:
			// Временный отказ: действие остается pending, хвост того же
			// типа не трогаем в этом проходе
			blocked[action.EntityType] = true
			result.Remaining++
			r.logger.Info("action deferred",
				"action_id", action.ID,
				"entity_type", action.EntityType,
				"error", res.Error)
		}
	}

	r.logger.Info("drain completed",
		"submitted", result.Submitted,
		"synced", result.Synced,
		"failed", result.Failed,
		"remaining", result.Remaining)

	return result, nil
}

// submit отправляет батч с ограниченным экспоненциальным backoff.
// Ретраятся только транспортные ошибки и 5xx; 4xx на весь батч не ретраится.
func (r *Reconciler) submit(ctx context.Context, req api.SyncRequest) (*api.SyncResponse, error) {
	var resp *api.SyncResponse

	err := retry.Do(ctx, r.newBackoff(), func(ctx context.Context) error {
		var err error
		resp, err = r.apiClient.Sync(ctx, req)
		if err == nil {
			return nil
		}

		var statusErr *httpClient.StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return err
		}

		return retry.RetryableError(err)
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// Run запускает долгоживущий цикл drain: один потребитель, питаемый
// тремя независимыми событиями — восстановление связности, периодический
// таймер и ручной триггер. Завершается по отмене контекста.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Начальная проба связности
	r.probe(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-r.queue.Triggers():
			r.drainAndLog(ctx)

		case <-ticker.C:
			r.probe(ctx)
			if r.queue.Online() {
				r.drainAndLog(ctx)
			}
		}
	}
}

// probe обновляет сигнал связности по health-эндпоинту сервера
func (r *Reconciler) probe(ctx context.Context) {
	err := r.apiClient.Health(ctx)
	r.queue.SetOnline(err == nil)
}

// drainAndLog поглощает ошибки drain: транспортный отказ не должен
// останавливать цикл и никогда не всплывает как жесткая ошибка
func (r *Reconciler) drainAndLog(ctx context.Context) {
	if _, err := r.Drain(ctx); err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Warn("drain pass failed, actions kept pending", "error", err)
	}
}
