// Package round реализует машину состояний обхода и верификацию
// контрольных точек. Все операции локальные и синхронные: изменения,
// которые должны дойти до сервера, кладутся в офлайн-очередь, а не
// отправляются в сеть напрямую.
package round

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/patrolkeeper/internal/client/queue"
	"github.com/iudanet/patrolkeeper/internal/client/storage"
	"github.com/iudanet/patrolkeeper/internal/geo"
	"github.com/iudanet/patrolkeeper/internal/models"
	"github.com/iudanet/patrolkeeper/pkg/api"
)

// Controller владеет состоянием обхода и его верификаций.
// Переходы только вперед: NotStarted → InProgress → {Completed |
// EmergencyFinished}; терминальные статусы не покидаются.
type Controller struct {
	store    storage.RoundStorage
	queue    *queue.Queue
	verifier *Verifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewController creates a new round controller
func NewController(store storage.RoundStorage, q *queue.Queue, logger *slog.Logger) *Controller {
	return &Controller{
		store:    store,
		queue:    q,
		verifier: NewVerifier(store, q, logger),
		logger:   logger,
		now:      time.Now,
	}
}

// Start создает новый обход и переводит его в InProgress.
// ID генерируется локально (UUID), поэтому обход существует до
// подтверждения сервером; create уходит в очередь.
// Локальная проверка активного обхода рекомендательная — авторитетный
// инвариант "один активный обход на охранника" держит сервер.
func (c *Controller) Start(ctx context.Context, route *models.Route, guardID string) (*models.Round, error) {
	if route == nil || route.ID == "" {
		return nil, fmt.Errorf("route is required")
	}
	if len(route.Checkpoints) == 0 {
		return nil, fmt.Errorf("route %s has no checkpoints", route.ID)
	}
	if strings.TrimSpace(guardID) == "" {
		return nil, fmt.Errorf("guard id is required")
	}

	_, err := c.store.GetActiveRound(ctx, guardID)
	switch {
	case err == nil:
		return nil, ErrRoundAlreadyActive
	case !errors.Is(err, storage.ErrNoActiveRound):
		return nil, fmt.Errorf("failed to check active round: %w", err)
	}

	// Снимок маршрута: во время исполнения маршрут неизменяем
	if err := c.store.SaveRoute(ctx, route); err != nil {
		return nil, fmt.Errorf("failed to snapshot route: %w", err)
	}

	round := &models.Round{
		ID:        uuid.NewString(),
		RouteID:   route.ID,
		GuardID:   guardID,
		Status:    models.RoundInProgress,
		Mode:      models.ModeNormal,
		StartedAt: c.now().UTC(),
	}

	if err := c.store.SaveRound(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to save round: %w", err)
	}

	if _, err := c.queue.Enqueue(ctx, models.EntityRound, models.OpCreate, roundPayload(round)); err != nil {
		return nil, fmt.Errorf("failed to enqueue round create: %w", err)
	}

	c.logger.Info("round started",
		"round_id", round.ID,
		"route_id", route.ID,
		"guard_id", guardID)

	return round, nil
}

// Verify делегирует верификацию контрольной точки.
// Статус обхода при этом не меняется.
func (c *Controller) Verify(ctx context.Context, roundID, checkpointID string, evidence Evidence) (*models.CheckpointVerification, error) {
	round, route, err := c.load(ctx, roundID)
	if err != nil {
		return nil, err
	}

	return c.verifier.Verify(ctx, round, route, checkpointID, evidence)
}

// Complete завершает обход штатно.
// Допустимо только из InProgress и только когда каждая контрольная
// точка маршрута имеет верификацию.
func (c *Controller) Complete(ctx context.Context, roundID string) (*models.Round, error) {
	round, route, err := c.load(ctx, roundID)
	if err != nil {
		return nil, err
	}

	if round.Status != models.RoundInProgress {
		return nil, fmt.Errorf("%w: status %s", ErrRoundNotInProgress, round.Status)
	}

	verifications, err := c.store.ListVerifications(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list verifications: %w", err)
	}

	if len(verifications) != len(route.Checkpoints) {
		return nil, fmt.Errorf("%w: %d of %d verified",
			ErrIncompleteRoute, len(verifications), len(route.Checkpoints))
	}

	completedAt := c.now().UTC()
	round.Status = models.RoundCompleted
	round.CompletedAt = &completedAt
	round.CompletionRate = 1

	if err := c.store.SaveRound(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to save round: %w", err)
	}

	if _, err := c.queue.Enqueue(ctx, models.EntityRound, models.OpUpdate, roundPayload(round)); err != nil {
		return nil, fmt.Errorf("failed to enqueue round update: %w", err)
	}

	c.logger.Info("round completed", "round_id", round.ID)

	return round, nil
}

// EmergencyFinish завершает обход аварийно.
// Требования к полноте маршрута нет, но нужно уже созданное происшествие
// с непустым описанием, привязанное к этому обходу. CompletionRate
// фиксирует фактический прогресс (может быть меньше 100%).
func (c *Controller) EmergencyFinish(ctx context.Context, roundID string, occurrence *models.Occurrence) (*models.Round, error) {
	round, route, err := c.load(ctx, roundID)
	if err != nil {
		return nil, err
	}

	if round.Status != models.RoundInProgress {
		return nil, fmt.Errorf("%w: status %s", ErrRoundNotInProgress, round.Status)
	}

	if occurrence == nil || strings.TrimSpace(occurrence.Description) == "" || occurrence.RoundID != round.ID {
		return nil, ErrOccurrenceRequired
	}

	verifications, err := c.store.ListVerifications(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list verifications: %w", err)
	}

	completedAt := c.now().UTC()
	round.Status = models.RoundEmergencyFinished
	round.Mode = models.ModeEmergency
	round.CompletedAt = &completedAt
	round.CompletionRate = float64(len(verifications)) / float64(len(route.Checkpoints))

	if err := c.store.SaveRound(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to save round: %w", err)
	}

	if _, err := c.queue.Enqueue(ctx, models.EntityRound, models.OpUpdate, roundPayload(round)); err != nil {
		return nil, fmt.Errorf("failed to enqueue round update: %w", err)
	}

	c.logger.Warn("round emergency finished",
		"round_id", round.ID,
		"occurrence_id", occurrence.ID,
		"completion_rate", round.CompletionRate)

	return round, nil
}

// Progress описывает состояние обхода для отображения
type Progress struct {
	Next           *models.Checkpoint // следующая непроверенная точка (по Order)
	DistanceMeters *float64           // расстояние до нее от текущей позиции
	BearingDegrees *float64           // азимут на нее от текущей позиции
	Verified       int
	Total          int
	CompletionRate float64
}

// Progress возвращает производное представление прогресса обхода.
// "Следующая точка" вычисляется из верификаций, а не хранится:
// второй источник истины здесь не нужен.
func (c *Controller) Progress(ctx context.Context, roundID string, at *models.Coordinates) (*Progress, error) {
	round, route, err := c.load(ctx, roundID)
	if err != nil {
		return nil, err
	}

	verifications, err := c.store.ListVerifications(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list verifications: %w", err)
	}

	verified := make(map[string]bool, len(verifications))
	for _, v := range verifications {
		verified[v.CheckpointID] = true
	}

	progress := &Progress{
		Verified:       len(verifications),
		Total:          len(route.Checkpoints),
		CompletionRate: float64(len(verifications)) / float64(len(route.Checkpoints)),
		Next:           models.NextCheckpoint(route, verified),
	}

	if at != nil && progress.Next != nil && progress.Next.Coordinates != nil {
		distance := geo.DistanceMeters(at.Latitude, at.Longitude,
			progress.Next.Coordinates.Latitude, progress.Next.Coordinates.Longitude)
		bearing := geo.BearingDegrees(at.Latitude, at.Longitude,
			progress.Next.Coordinates.Latitude, progress.Next.Coordinates.Longitude)
		progress.DistanceMeters = &distance
		progress.BearingDegrees = &bearing
	}

	return progress, nil
}

// Active возвращает текущий InProgress обход охранника
func (c *Controller) Active(ctx context.Context, guardID string) (*models.Round, error) {
	return c.store.GetActiveRound(ctx, guardID)
}

// load загружает обход и снимок его маршрута
func (c *Controller) load(ctx context.Context, roundID string) (*models.Round, *models.Route, error) {
	round, err := c.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get round: %w", err)
	}

	route, err := c.store.GetRoute(ctx, round.RouteID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get route snapshot: %w", err)
	}

	return round, route, nil
}

// roundPayload конвертирует обход в API формат для очереди
func roundPayload(round *models.Round) api.RoundPayload {
	return api.RoundPayload{
		ID:             round.ID,
		RouteID:        round.RouteID,
		GuardID:        round.GuardID,
		Status:         string(round.Status),
		Mode:           string(round.Mode),
		StartedAt:      round.StartedAt,
		CompletedAt:    round.CompletedAt,
		CompletionRate: round.CompletionRate,
	}
}
