// Package occurrence реализует путь исключительного завершения обхода
// и автономную тревожную кнопку.
package occurrence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/patrolkeeper/internal/client/queue"
	"github.com/iudanet/patrolkeeper/internal/models"
	"github.com/iudanet/patrolkeeper/internal/validation"
	"github.com/iudanet/patrolkeeper/pkg/api"
)

// ErrNotConfirmed аварийное завершение не подтверждено явно.
// Подтверждение — отдельный шаг, отличный от штатного завершения,
// чтобы исключить случайное срабатывание.
var ErrNotConfirmed = errors.New("emergency finish requires explicit confirmation")

// Service создает записи о происшествиях и кладет их в офлайн-очередь
type Service struct {
	queue  *queue.Queue
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new occurrence service
func NewService(q *queue.Queue, logger *slog.Logger) *Service {
	return &Service{
		queue:  q,
		logger: logger,
		now:    time.Now,
	}
}

// RaiseEmergencyFinish создает происшествие для аварийного завершения
// обхода: двухшаговый протокол — явное подтверждение плюс обязательное
// текстовое обоснование. Происшествие создается и ставится в очередь
// ДО перехода обхода в EmergencyFinished.
func (s *Service) RaiseEmergencyFinish(ctx context.Context, round *models.Round, description string, location *models.Coordinates, confirmed bool) (*models.Occurrence, error) {
	if !confirmed {
		return nil, ErrNotConfirmed
	}

	if round == nil {
		return nil, fmt.Errorf("round is required")
	}

	if err := validation.ValidateDescription(description); err != nil {
		return nil, fmt.Errorf("invalid justification: %w", err)
	}

	occ := &models.Occurrence{
		ID:          uuid.NewString(),
		RoundID:     round.ID,
		Severity:    models.SeverityEmergency,
		Description: description,
		Status:      models.OccurrenceOpen,
		CreatedAt:   s.now().UTC(),
		Location:    location,
	}

	if err := s.enqueue(ctx, occ); err != nil {
		return nil, err
	}

	s.logger.Warn("emergency occurrence raised",
		"occurrence_id", occ.ID,
		"round_id", round.ID)

	return occ, nil
}

// Panic создает автономное тревожное происшествие, не привязанное к
// обходу. Всегда severity=emergency; ставится в очередь немедленно.
func (s *Service) Panic(ctx context.Context, description string, location *models.Coordinates) (*models.Occurrence, error) {
	if description == "" {
		description = "panic button pressed"
	}

	occ := &models.Occurrence{
		ID:          uuid.NewString(),
		Severity:    models.SeverityEmergency,
		Description: description,
		Status:      models.OccurrenceOpen,
		CreatedAt:   s.now().UTC(),
		Location:    location,
	}

	if err := s.enqueue(ctx, occ); err != nil {
		return nil, err
	}

	s.logger.Warn("panic occurrence raised", "occurrence_id", occ.ID)

	return occ, nil
}

func (s *Service) enqueue(ctx context.Context, occ *models.Occurrence) error {
	payload := api.OccurrencePayload{
		ID:          occ.ID,
		RoundID:     occ.RoundID,
		Severity:    string(occ.Severity),
		Description: occ.Description,
		Status:      string(occ.Status),
		Timestamp:   occ.CreatedAt,
	}
	if occ.Location != nil {
		payload.Location = &api.Location{
			Latitude:  occ.Location.Latitude,
			Longitude: occ.Location.Longitude,
		}
	}

	if _, err := s.queue.Enqueue(ctx, models.EntityOccurrence, models.OpCreate, payload); err != nil {
		return fmt.Errorf("failed to enqueue occurrence: %w", err)
	}

	return nil
}
