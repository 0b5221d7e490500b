package round

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/patrolkeeper/internal/client/queue"
	"github.com/iudanet/patrolkeeper/internal/client/storage"
	"github.com/iudanet/patrolkeeper/internal/geo"
	"github.com/iudanet/patrolkeeper/internal/models"
	"github.com/iudanet/patrolkeeper/internal/validation"
	"github.com/iudanet/patrolkeeper/pkg/api"
)

// Evidence несет подтверждение отметки; значимое поле зависит от
// метода верификации контрольной точки.
type Evidence struct {
	Code     string              // qrcode: отсканированный код
	PhotoRef string              // photo: непрозрачная ссылка на снимок
	Location *models.Coordinates // geolocation: текущие координаты
}

// Verifier validates and records a single checkpoint check-in.
// Идемпотентен: повторная отметка той же точки возвращает существующую
// запись без ошибки и без дубля.
type Verifier struct {
	store  storage.RoundStorage
	queue  *queue.Queue
	logger *slog.Logger
	now    func() time.Time
}

// NewVerifier creates a new checkpoint verifier
func NewVerifier(store storage.RoundStorage, q *queue.Queue, logger *slog.Logger) *Verifier {
	return &Verifier{
		store:  store,
		queue:  q,
		logger: logger,
		now:    time.Now,
	}
}

// Verify записывает отметку на контрольной точке.
// Предусловия: обход InProgress, точка принадлежит маршруту обхода.
func (v *Verifier) Verify(ctx context.Context, round *models.Round, route *models.Route, checkpointID string, evidence Evidence) (*models.CheckpointVerification, error) {
	if round.Status != models.RoundInProgress {
		return nil, fmt.Errorf("%w: status %s", ErrRoundNotInProgress, round.Status)
	}

	checkpoint := route.Checkpoint(checkpointID)
	if checkpoint == nil {
		return nil, fmt.Errorf("%w: checkpoint %s, route %s",
			ErrCheckpointNotInRoute, checkpointID, route.ID)
	}

	// Повторная отметка — не ошибка и не дубль
	existing, err := v.store.GetVerification(ctx, round.ID, checkpointID)
	if err == nil {
		v.logger.Debug("checkpoint already verified",
			"round_id", round.ID,
			"checkpoint_id", checkpointID)
		return existing, nil
	}
	if !errors.Is(err, storage.ErrVerificationNotFound) {
		return nil, fmt.Errorf("failed to get verification: %w", err)
	}

	verification := &models.CheckpointVerification{
		RoundID:      round.ID,
		CheckpointID: checkpointID,
		Method:       checkpoint.Method,
		VerifiedAt:   v.now().UTC(),
	}

	switch checkpoint.Method {
	case models.MethodQRCode:
		if evidence.Code == "" {
			return nil, fmt.Errorf("%w: qr code", ErrMissingEvidence)
		}
		if evidence.Code != checkpoint.ExpectedCode {
			return nil, ErrCodeMismatch
		}
		verification.Evidence = evidence.Code

	case models.MethodPhoto:
		// Содержимое снимка не проверяется: ссылка непрозрачна
		if evidence.PhotoRef == "" {
			return nil, fmt.Errorf("%w: photo reference", ErrMissingEvidence)
		}
		verification.Evidence = evidence.PhotoRef

	case models.MethodGeolocation:
		if evidence.Location == nil {
			return nil, fmt.Errorf("%w: location", ErrMissingEvidence)
		}
		// Невалидные координаты отклоняются до постановки в очередь:
		// сервер такую отметку гарантированно не примет
		if err := validation.ValidateCoordinates(evidence.Location.Latitude, evidence.Location.Longitude); err != nil {
			return nil, fmt.Errorf("invalid location: %w", err)
		}
		verification.Location = evidence.Location
		// Дистанция рекомендательная: записывается для отображения,
		// но отметку не блокирует (это не геозабор)
		if checkpoint.Coordinates != nil {
			distance := geo.DistanceMeters(
				evidence.Location.Latitude, evidence.Location.Longitude,
				checkpoint.Coordinates.Latitude, checkpoint.Coordinates.Longitude)
			verification.DistanceMeters = &distance
		}

	default:
		return nil, fmt.Errorf("unknown verification method: %q", checkpoint.Method)
	}

	if err := v.store.SaveVerification(ctx, verification); err != nil {
		return nil, fmt.Errorf("failed to save verification: %w", err)
	}

	if _, err := v.queue.Enqueue(ctx, models.EntityVerification, models.OpCreate, verificationPayload(verification)); err != nil {
		return nil, fmt.Errorf("failed to enqueue verification: %w", err)
	}

	v.logger.Info("checkpoint verified",
		"round_id", round.ID,
		"checkpoint_id", checkpointID,
		"method", checkpoint.Method)

	return verification, nil
}

// verificationPayload конвертирует отметку в API формат для очереди
func verificationPayload(v *models.CheckpointVerification) api.VerificationPayload {
	payload := api.VerificationPayload{
		RoundID:        v.RoundID,
		CheckpointID:   v.CheckpointID,
		Method:         string(v.Method),
		Timestamp:      v.VerifiedAt,
		Evidence:       v.Evidence,
		DistanceMeters: v.DistanceMeters,
	}
	if v.Location != nil {
		payload.Location = &api.Location{
			Latitude:  v.Location.Latitude,
			Longitude: v.Location.Longitude,
		}
	}
	return payload
}
