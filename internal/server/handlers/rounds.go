package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iudanet/patrolkeeper/internal/models"
	"github.com/iudanet/patrolkeeper/internal/server/storage"
	"github.com/iudanet/patrolkeeper/pkg/api"
)

// PatrolHandler обрабатывает запросы сервиса хранения обходов
type PatrolHandler struct {
	logger        *slog.Logger
	rounds        storage.RoundStorage
	verifications storage.VerificationStorage
	occurrences   storage.OccurrenceStorage
}

// NewPatrolHandler creates a new patrol handler
func NewPatrolHandler(
	logger *slog.Logger,
	rounds storage.RoundStorage,
	verifications storage.VerificationStorage,
	occurrences storage.OccurrenceStorage,
) *PatrolHandler {
	return &PatrolHandler{
		logger:        logger,
		rounds:        rounds,
		verifications: verifications,
		occurrences:   occurrences,
	}
}

// CreateRound обрабатывает POST /api/v1/rounds
// Upsert по клиентскому ID: повторная доставка того же создания безопасна.
func (h *PatrolHandler) CreateRound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RoundPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode round payload", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	round, err := roundFromPayload(&req)
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.rounds.UpsertRound(ctx, round); err != nil {
		if errors.Is(err, storage.ErrActiveRoundExists) {
			h.sendError(w, "guard already has an active round", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to upsert round", slog.Any("error", err), slog.String("round_id", round.ID))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "round created",
		slog.String("round_id", round.ID),
		slog.String("guard_id", round.GuardID),
		slog.String("route_id", round.RouteID))

	h.sendJSON(w, roundToPayload(round), http.StatusCreated)
}

// UpdateRound обрабатывает PUT /api/v1/rounds/{id}.
// Возвращает авторитетное состояние: если обход уже терминален,
// update не применяется и клиент видит сохраненный статус.
func (h *PatrolHandler) UpdateRound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roundID := chi.URLParam(r, "id")

	var req api.RoundPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode round payload", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.ID != roundID {
		h.sendError(w, "round id in path and body differ", http.StatusBadRequest)
		return
	}

	round, err := roundFromPayload(&req)
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.rounds.UpsertRound(ctx, round); err != nil {
		if errors.Is(err, storage.ErrActiveRoundExists) {
			h.sendError(w, "guard already has an active round", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to upsert round", slog.Any("error", err), slog.String("round_id", roundID))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	stored, err := h.rounds.GetRound(ctx, roundID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get round", slog.Any("error", err), slog.String("round_id", roundID))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, roundToPayload(stored), http.StatusOK)
}

// GetRound обрабатывает GET /api/v1/rounds/{id}
func (h *PatrolHandler) GetRound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roundID := chi.URLParam(r, "id")

	round, err := h.rounds.GetRound(ctx, roundID)
	if err != nil {
		if errors.Is(err, storage.ErrRoundNotFound) {
			h.sendError(w, "round not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get round", slog.Any("error", err), slog.String("round_id", roundID))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, roundToPayload(round), http.StatusOK)
}

// FinishRound обрабатывает POST /api/v1/rounds/{id}/finish.
// Повторное завершение терминального обхода — no-op с текущим состоянием.
func (h *PatrolHandler) FinishRound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roundID := chi.URLParam(r, "id")

	var req api.FinishRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode finish request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.CompletionRate < 0 || req.CompletionRate > 1 {
		h.sendError(w, "completion rate out of range [0, 1]", http.StatusBadRequest)
		return
	}

	round, err := h.rounds.GetRound(ctx, roundID)
	if err != nil {
		if errors.Is(err, storage.ErrRoundNotFound) {
			h.sendError(w, "round not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get round", slog.Any("error", err), slog.String("round_id", roundID))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if !round.Status.Terminal() {
		completedAt := req.CompletedAt
		round.CompletedAt = &completedAt
		round.CompletionRate = req.CompletionRate
		if req.IsEmergency {
			round.Status = models.RoundEmergencyFinished
			round.Mode = models.ModeEmergency
		} else {
			round.Status = models.RoundCompleted
		}

		if err := h.rounds.UpsertRound(ctx, round); err != nil {
			h.logger.ErrorContext(ctx, "failed to finish round", slog.Any("error", err), slog.String("round_id", roundID))
			h.sendError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		h.logger.InfoContext(ctx, "round finished",
			slog.String("round_id", roundID),
			slog.String("status", string(round.Status)),
			slog.Float64("completion_rate", round.CompletionRate))
	}

	h.sendJSON(w, roundToPayload(round), http.StatusOK)
}

// sendJSON отправляет JSON ответ
func (h *PatrolHandler) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func (h *PatrolHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	h.sendJSON(w, resp, statusCode)
}
