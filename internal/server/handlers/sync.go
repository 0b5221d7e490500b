package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/iudanet/patrolkeeper/internal/server/storage"
	"github.com/iudanet/patrolkeeper/pkg/api"
)

// SyncHandler применяет батчи действий офлайн-очереди
type SyncHandler struct {
	logger        *slog.Logger
	rounds        storage.RoundStorage
	verifications storage.VerificationStorage
	occurrences   storage.OccurrenceStorage
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(
	logger *slog.Logger,
	rounds storage.RoundStorage,
	verifications storage.VerificationStorage,
	occurrences storage.OccurrenceStorage,
) *SyncHandler {
	return &SyncHandler{
		logger:        logger,
		rounds:        rounds,
		verifications: verifications,
		occurrences:   occurrences,
	}
}

// HandleSync обрабатывает POST /api/v1/sync.
// Действия применяются последовательно в порядке батча; ответ содержит
// ровно по одному результату на действие, сопоставление — по индексу.
// Ошибка одного действия не прерывает обработку остальных.
func (h *SyncHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode sync request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.logger.InfoContext(ctx, "sync batch received", slog.Int("actions", len(req.Actions)))

	results := make([]api.SyncResult, 0, len(req.Actions))
	applied, rejected := 0, 0

	for _, action := range req.Actions {
		result := h.applyAction(ctx, &action)
		if result.Success {
			applied++
		} else {
			rejected++
			h.logger.WarnContext(ctx, "sync action rejected",
				slog.String("action_id", action.ID),
				slog.String("entity_type", action.EntityType),
				slog.String("operation", action.Operation),
				slog.Bool("retryable", result.Retryable),
				slog.String("error", result.Error))
		}
		results = append(results, result)
	}

	h.logger.InfoContext(ctx, "sync batch processed",
		slog.Int("applied", applied),
		slog.Int("rejected", rejected))

	h.sendJSON(w, api.SyncResponse{Results: results}, http.StatusOK)
}

// applyAction применяет одно действие и классифицирует отказ.
// Невалидный payload и нарушения бизнес-инвариантов — окончательные
// отказы (retryable=false), ошибки хранилища — временные.
func (h *SyncHandler) applyAction(ctx context.Context, action *api.SyncAction) api.SyncResult {
	if action.Operation != "create" && action.Operation != "update" {
		return fatalResult(fmt.Errorf("unknown operation %q", action.Operation))
	}

	switch action.EntityType {
	case "round":
		return h.applyRound(ctx, action.Payload)
	case "verification":
		return h.applyVerification(ctx, action.Payload)
	case "occurrence":
		return h.applyOccurrence(ctx, action.Payload)
	default:
		return fatalResult(fmt.Errorf("unknown entity type %q", action.EntityType))
	}
}

func (h *SyncHandler) applyRound(ctx context.Context, payload json.RawMessage) api.SyncResult {
	var p api.RoundPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fatalResult(fmt.Errorf("invalid round payload: %w", err))
	}

	round, err := roundFromPayload(&p)
	if err != nil {
		return fatalResult(err)
	}

	if err := h.rounds.UpsertRound(ctx, round); err != nil {
		// Конфликт активного обхода не разрешится повтором того же действия
		if errors.Is(err, storage.ErrActiveRoundExists) {
			return fatalResult(err)
		}
		return retryableResult(err)
	}

	return api.SyncResult{Success: true}
}

func (h *SyncHandler) applyVerification(ctx context.Context, payload json.RawMessage) api.SyncResult {
	var p api.VerificationPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fatalResult(fmt.Errorf("invalid verification payload: %w", err))
	}

	verification, err := verificationFromPayload(&p)
	if err != nil {
		return fatalResult(err)
	}

	// Дубликат — успешный no-op, created здесь не важен
	if _, _, err := h.verifications.UpsertVerification(ctx, verification); err != nil {
		return retryableResult(err)
	}

	return api.SyncResult{Success: true}
}

func (h *SyncHandler) applyOccurrence(ctx context.Context, payload json.RawMessage) api.SyncResult {
	var p api.OccurrencePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fatalResult(fmt.Errorf("invalid occurrence payload: %w", err))
	}

	occ, err := occurrenceFromPayload(&p)
	if err != nil {
		return fatalResult(err)
	}

	if err := h.occurrences.UpsertOccurrence(ctx, occ); err != nil {
		return retryableResult(err)
	}

	return api.SyncResult{Success: true}
}

func fatalResult(err error) api.SyncResult {
	return api.SyncResult{Success: false, Retryable: false, Error: err.Error()}
}

func retryableResult(err error) api.SyncResult {
	return api.SyncResult{Success: false, Retryable: true, Error: err.Error()}
}

// sendJSON отправляет JSON ответ
func (h *SyncHandler) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func (h *SyncHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	h.sendJSON(w, resp, statusCode)
}
