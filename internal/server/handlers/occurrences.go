package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iudanet/patrolkeeper/internal/server/storage"
	"github.com/iudanet/patrolkeeper/pkg/api"
)

// CreateOccurrence обрабатывает POST /api/v1/occurrences.
// Upsert по клиентскому ID: повторная доставка не создает дубликат.
func (h *PatrolHandler) CreateOccurrence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.OccurrencePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode occurrence payload", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	occ, err := occurrenceFromPayload(&req)
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.occurrences.UpsertOccurrence(ctx, occ); err != nil {
		h.logger.ErrorContext(ctx, "failed to upsert occurrence", slog.Any("error", err), slog.String("occurrence_id", occ.ID))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "occurrence recorded",
		slog.String("occurrence_id", occ.ID),
		slog.String("severity", string(occ.Severity)),
		slog.String("round_id", occ.RoundID))

	h.sendJSON(w, occurrenceToPayload(occ), http.StatusCreated)
}

// GetOccurrence обрабатывает GET /api/v1/occurrences/{id}
func (h *PatrolHandler) GetOccurrence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	occurrenceID := chi.URLParam(r, "id")

	occ, err := h.occurrences.GetOccurrence(ctx, occurrenceID)
	if err != nil {
		if errors.Is(err, storage.ErrOccurrenceNotFound) {
			h.sendError(w, "occurrence not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get occurrence", slog.Any("error", err), slog.String("occurrence_id", occurrenceID))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, occurrenceToPayload(occ), http.StatusOK)
}
