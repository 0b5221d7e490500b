package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iudanet/patrolkeeper/pkg/api"
)

// CreateVerification обрабатывает POST /api/v1/checkpoints.
// Идемпотентно по паре (round_id, checkpoint_id): первая отметка дает 201,
// повторная — 200 с ранее сохраненной записью.
func (h *PatrolHandler) CreateVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.VerificationPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode verification payload", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	verification, err := verificationFromPayload(&req)
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	stored, created, err := h.verifications.UpsertVerification(ctx, verification)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to upsert verification",
			slog.Any("error", err),
			slog.String("round_id", verification.RoundID),
			slog.String("checkpoint_id", verification.CheckpointID))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	statusCode := http.StatusOK
	if created {
		statusCode = http.StatusCreated
		h.logger.InfoContext(ctx, "checkpoint verified",
			slog.String("round_id", stored.RoundID),
			slog.String("checkpoint_id", stored.CheckpointID),
			slog.String("method", string(stored.Method)))
	}

	h.sendJSON(w, verificationToPayload(stored), statusCode)
}

// ListVerifications обрабатывает GET /api/v1/rounds/{id}/checkpoints
func (h *PatrolHandler) ListVerifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roundID := chi.URLParam(r, "id")

	verifications, err := h.verifications.ListVerifications(ctx, roundID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list verifications", slog.Any("error", err), slog.String("round_id", roundID))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	payloads := make([]api.VerificationPayload, 0, len(verifications))
	for _, v := range verifications {
		payloads = append(payloads, verificationToPayload(v))
	}

	h.sendJSON(w, payloads, http.StatusOK)
}
