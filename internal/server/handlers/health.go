package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	logger *slog.Logger
	ping   func() error
}

// NewHealthHandler создает новый handler для health check.
// ping опционален: nil означает проверку только самого процесса.
func NewHealthHandler(logger *slog.Logger, ping func() error) *HealthHandler {
	return &HealthHandler{
		logger: logger,
		ping:   ping,
	}
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status string `json:"status"`
}

// Health обрабатывает GET /api/v1/health
// Health check endpoint для мониторинга и пробы связи клиента
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	resp := HealthResponse{Status: "ok"}

	if h.ping != nil {
		if err := h.ping(); err != nil {
			h.logger.Error("storage ping failed", slog.Any("error", err))
			status = http.StatusServiceUnavailable
			resp.Status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}
