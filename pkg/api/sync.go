package api

import (
	"encoding/json"
	"time"
)

// SyncAction представляет одно действие офлайн-очереди в батче синхронизации
type SyncAction struct {
	EnqueuedAt time.Time       `json:"enqueued_at"`
	ID         string          `json:"id"`
	EntityType string          `json:"entity_type"`
	Operation  string          `json:"operation"`
	Payload    json.RawMessage `json:"payload"`
}

// SyncRequest представляет запрос на синхронизацию от клиента.
// Порядок действий значим: сервер применяет их последовательно.
type SyncRequest struct {
	Actions []SyncAction `json:"actions"`
}

// SyncResult представляет результат применения одного действия.
// Результаты сопоставляются с действиями строго по индексу в батче.
// Retryable различает временные отказы (клиент оставляет действие
// pending) и окончательные (клиент помечает действие failed).
type SyncResult struct {
	Error     string `json:"error,omitempty"`
	Success   bool   `json:"success"`
	Retryable bool   `json:"retryable"`
}

// SyncResponse представляет ответ сервера на синхронизацию.
// len(Results) всегда равен len(Actions) запроса; расхождение длин
// клиент обязан трактовать как отказ всего батча.
type SyncResponse struct {
	Results []SyncResult `json:"results"`
}
