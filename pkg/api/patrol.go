// Package api содержит типы запросов и ответов сервиса хранения.
// Эти же типы используются как payload действий офлайн-очереди,
// поэтому каждая мутация несет клиентский ID сущности.
package api

import "time"

// Location представляет координаты в запросах и ответах
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RoundPayload представляет обход для создания и обновления.
// ID генерируется клиентом; сервер применяет upsert по этому ID,
// поэтому повторная доставка того же payload безопасна.
type RoundPayload struct {
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	ID             string     `json:"id"`
	RouteID        string     `json:"route_id"`
	GuardID        string     `json:"guard_id"`
	Status         string     `json:"status"`
	Mode           string     `json:"mode"`
	CompletionRate float64    `json:"completion_rate"`
}

// VerificationPayload представляет отметку на контрольной точке.
// Идентичность — пара (round_id, checkpoint_id); повторное создание
// возвращает существующую запись.
type VerificationPayload struct {
	Timestamp      time.Time `json:"timestamp"`
	RoundID        string    `json:"round_id"`
	CheckpointID   string    `json:"checkpoint_id"`
	Method         string    `json:"method"`
	Evidence       string    `json:"evidence,omitempty"`
	Location       *Location `json:"location,omitempty"`
	DistanceMeters *float64  `json:"distance_meters,omitempty"`
}

// OccurrencePayload представляет запись о происшествии
type OccurrencePayload struct {
	Timestamp   time.Time `json:"timestamp"`
	ID          string    `json:"id"`
	RoundID     string    `json:"round_id,omitempty"`
	Severity    string    `json:"severity"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Location    *Location `json:"location,omitempty"`
}

// FinishRoundRequest представляет запрос POST /rounds/{id}/finish
type FinishRoundRequest struct {
	CompletedAt    time.Time `json:"completed_at"`
	OccurrenceID   string    `json:"occurrence_id,omitempty"`
	CompletionRate float64   `json:"completion_rate"`
	IsEmergency    bool      `json:"is_emergency"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
