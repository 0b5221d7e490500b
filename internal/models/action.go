package models

import (
	"encoding/json"
	"time"
)

// EntityType идентифицирует тип сущности, к которой относится действие.
// Порядок FIFO гарантируется в пределах одного типа сущности.
type EntityType string

const (
	EntityRound        EntityType = "round"
	EntityVerification EntityType = "verification"
	EntityOccurrence   EntityType = "occurrence"
)

// Valid reports whether the entity type is one of the known values.
func (e EntityType) Valid() bool {
	switch e {
	case EntityRound, EntityVerification, EntityOccurrence:
		return true
	}
	return false
}

// Operation определяет тип мутации в очереди.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
)

// ActionStatus представляет статус действия в офлайн-очереди.
type ActionStatus string

const (
	// ActionPending действие ожидает отправки на сервер
	ActionPending ActionStatus = "pending"
	// ActionFailed сервер окончательно отклонил действие (4xx);
	// повторная отправка не производится, требуется ручной разбор
	ActionFailed ActionStatus = "failed"
)

// OfflineAction представляет одну отложенную мутацию в офлайн-очереди.
// ID генерируется источником действия и никогда сервером; сервер обязан
// трактовать его как идентичность сущности (upsert), поэтому повторная
// отправка уже примененного действия безопасна.
// Seq — позиция в локальном журнале (bbolt bucket sequence), задает FIFO.
type OfflineAction struct {
	EnqueuedAt time.Time       `json:"enqueued_at"`
	ID         string          `json:"id"`
	EntityType EntityType      `json:"entity_type"`
	Operation  Operation       `json:"operation"`
	Status     ActionStatus    `json:"status"`
	LastError  string          `json:"last_error,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	Seq        uint64          `json:"seq"`
	Attempts   int             `json:"attempts"`
}
