package models

import "time"

// RoundStatus представляет статус обхода в жизненном цикле.
// Переходы только вперед: NotStarted → InProgress → {Completed | EmergencyFinished}.
type RoundStatus string

const (
	RoundNotStarted        RoundStatus = "not_started"
	RoundInProgress        RoundStatus = "in_progress"
	RoundCompleted         RoundStatus = "completed"
	RoundEmergencyFinished RoundStatus = "emergency_finished"
)

// Terminal reports whether no further transitions are allowed from the status.
func (s RoundStatus) Terminal() bool {
	return s == RoundCompleted || s == RoundEmergencyFinished
}

// Valid reports whether the status is one of the known values.
func (s RoundStatus) Valid() bool {
	switch s {
	case RoundNotStarted, RoundInProgress, RoundCompleted, RoundEmergencyFinished:
		return true
	}
	return false
}

// RoundMode различает обычное и аварийное завершение обхода.
type RoundMode string

const (
	ModeNormal    RoundMode = "normal"
	ModeEmergency RoundMode = "emergency"
)

// Round представляет одно исполнение маршрута одним охранником.
// ID генерируется на клиенте (UUID), поэтому обход существует локально
// до подтверждения сервером; сервер применяет upsert по этому же ID.
type Round struct {
	StartedAt      time.Time   `json:"started_at"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
	ID             string      `json:"id"`
	RouteID        string      `json:"route_id"`
	GuardID        string      `json:"guard_id"`
	Status         RoundStatus `json:"status"`
	Mode           RoundMode   `json:"mode"`
	CompletionRate float64     `json:"completion_rate"`
}
