package models

import "time"

// Severity представляет серьезность происшествия.
type Severity string

const (
	SeverityLow       Severity = "low"
	SeverityMedium    Severity = "medium"
	SeverityHigh      Severity = "high"
	SeverityEmergency Severity = "emergency"
)

// Valid reports whether the severity is one of the known values.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityEmergency:
		return true
	}
	return false
}

// OccurrenceStatus представляет статус разбора происшествия.
type OccurrenceStatus string

const (
	OccurrenceOpen       OccurrenceStatus = "open"
	OccurrenceInProgress OccurrenceStatus = "in_progress"
	OccurrenceResolved   OccurrenceStatus = "resolved"
)

// Occurrence представляет запись о происшествии.
// RoundID опционален: тревожная кнопка создает происшествие без обхода.
// Для аварийного завершения обхода Description обязателен и не пуст.
type Occurrence struct {
	CreatedAt   time.Time        `json:"created_at"`
	ID          string           `json:"id"`
	RoundID     string           `json:"round_id,omitempty"`
	Description string           `json:"description"`
	Severity    Severity         `json:"severity"`
	Status      OccurrenceStatus `json:"status"`
	Location    *Coordinates     `json:"location,omitempty"`
}
