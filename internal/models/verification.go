package models

import "time"

// CheckpointVerification представляет отметку на контрольной точке.
// Инвариант: не более одной записи на пару (RoundID, CheckpointID);
// повторная попытка возвращает существующую запись без ошибки.
type CheckpointVerification struct {
	VerifiedAt     time.Time          `json:"verified_at"`
	RoundID        string             `json:"round_id"`
	CheckpointID   string             `json:"checkpoint_id"`
	Method         VerificationMethod `json:"method"`
	Evidence       string             `json:"evidence"`
	Location       *Coordinates       `json:"location,omitempty"`
	DistanceMeters *float64           `json:"distance_meters,omitempty"`
}
