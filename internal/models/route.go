package models

// VerificationMethod определяет способ отметки на контрольной точке.
type VerificationMethod string

const (
	MethodQRCode      VerificationMethod = "qrcode"
	MethodPhoto       VerificationMethod = "photo"
	MethodGeolocation VerificationMethod = "geolocation"
)

// Valid reports whether the method is one of the known values.
func (m VerificationMethod) Valid() bool {
	switch m {
	case MethodQRCode, MethodPhoto, MethodGeolocation:
		return true
	}
	return false
}

// Coordinates представляет точку в WGS84.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Checkpoint представляет одну контрольную точку маршрута.
// Order уникален в пределах маршрута и задает порядок обхода.
type Checkpoint struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	ExpectedCode string             `json:"expected_code,omitempty"`
	Method       VerificationMethod `json:"method"`
	Coordinates  *Coordinates       `json:"coordinates,omitempty"`
	Order        int                `json:"order"`
}

// Route представляет упорядоченный шаблон контрольных точек.
// Во время исполнения обхода маршрут неизменяем: клиент сохраняет
// снимок маршрута на момент старта.
type Route struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Checkpoints []Checkpoint `json:"checkpoints"`
}

// Checkpoint returns the checkpoint with the given id, or nil if the
// route does not contain it.
func (r *Route) Checkpoint(id string) *Checkpoint {
	for i := range r.Checkpoints {
		if r.Checkpoints[i].ID == id {
			return &r.Checkpoints[i]
		}
	}
	return nil
}

// NextCheckpoint возвращает непроверенную точку с наименьшим Order.
// Это производное представление для отображения, а не хранимое поле:
// порядок обхода не навязывается при верификации.
func NextCheckpoint(route *Route, verified map[string]bool) *Checkpoint {
	var next *Checkpoint
	for i := range route.Checkpoints {
		cp := &route.Checkpoints[i]
		if verified[cp.ID] {
			continue
		}
		if next == nil || cp.Order < next.Order {
			next = cp
		}
	}
	return next
}
