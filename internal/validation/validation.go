package validation

import (
	"fmt"
	"strings"
)

const (
	// MaxDescriptionLen максимальная длина описания происшествия
	MaxDescriptionLen = 4096
)

// ValidateCoordinates проверяет, что координаты лежат в допустимых
// диапазонах WGS84: широта [-90, 90], долгота [-180, 180]
func ValidateCoordinates(latitude, longitude float64) error {
	if latitude < -90 || latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %v", latitude)
	}

	if longitude < -180 || longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got %v", longitude)
	}

	return nil
}

// ValidateDescription проверяет обязательное описание происшествия
// Описание не может быть пустым или состоять только из пробелов
func ValidateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("description cannot be empty")
	}

	if len(description) > MaxDescriptionLen {
		return fmt.Errorf("description must not exceed %d characters", MaxDescriptionLen)
	}

	return nil
}
