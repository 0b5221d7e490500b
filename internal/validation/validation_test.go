package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name      string
		latitude  float64
		longitude float64
		wantErr   bool
	}{
		{"valid zero", 0, 0, false},
		{"valid sao paulo", -23.550520, -46.633308, false},
		{"valid extremes", 90, 180, false},
		{"valid negative extremes", -90, -180, false},
		{"latitude too high", 90.1, 0, true},
		{"latitude too low", -91, 0, true},
		{"longitude too high", 0, 181, true},
		{"longitude too low", 0, -180.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.latitude, tt.longitude)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDescription(t *testing.T) {
	assert.NoError(t, ValidateDescription("access point blocked"))

	assert.Error(t, ValidateDescription(""))
	assert.Error(t, ValidateDescription("   \t\n"))
	assert.Error(t, ValidateDescription(strings.Repeat("x", MaxDescriptionLen+1)))
}
