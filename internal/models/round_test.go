package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundStatus_Terminal(t *testing.T) {
	assert.False(t, RoundNotStarted.Terminal())
	assert.False(t, RoundInProgress.Terminal())
	assert.True(t, RoundCompleted.Terminal())
	assert.True(t, RoundEmergencyFinished.Terminal())
}

func TestRoundStatus_Valid(t *testing.T) {
	for _, s := range []RoundStatus{RoundNotStarted, RoundInProgress, RoundCompleted, RoundEmergencyFinished} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, RoundStatus("paused").Valid())
	assert.False(t, RoundStatus("").Valid())
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Role
		wantErr bool
	}{
		{name: "guard", input: "guard", want: RoleGuard},
		{name: "supervisor", input: "supervisor", want: RoleSupervisor},
		{name: "admin", input: "admin", want: RoleAdmin},
		{name: "unknown", input: "manager", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := ParseRole(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}
}

func TestNextCheckpoint(t *testing.T) {
	route := &Route{
		ID: "route-1",
		Checkpoints: []Checkpoint{
			{ID: "cp-b", Order: 2},
			{ID: "cp-a", Order: 1},
			{ID: "cp-c", Order: 3},
		},
	}

	// Точки выбираются по Order, не по положению в срезе
	next := NextCheckpoint(route, map[string]bool{})
	require.NotNil(t, next)
	assert.Equal(t, "cp-a", next.ID)

	// Пропуск отмеченной точки
	next = NextCheckpoint(route, map[string]bool{"cp-a": true})
	require.NotNil(t, next)
	assert.Equal(t, "cp-b", next.ID)

	// Порядок отметок не навязывается: середина может быть отмечена раньше
	next = NextCheckpoint(route, map[string]bool{"cp-b": true})
	require.NotNil(t, next)
	assert.Equal(t, "cp-a", next.ID)

	// Все отмечены
	next = NextCheckpoint(route, map[string]bool{"cp-a": true, "cp-b": true, "cp-c": true})
	assert.Nil(t, next)
}

func TestVerificationMethod_Valid(t *testing.T) {
	assert.True(t, MethodQRCode.Valid())
	assert.True(t, MethodPhoto.Valid())
	assert.True(t, MethodGeolocation.Valid())
	assert.False(t, VerificationMethod("fingerprint").Valid())
}

func TestEntityType_Valid(t *testing.T) {
	assert.True(t, EntityRound.Valid())
	assert.True(t, EntityVerification.Valid())
	assert.True(t, EntityOccurrence.Valid())
	assert.False(t, EntityType("telemetry").Valid())
}
