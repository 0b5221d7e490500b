package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/patrolkeeper/internal/models"
)

func testVerification(roundID, checkpointID string) *models.CheckpointVerification {
	return &models.CheckpointVerification{
		RoundID:      roundID,
		CheckpointID: checkpointID,
		Method:       models.MethodQRCode,
		VerifiedAt:   time.Now().UTC().Truncate(time.Second),
		Evidence:     "QR-123",
	}
}

func TestVerificationStorage_UpsertVerification_Create(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	v := testVerification(uuid.New().String(), "cp-1")
	stored, created, err := s.UpsertVerification(ctx, v)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, v.RoundID, stored.RoundID)
	assert.Equal(t, v.CheckpointID, stored.CheckpointID)
	assert.Equal(t, models.MethodQRCode, stored.Method)
	assert.Equal(t, "QR-123", stored.Evidence)
	assert.Nil(t, stored.Location)
	assert.Nil(t, stored.DistanceMeters)
}

func TestVerificationStorage_UpsertVerification_Duplicate(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	roundID := uuid.New().String()
	v := testVerification(roundID, "cp-1")
	_, created, err := s.UpsertVerification(ctx, v)
	require.NoError(t, err)
	require.True(t, created)

	// Повторная отметка той же точки возвращает исходную запись
	dup := testVerification(roundID, "cp-1")
	dup.Evidence = "QR-OTHER"
	dup.VerifiedAt = v.VerifiedAt.Add(time.Minute)

	stored, created, err := s.UpsertVerification(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "QR-123", stored.Evidence)
	assert.WithinDuration(t, v.VerifiedAt, stored.VerifiedAt, time.Second)

	// Второй строки не появилось
	verifications, err := s.ListVerifications(ctx, roundID)
	require.NoError(t, err)
	assert.Len(t, verifications, 1)
}

func TestVerificationStorage_UpsertVerification_WithLocation(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	distance := 42.5
	v := testVerification(uuid.New().String(), "cp-geo")
	v.Method = models.MethodGeolocation
	v.Evidence = ""
	v.Location = &models.Coordinates{Latitude: -23.5505, Longitude: -46.6333}
	v.DistanceMeters = &distance

	stored, created, err := s.UpsertVerification(ctx, v)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, stored.Location)
	assert.InDelta(t, -23.5505, stored.Location.Latitude, 1e-9)
	assert.InDelta(t, -46.6333, stored.Location.Longitude, 1e-9)
	require.NotNil(t, stored.DistanceMeters)
	assert.InDelta(t, 42.5, *stored.DistanceMeters, 1e-9)
}

func TestVerificationStorage_ListVerifications(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	roundID := uuid.New().String()
	base := time.Now().UTC().Truncate(time.Second)
	for i, cp := range []string{"cp-1", "cp-2", "cp-3"} {
		v := testVerification(roundID, cp)
		v.VerifiedAt = base.Add(time.Duration(i) * time.Minute)
		_, _, err := s.UpsertVerification(ctx, v)
		require.NoError(t, err)
	}

	// Отметки другого обхода не попадают в выборку
	other := testVerification(uuid.New().String(), "cp-1")
	_, _, err := s.UpsertVerification(ctx, other)
	require.NoError(t, err)

	verifications, err := s.ListVerifications(ctx, roundID)
	require.NoError(t, err)
	require.Len(t, verifications, 3)
	assert.Equal(t, "cp-1", verifications[0].CheckpointID)
	assert.Equal(t, "cp-2", verifications[1].CheckpointID)
	assert.Equal(t, "cp-3", verifications[2].CheckpointID)
}

func TestVerificationStorage_ListVerifications_Empty(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	verifications, err := s.ListVerifications(ctx, "no-such-round")
	require.NoError(t, err)
	assert.Empty(t, verifications)
}
