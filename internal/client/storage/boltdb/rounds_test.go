package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/patrolkeeper/internal/client/storage"
	"github.com/iudanet/patrolkeeper/internal/models"
)

func testRoute() *models.Route {
	return &models.Route{
		ID:   "route-1",
		Name: "Night perimeter",
		Checkpoints: []models.Checkpoint{
			{ID: "cp-1", Name: "Gate", Order: 1, Method: models.MethodQRCode, ExpectedCode: "GATE-42"},
			{ID: "cp-2", Name: "Warehouse", Order: 2, Method: models.MethodPhoto},
		},
	}
}

func TestSaveGetRoute(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	route := testRoute()
	require.NoError(t, store.SaveRoute(ctx, route))

	got, err := store.GetRoute(ctx, "route-1")
	require.NoError(t, err)
	assert.Equal(t, route, got)
}

func TestGetRoute_NotFound(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.GetRoute(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrRouteNotFound)
}

func TestSaveGetRound(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	round := &models.Round{
		ID:        "round-1",
		RouteID:   "route-1",
		GuardID:   "guard-1",
		Status:    models.RoundInProgress,
		Mode:      models.ModeNormal,
		StartedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.SaveRound(ctx, round))

	got, err := store.GetRound(ctx, "round-1")
	require.NoError(t, err)
	assert.Equal(t, round, got)

	_, err = store.GetRound(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrRoundNotFound)
}

func TestGetActiveRound(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	// Нет обходов вообще
	_, err := store.GetActiveRound(ctx, "guard-1")
	assert.ErrorIs(t, err, storage.ErrNoActiveRound)

	// Завершенный обход не считается активным
	done := &models.Round{
		ID: "round-done", GuardID: "guard-1",
		Status: models.RoundCompleted, StartedAt: time.Now().UTC(),
	}
	require.NoError(t, store.SaveRound(ctx, done))

	_, err = store.GetActiveRound(ctx, "guard-1")
	assert.ErrorIs(t, err, storage.ErrNoActiveRound)

	// Активный обход другого охранника не виден
	other := &models.Round{
		ID: "round-other", GuardID: "guard-2",
		Status: models.RoundInProgress, StartedAt: time.Now().UTC(),
	}
	require.NoError(t, store.SaveRound(ctx, other))

	_, err = store.GetActiveRound(ctx, "guard-1")
	assert.ErrorIs(t, err, storage.ErrNoActiveRound)

	// Свой активный обход находится
	active := &models.Round{
		ID: "round-active", GuardID: "guard-1",
		Status: models.RoundInProgress, StartedAt: time.Now().UTC(),
	}
	require.NoError(t, store.SaveRound(ctx, active))

	got, err := store.GetActiveRound(ctx, "guard-1")
	require.NoError(t, err)
	assert.Equal(t, "round-active", got.ID)
}

func TestVerifications(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	v := &models.CheckpointVerification{
		RoundID:      "round-1",
		CheckpointID: "cp-1",
		Method:       models.MethodQRCode,
		Evidence:     "GATE-42",
		VerifiedAt:   time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.SaveVerification(ctx, v))

	got, err := store.GetVerification(ctx, "round-1", "cp-1")
	require.NoError(t, err)
	assert.Equal(t, v, got)

	_, err = store.GetVerification(ctx, "round-1", "cp-2")
	assert.ErrorIs(t, err, storage.ErrVerificationNotFound)

	// Отметка в другом обходе не попадает в выборку
	otherRound := &models.CheckpointVerification{
		RoundID: "round-2", CheckpointID: "cp-1",
		Method: models.MethodPhoto, VerifiedAt: time.Now().UTC(),
	}
	require.NoError(t, store.SaveVerification(ctx, otherRound))

	list, err := store.ListVerifications(ctx, "round-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "cp-1", list[0].CheckpointID)
}
