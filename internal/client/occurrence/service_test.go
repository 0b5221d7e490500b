package occurrence

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/patrolkeeper/internal/client/queue"
	"github.com/iudanet/patrolkeeper/internal/client/storage/boltdb"
	"github.com/iudanet/patrolkeeper/internal/models"
	"github.com/iudanet/patrolkeeper/pkg/api"
)

func newTestService(t *testing.T) (*Service, *queue.Queue) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "client.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	q := queue.New(store, logger)
	return NewService(q, logger), q
}

func inProgressRound() *models.Round {
	return &models.Round{ID: "round-1", GuardID: "guard-1", Status: models.RoundInProgress}
}

func TestRaiseEmergencyFinish_RequiresConfirmation(t *testing.T) {
	s, q := newTestService(t)
	ctx := context.Background()

	_, err := s.RaiseEmergencyFinish(ctx, inProgressRound(), "access point blocked", nil, false)
	assert.ErrorIs(t, err, ErrNotConfirmed)

	// Неподтвержденная попытка ничего не кладет в очередь
	count, err := q.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRaiseEmergencyFinish_RequiresDescription(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.RaiseEmergencyFinish(context.Background(), inProgressRound(), "  ", nil, true)
	assert.Error(t, err)
}

func TestRaiseEmergencyFinish_EnqueuesBeforeTransition(t *testing.T) {
	s, q := newTestService(t)
	ctx := context.Background()

	occ, err := s.RaiseEmergencyFinish(ctx, inProgressRound(), "access point blocked", nil, true)
	require.NoError(t, err)

	assert.NotEmpty(t, occ.ID)
	assert.Equal(t, "round-1", occ.RoundID)
	assert.Equal(t, models.SeverityEmergency, occ.Severity)
	assert.Equal(t, models.OccurrenceOpen, occ.Status)

	// Происшествие уже в очереди до перехода обхода
	list, err := q.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.EntityOccurrence, list[0].EntityType)

	var payload api.OccurrencePayload
	require.NoError(t, json.Unmarshal(list[0].Payload, &payload))
	assert.Equal(t, occ.ID, payload.ID)
	assert.Equal(t, "round-1", payload.RoundID)
}

func TestPanic_StandaloneWithoutRound(t *testing.T) {
	s, q := newTestService(t)
	ctx := context.Background()

	loc := &models.Coordinates{Latitude: -23.5505, Longitude: -46.6333}
	occ, err := s.Panic(ctx, "", loc)
	require.NoError(t, err)

	assert.Empty(t, occ.RoundID)
	assert.Equal(t, models.SeverityEmergency, occ.Severity)
	assert.NotEmpty(t, occ.Description) // описание по умолчанию

	count, err := q.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
