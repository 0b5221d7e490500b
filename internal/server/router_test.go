package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/patrolkeeper/internal/server/storage/sqlite"
	"github.com/iudanet/patrolkeeper/pkg/api"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlite.New(context.Background(), ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	router := NewRouter(logger, store, store.DB().Ping)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, respBody
}

func activeRoundPayload(guardID string) api.RoundPayload {
	return api.RoundPayload{
		ID:        uuid.New().String(),
		RouteID:   uuid.New().String(),
		GuardID:   guardID,
		Status:    "in_progress",
		Mode:      "normal",
		StartedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestRouter_Health(t *testing.T) {
	srv := setupTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)
}

func TestRouter_CreateAndGetRound(t *testing.T) {
	srv := setupTestServer(t)

	payload := activeRoundPayload("guard-1")
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/rounds", payload)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/rounds/"+payload.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got api.RoundPayload
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, payload.ID, got.ID)
	assert.Equal(t, "in_progress", got.Status)
}

func TestRouter_CreateRound_Validation(t *testing.T) {
	srv := setupTestServer(t)

	payload := activeRoundPayload("guard-1")
	payload.Status = "sideways"

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/rounds", payload)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "unknown round status")
}

func TestRouter_CreateRound_ActiveConflict(t *testing.T) {
	srv := setupTestServer(t)

	first := activeRoundPayload("guard-busy")
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/rounds", first)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Повторная доставка того же обхода — не конфликт
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/rounds", first)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Второй активный обход того же охранника — конфликт
	second := activeRoundPayload("guard-busy")
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/rounds", second)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRouter_GetRound_NotFound(t *testing.T) {
	srv := setupTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/v1/rounds/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_UpdateRound_TerminalStateWins(t *testing.T) {
	srv := setupTestServer(t)

	payload := activeRoundPayload("guard-1")
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/rounds", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	completedAt := time.Now().UTC().Truncate(time.Second)
	payload.Status = "completed"
	payload.CompletedAt = &completedAt
	payload.CompletionRate = 1.0

	resp, body := doJSON(t, http.MethodPut, srv.URL+"/api/v1/rounds/"+payload.ID, payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got api.RoundPayload
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "completed", got.Status)

	// Запоздавший update не откатывает терминальный статус,
	// в ответе авторитетное состояние сервера
	stale := payload
	stale.Status = "in_progress"
	stale.CompletedAt = nil
	stale.CompletionRate = 0

	resp, body = doJSON(t, http.MethodPut, srv.URL+"/api/v1/rounds/"+payload.ID, stale)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "completed", got.Status)
	assert.NotNil(t, got.CompletedAt)
}

func TestRouter_UpdateRound_IDMismatch(t *testing.T) {
	srv := setupTestServer(t)

	payload := activeRoundPayload("guard-1")
	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/api/v1/rounds/"+uuid.New().String(), payload)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_FinishRound(t *testing.T) {
	srv := setupTestServer(t)

	payload := activeRoundPayload("guard-1")
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/rounds", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	finish := api.FinishRoundRequest{
		CompletedAt:    time.Now().UTC().Truncate(time.Second),
		CompletionRate: 0.8,
		IsEmergency:    true,
	}
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/rounds/"+payload.ID+"/finish", finish)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got api.RoundPayload
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "emergency_finished", got.Status)
	assert.Equal(t, "emergency", got.Mode)
	assert.InDelta(t, 0.8, got.CompletionRate, 1e-9)

	// Повторное завершение — no-op с текущим состоянием
	finish.IsEmergency = false
	finish.CompletionRate = 1.0
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/rounds/"+payload.ID+"/finish", finish)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "emergency_finished", got.Status)
	assert.InDelta(t, 0.8, got.CompletionRate, 1e-9)
}

func TestRouter_CreateVerification_Idempotent(t *testing.T) {
	srv := setupTestServer(t)

	round := activeRoundPayload("guard-1")
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/rounds", round)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	verification := api.VerificationPayload{
		RoundID:      round.ID,
		CheckpointID: "cp-1",
		Method:       "qrcode",
		Evidence:     "QR-1",
		Timestamp:    time.Now().UTC().Truncate(time.Second),
	}

	// Первая отметка создает запись
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/checkpoints", verification)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Повторная отметка возвращает существующую
	dup := verification
	dup.Evidence = "QR-OTHER"
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/checkpoints", dup)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got api.VerificationPayload
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "QR-1", got.Evidence)

	// И в списке отметок обхода она одна
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/v1/rounds/"+round.ID+"/checkpoints", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []api.VerificationPayload
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 1)
}

func TestRouter_CreateOccurrence(t *testing.T) {
	srv := setupTestServer(t)

	occurrence := api.OccurrencePayload{
		ID:          uuid.New().String(),
		Severity:    "emergency",
		Description: "panic button pressed",
		Status:      "open",
		Timestamp:   time.Now().UTC().Truncate(time.Second),
		Location:    &api.Location{Latitude: 59.9311, Longitude: 30.3609},
	}

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/occurrences", occurrence)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/occurrences/"+occurrence.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got api.OccurrencePayload
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, occurrence.Description, got.Description)
	assert.Empty(t, got.RoundID)
	require.NotNil(t, got.Location)
	assert.InDelta(t, 59.9311, got.Location.Latitude, 1e-9)
}

func TestRouter_CreateOccurrence_BlankDescription(t *testing.T) {
	srv := setupTestServer(t)

	occurrence := api.OccurrencePayload{
		ID:        uuid.New().String(),
		Severity:  "emergency",
		Status:    "open",
		Timestamp: time.Now().UTC(),
	}

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/occurrences", occurrence)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func mustMarshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestRouter_Sync_PositionalResults(t *testing.T) {
	srv := setupTestServer(t)

	round := activeRoundPayload("guard-1")
	verification := api.VerificationPayload{
		RoundID:      round.ID,
		CheckpointID: "cp-1",
		Method:       "photo",
		Evidence:     "photos/cp-1.jpg",
		Timestamp:    time.Now().UTC(),
	}
	badOccurrence := api.OccurrencePayload{
		ID:        uuid.New().String(),
		Severity:  "catastrophic", // неизвестная серьезность
		Status:    "open",
		Timestamp: time.Now().UTC(),
	}

	syncReq := api.SyncRequest{Actions: []api.SyncAction{
		{
			ID:         uuid.New().String(),
			EntityType: "round",
			Operation:  "create",
			EnqueuedAt: time.Now().UTC(),
			Payload:    mustMarshal(t, round),
		},
		{
			ID:         uuid.New().String(),
			EntityType: "verification",
			Operation:  "create",
			EnqueuedAt: time.Now().UTC(),
			Payload:    mustMarshal(t, verification),
		},
		{
			ID:         uuid.New().String(),
			EntityType: "occurrence",
			Operation:  "create",
			EnqueuedAt: time.Now().UTC(),
			Payload:    mustMarshal(t, badOccurrence),
		},
		{
			ID:         uuid.New().String(),
			EntityType: "telemetry", // неизвестный тип сущности
			Operation:  "create",
			EnqueuedAt: time.Now().UTC(),
			Payload:    json.RawMessage(`{}`),
		},
	}}

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sync", syncReq)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var syncResp api.SyncResponse
	require.NoError(t, json.Unmarshal(body, &syncResp))
	require.Len(t, syncResp.Results, 4)

	assert.True(t, syncResp.Results[0].Success)
	assert.True(t, syncResp.Results[1].Success)

	// Невалидные действия отклонены окончательно, остальные применены
	assert.False(t, syncResp.Results[2].Success)
	assert.False(t, syncResp.Results[2].Retryable)
	assert.False(t, syncResp.Results[3].Success)
	assert.False(t, syncResp.Results[3].Retryable)

	// Обход действительно сохранен
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/rounds/"+round.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_Sync_ResubmitIsIdempotent(t *testing.T) {
	srv := setupTestServer(t)

	round := activeRoundPayload("guard-1")
	verification := api.VerificationPayload{
		RoundID:      round.ID,
		CheckpointID: "cp-1",
		Method:       "qrcode",
		Evidence:     "QR-1",
		Timestamp:    time.Now().UTC(),
	}

	syncReq := api.SyncRequest{Actions: []api.SyncAction{
		{
			ID:         uuid.New().String(),
			EntityType: "round",
			Operation:  "create",
			EnqueuedAt: time.Now().UTC(),
			Payload:    mustMarshal(t, round),
		},
		{
			ID:         uuid.New().String(),
			EntityType: "verification",
			Operation:  "create",
			EnqueuedAt: time.Now().UTC(),
			Payload:    mustMarshal(t, verification),
		},
	}}

	// Клиент не получил ответ и повторил батч целиком
	for i := 0; i < 2; i++ {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sync", syncReq)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var syncResp api.SyncResponse
		require.NoError(t, json.Unmarshal(body, &syncResp))
		require.Len(t, syncResp.Results, 2)
		assert.True(t, syncResp.Results[0].Success)
		assert.True(t, syncResp.Results[1].Success)
	}

	// Второй сущности не появилось
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/rounds/"+round.ID+"/checkpoints", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []api.VerificationPayload
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 1)
}

func TestRouter_Sync_ActiveRoundConflictIsFatal(t *testing.T) {
	srv := setupTestServer(t)

	first := activeRoundPayload("guard-busy")
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/rounds", first)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	second := activeRoundPayload("guard-busy")
	syncReq := api.SyncRequest{Actions: []api.SyncAction{{
		ID:         uuid.New().String(),
		EntityType: "round",
		Operation:  "create",
		EnqueuedAt: time.Now().UTC(),
		Payload:    mustMarshal(t, second),
	}}}

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sync", syncReq)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var syncResp api.SyncResponse
	require.NoError(t, json.Unmarshal(body, &syncResp))
	require.Len(t, syncResp.Results, 1)
	assert.False(t, syncResp.Results[0].Success)
	assert.False(t, syncResp.Results[0].Retryable)
	assert.Contains(t, syncResp.Results[0].Error, "active round")
}

func TestRouter_Recovery(t *testing.T) {
	srv := setupTestServer(t)

	// Мусор вместо JSON не должен ронять сервис
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/sync", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
