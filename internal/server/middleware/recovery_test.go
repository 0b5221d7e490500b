package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoveryMiddleware_Panic(t *testing.T) {
	logger, buf := newTestLogger()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("unexpected payload shape")
	})
	wrapped := RecoveryMiddleware(logger)(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil)
	w := httptest.NewRecorder()

	assert.NotPanics(t, func() {
		wrapped.ServeHTTP(w, req)
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal Server Error")

	// Детали паники остаются в логе, не в ответе
	logLine := buf.String()
	assert.Contains(t, logLine, "Panic recovered")
	assert.Contains(t, logLine, "unexpected payload shape")
	assert.Contains(t, logLine, "path=/api/v1/sync")
	assert.NotContains(t, w.Body.String(), "unexpected payload shape")
}

func TestRecoveryMiddleware_NoPanic(t *testing.T) {
	logger, buf := newTestLogger()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	wrapped := RecoveryMiddleware(logger)(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.Empty(t, buf.String())
}
