package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLogger возвращает логгер, пишущий в буфер
func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, buf
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		handler        http.HandlerFunc
		name           string
		method         string
		path           string
		expectedLevel  string
		expectedStatus int
	}{
		{
			name:   "successful round creation logged at info",
			method: http.MethodPost,
			path:   "/api/v1/rounds",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"id":"round-1"}`))
			},
			expectedLevel:  "INFO",
			expectedStatus: http.StatusCreated,
		},
		{
			name:   "client error logged at warn",
			method: http.MethodGet,
			path:   "/api/v1/rounds/missing",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			expectedLevel:  "WARN",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "server error logged at error",
			method: http.MethodPost,
			path:   "/api/v1/sync",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expectedLevel:  "ERROR",
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newTestLogger()
			wrapped := LoggingMiddleware(logger)(tt.handler)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			wrapped.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			logLine := buf.String()
			require.NotEmpty(t, logLine)
			assert.Contains(t, logLine, "level="+tt.expectedLevel)
			assert.Contains(t, logLine, "method="+tt.method)
			assert.Contains(t, logLine, "path="+tt.path)
		})
	}
}

func TestLoggingMiddleware_DefaultStatus(t *testing.T) {
	logger, buf := newTestLogger()

	// Handler, который не вызывает WriteHeader явно
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	wrapped := LoggingMiddleware(logger)(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), "status=200")
	assert.Contains(t, buf.String(), "bytes_written=2")
}

func TestLoggingWithSkip(t *testing.T) {
	logger, buf := newTestLogger()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := LoggingWithSkip(logger, []string{"/api/v1/health"})(handler)

	// Проба связи не попадает в лог
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, buf.String())

	// Обычный запрос логируется
	req = httptest.NewRequest(http.MethodGet, "/api/v1/rounds/round-1", nil)
	w = httptest.NewRecorder()
	wrapped.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(buf.String(), "path=/api/v1/rounds/round-1"))
}
