package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	serve := func(db *MockPinger, path string) (int, HealthResponse) {
		h := NewHealthHandler(db)
		r := gin.New()
		r.GET("/health", h.Live)
		r.GET("/ready", h.Ready)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		var body HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return w.Code, body
	}

	t.Run("liveness does not touch the database", func(t *testing.T) {
		db := new(MockPinger)
		code, body := serve(db, "/health")

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", body.Status)
		db.AssertNotCalled(t, "Ping", mock.Anything)
	})

	t.Run("ready when the database answers", func(t *testing.T) {
		db := new(MockPinger)
		db.On("Ping", mock.Anything).Return(nil)
		code, body := serve(db, "/ready")

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", body.Database)
	})

	t.Run("not ready when the database is down", func(t *testing.T) {
		db := new(MockPinger)
		db.On("Ping", mock.Anything).Return(errors.New("dial tcp: connection refused"))
		code, body := serve(db, "/ready")

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unhealthy", body.Status)
		assert.Equal(t, "error", body.Database)
	})
}
