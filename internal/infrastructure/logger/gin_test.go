package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRouter(log *zap.Logger, skip ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(RequestIDKey, "req-123")
		c.Next()
	})
	router.Use(Recovery(log), GinMiddleware(log, skip...))
	return router
}

func serve(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	router := newTestRouter(zap.New(core))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/broken", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	serve(router, "/ok?page=2")
	serve(router, "/missing")
	serve(router, "/broken")

	logs := recorded.FilterMessage("http request").All()
	require.Len(t, logs, 3)
	assert.Equal(t, zapcore.InfoLevel, logs[0].Level)
	assert.Equal(t, zapcore.WarnLevel, logs[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, logs[2].Level)

	fields := logs[0].ContextMap()
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, "page=2", fields["query"])
	assert.Equal(t, "/ok", fields["route"])
}

func TestGinMiddleware_SkipsProbes(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	router := newTestRouter(zap.New(core), "/health")
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(router, "/health")
	assert.Zero(t, recorded.FilterMessage("http request").Len())
}

func TestGinMiddleware_PropagatesLoggerToRequestContext(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	router := newTestRouter(zap.New(core))
	router.GET("/ctx", func(c *gin.Context) {
		assert.Equal(t, "req-123", GetRequestID(c.Request.Context()))
		L(c.Request.Context()).Info("inside handler")
		GetGinLogger(c).Info("from gin")
		c.Status(http.StatusNoContent)
	})

	serve(router, "/ctx")
	assert.Equal(t, 1, recorded.FilterMessage("inside handler").Len())
	assert.Equal(t, 1, recorded.FilterMessage("from gin").Len())
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	router := newTestRouter(zap.New(core))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := serve(router, "/panic")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")

	panics := recorded.FilterMessage("panic recovered").All()
	require.Len(t, panics, 1)
	assert.Equal(t, "boom", panics[0].ContextMap()["panic"])
}

func TestGetGinLogger_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))
}
