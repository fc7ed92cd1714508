package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(t.Context())
	})
	return recorder
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing(t *testing.T) {
	recorder := withRecorder(t)

	r := gin.New()
	r.Use(RequestID(), Tracing("farmerp-test"))
	r.Use(func(c *gin.Context) {
		c.Set(FirmIDKey, "firm-1")
		c.Next()
	})
	r.Use(SpanAttributes(), SpanErrorMarker())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/boom", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.Status(http.StatusInternalServerError)
	})

	for _, path := range []string{"/health", "/api/v1/orders/42", "/api/v1/boom"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	spans := recorder.Ended()
	require.Len(t, spans, 2, "health probes are not traced")

	ok := spans[0]
	assert.Contains(t, ok.Name(), "/api/v1/orders/:id")
	firm, found := spanAttr(ok, "firm_id")
	require.True(t, found)
	assert.Equal(t, "firm-1", firm.AsString())
	_, found = spanAttr(ok, "request_id")
	assert.True(t, found)
	assert.NotEqual(t, codes.Error, ok.Status().Code)

	failed := spans[1]
	assert.Equal(t, codes.Error, failed.Status().Code)
	msg, found := spanAttr(failed, "error.message")
	require.True(t, found)
	assert.Equal(t, assert.AnError.Error(), msg.AsString())
}
