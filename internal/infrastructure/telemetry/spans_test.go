package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/farmerp/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func TestStartServiceSpan(t *testing.T) {
	recorder := setupRecorder(t)
	orderID := uuid.New()

	ctx, span := telemetry.StartServiceSpan(context.Background(), "purchase_order", "transition",
		telemetry.SpanAttrOrderID, orderID,
		telemetry.SpanAttrInstallments, 3,
	)
	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	telemetry.SetAttributes(span, telemetry.SpanAttrToStatus, "APPROVED", 42, "ignored")
	telemetry.AddEvent(span, "schedule_generated", "count", int64(3))
	telemetry.RecordError(span, errors.New("boom"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, "purchase_order.transition", got.Name())
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Contains(t, got.Attributes(), attribute.String(telemetry.SpanAttrOrderID, orderID.String()))
	assert.Contains(t, got.Attributes(), attribute.Int(telemetry.SpanAttrInstallments, 3))
	assert.Contains(t, got.Attributes(), attribute.String(telemetry.SpanAttrToStatus, "APPROVED"))
	require.Len(t, got.Events(), 2) // schedule_generated and the recorded exception
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, telemetry.GetTraceID(context.Background()))
}

func TestSpanHelpers_NilSafe(t *testing.T) {
	telemetry.SetAttributes(nil, "k", "v")
	telemetry.RecordError(nil, errors.New("x"))
	telemetry.AddEvent(nil, "e")
}
