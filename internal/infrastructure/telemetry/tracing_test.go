package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func useRecorder(t *testing.T) *tracetest.SpanRecorder {
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
	recorder := useRecorder(t)

	ctx, span := StartServiceSpan(context.Background(), "order", "claim",
		SpanAttrOrderID, "a1b2", "items", 3, "odd")
	assert.NotEmpty(t, GetTraceID(ctx))
	EndSpan(span, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "order.claim", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String(SpanAttrOrderID, "a1b2"))
	assert.Contains(t, spans[0].Attributes(), attribute.Int("items", 3))
	assert.Len(t, spans[0].Attributes(), 2)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestEndSpan_RecordsError(t *testing.T) {
	recorder := useRecorder(t)

	_, span := StartServiceSpan(context.Background(), "order", "confirm")
	EndSpan(span, errors.New("lock timeout"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "lock timeout", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}
