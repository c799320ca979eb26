package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

func TestStartServiceSpan(t *testing.T) {
	recorder := useSpanRecorder(t)

	ctx, span := StartServiceSpan(context.Background(), "order", "change_status",
		SpanAttrOrderID, int64(42),
		SpanAttrOrderStatus, "paid",
	)
	assert.NotEmpty(t, GetTraceID(ctx))
	SetOK(span)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "order.change_status", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.Int64(SpanAttrOrderID, 42))
	assert.Contains(t, spans[0].Attributes(), attribute.String(SpanAttrOrderStatus, "paid"))
}

func TestRecordError(t *testing.T) {
	recorder := useSpanRecorder(t)

	_, span := StartSpan(context.Background(), "sync")
	RecordError(span, errors.New("boom"))
	RecordError(span, nil)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestToAttributes(t *testing.T) {
	attrs := toAttributes([]any{"a", "x", "b", 3, 7, "skipped", "c", true, "dangling"})

	assert.Equal(t, []attribute.KeyValue{
		attribute.String("a", "x"),
		attribute.Int("b", 3),
		attribute.Bool("c", true),
	}, attrs)
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, trace.AlwaysSample().Description(), samplerFor(1).Description())
	assert.Equal(t, trace.NeverSample().Description(), samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.5).Description(), "ParentBased")
}

func TestProviders_Disabled(t *testing.T) {
	ctx := context.Background()

	tp, err := NewTracerProvider(ctx, Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("x"))
	assert.NoError(t, mp.ForceFlush(ctx))
	assert.NoError(t, mp.Shutdown(ctx))
}
