package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type memoryLogExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *memoryLogExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *memoryLogExporter) Shutdown(context.Context) error   { return nil }
func (e *memoryLogExporter) ForceFlush(context.Context) error { return nil }

func (e *memoryLogExporter) snapshot() []sdklog.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sdklog.Record(nil), e.records...)
}

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	lp, err := NewLoggerProvider(ctx, LogsConfig{Enabled: false, ServiceName: "shopbot-test"}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())

	base := zap.NewNop()
	assert.Same(t, base, lp.Bridge(base))
	assert.NoError(t, lp.ForceFlush(ctx))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestLoggerProvider_BridgeTeesToExporter(t *testing.T) {
	ctx := context.Background()
	exporter := &memoryLogExporter{}
	lp, err := newLoggerProvider(LogsConfig{Enabled: true, ServiceName: "shopbot-test"},
		sdklog.NewSimpleProcessor(exporter), zap.NewNop())
	require.NoError(t, err)
	require.True(t, lp.IsEnabled())
	t.Cleanup(func() { _ = lp.Shutdown(ctx) })

	core, observed := observer.New(zapcore.InfoLevel)
	log := lp.Bridge(zap.New(core))

	log.Debug("below threshold")
	log.Info("order placed", zap.Int64("order_id", 7))
	log.With(zap.String("job", "catalog_sync")).Warn("sync slow")
	require.NoError(t, lp.ForceFlush(ctx))

	assert.Equal(t, 2, observed.Len())

	records := exporter.snapshot()
	require.Len(t, records, 2)
	assert.Equal(t, "order placed", records[0].Body().AsString())
	assert.Equal(t, otellog.SeverityInfo, records[0].Severity())
	assert.Equal(t, "sync slow", records[1].Body().AsString())
	assert.Equal(t, otellog.SeverityWarn, records[1].Severity())

	attrs := map[string]otellog.Value{}
	for _, r := range records {
		r.WalkAttributes(func(kv otellog.KeyValue) bool {
			attrs[kv.Key] = kv.Value
			return true
		})
	}
	assert.Equal(t, int64(7), attrs["order_id"].AsInt64())
	assert.Equal(t, "catalog_sync", attrs["job"].AsString())
}
