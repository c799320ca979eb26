package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testRow struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&testRow{}))
	return db
}

func TestNewDBObserver_Defaults(t *testing.T) {
	o, err := NewDBObserver(DBConfig{}, nil, nil)
	require.NoError(t, err)

	def := DefaultDBConfig()
	assert.Equal(t, def.SlowQueryThresh, o.config.SlowQueryThresh)
	assert.Equal(t, "postgresql", o.config.DBSystem)
	assert.Equal(t, def.PoolStatsInterval, o.config.PoolStatsInterval)
	assert.Nil(t, o.queryDuration)
}

func TestDBObserver_Register_TracingDisabled(t *testing.T) {
	db := setupTestDB(t)
	o, err := NewDBObserver(DBConfig{}, nil, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, o.Register(db))
	require.NoError(t, db.Create(&testRow{Name: "a"}).Error)

	var rows []testRow
	require.NoError(t, db.Find(&rows).Error)
	assert.Len(t, rows, 1)
}

func TestDBObserver_Register_TracingEnabled(t *testing.T) {
	recorder := useSpanRecorder(t)
	db := setupTestDB(t)

	o, err := NewDBObserver(DBConfig{TracingEnabled: true, DBSystem: "sqlite"}, nil, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, o.Register(db))

	ctx, parent := otel.Tracer("test").Start(context.Background(), "parent")
	require.NoError(t, db.WithContext(ctx).Create(&testRow{Name: "a"}).Error)
	parent.End()

	assert.Greater(t, len(recorder.Ended()), 1)
}

func TestDBObserver_SlowQueryAnnotatesSpan(t *testing.T) {
	recorder := useSpanRecorder(t)
	db := setupTestDB(t)

	o, err := NewDBObserver(DBConfig{SlowQueryThresh: time.Nanosecond}, nil, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, o.Register(db))

	ctx, span := otel.Tracer("test").Start(context.Background(), "parent")
	var rows []testRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Contains(t, ended[0].Attributes(), attribute.Bool("db.slow_query", true))
	assert.Contains(t, ended[0].Attributes(), attribute.String("db.sql.table", "test_rows"))
}

func TestDBObserver_RecordsQueryMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	db := setupTestDB(t)

	o, err := NewDBObserver(DBConfig{SlowQueryThresh: time.Nanosecond}, mp.Meter("test"), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, o.Register(db))

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&testRow{Name: "a"}).Error)

	rm := collect(t, reader)
	_, ok := findMetric(rm, "db_query_duration_seconds")
	assert.True(t, ok)
	slow, ok := findMetric(rm, "db_slow_query_total")
	require.True(t, ok)
	assert.GreaterOrEqual(t, sumTotal(slow), int64(1))
}

func TestDBObserver_PoolStats(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	db := setupTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	o, err := NewDBObserver(DBConfig{PoolStatsInterval: time.Hour}, mp.Meter("test"), zap.NewNop())
	require.NoError(t, err)

	o.collectPoolStats(context.Background(), sqlDB)
	o.StartPoolStats(context.Background(), sqlDB)
	o.Stop()
	o.Stop()

	rm := collect(t, reader)
	_, ok := findMetric(rm, "db_pool_connections")
	assert.True(t, ok)
}
