package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBConfig configures database tracing and metrics
type DBConfig struct {
	TracingEnabled    bool
	LogFullSQL        bool          // include query variables in spans; development only
	SlowQueryThresh   time.Duration // default 200ms
	DBSystem          string        // default "postgresql"
	PoolStatsInterval time.Duration // default 15s
}

// DefaultDBConfig returns the secure defaults
func DefaultDBConfig() DBConfig {
	return DBConfig{
		SlowQueryThresh:   200 * time.Millisecond,
		DBSystem:          "postgresql",
		PoolStatsInterval: 15 * time.Second,
	}
}

type queryStartKey struct{}

// DBObserver registers otelgorm tracing plus timing callbacks that flag slow
// queries on the active span and record query metrics.
type DBObserver struct {
	config DBConfig
	logger *zap.Logger

	queryDuration *Histogram
	slowQueries   *Counter
	poolConns     *Gauge

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewDBObserver creates an observer. A nil meter disables metrics.
func NewDBObserver(cfg DBConfig, meter metric.Meter, logger *zap.Logger) (*DBObserver, error) {
	def := DefaultDBConfig()
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = def.SlowQueryThresh
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = def.DBSystem
	}
	if cfg.PoolStatsInterval <= 0 {
		cfg.PoolStatsInterval = def.PoolStatsInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	o := &DBObserver{config: cfg, logger: logger, stopCh: make(chan struct{})}
	if meter == nil {
		return o, nil
	}

	var err error
	if o.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency distribution in seconds",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if o.slowQueries, err = NewCounter(meter, "db_slow_query_total", "Database queries slower than the threshold", "{query}"); err != nil {
		return nil, err
	}
	if o.poolConns, err = NewGauge(meter, "db_pool_connections", "Connections in the pool by state", "{connection}"); err != nil {
		return nil, err
	}
	return o, nil
}

type hookFunc func(name string, fn func(*gorm.DB)) error

// Register installs tracing and timing callbacks on db
func (o *DBObserver) Register(db *gorm.DB) error {
	if o.config.TracingEnabled {
		opts := []otelgorm.Option{otelgorm.WithDBName(o.config.DBSystem)}
		if !o.config.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return err
		}
	}

	cb := db.Callback()
	ops := []struct {
		name          string
		before, after hookFunc
	}{
		{"create",
			func(n string, f func(*gorm.DB)) error { return cb.Create().Before("gorm:create").Register(n, f) },
			func(n string, f func(*gorm.DB)) error { return cb.Create().After("gorm:create").Register(n, f) }},
		{"query",
			func(n string, f func(*gorm.DB)) error { return cb.Query().Before("gorm:query").Register(n, f) },
			func(n string, f func(*gorm.DB)) error { return cb.Query().After("gorm:query").Register(n, f) }},
		{"update",
			func(n string, f func(*gorm.DB)) error { return cb.Update().Before("gorm:update").Register(n, f) },
			func(n string, f func(*gorm.DB)) error { return cb.Update().After("gorm:update").Register(n, f) }},
		{"delete",
			func(n string, f func(*gorm.DB)) error { return cb.Delete().Before("gorm:delete").Register(n, f) },
			func(n string, f func(*gorm.DB)) error { return cb.Delete().After("gorm:delete").Register(n, f) }},
		{"row",
			func(n string, f func(*gorm.DB)) error { return cb.Row().Before("gorm:row").Register(n, f) },
			func(n string, f func(*gorm.DB)) error { return cb.Row().After("gorm:row").Register(n, f) }},
		{"raw",
			func(n string, f func(*gorm.DB)) error { return cb.Raw().Before("gorm:raw").Register(n, f) },
			func(n string, f func(*gorm.DB)) error { return cb.Raw().After("gorm:raw").Register(n, f) }},
	}
	for _, op := range ops {
		if err := op.before("shopbot_timing:before_"+op.name, markQueryStart); err != nil {
			return err
		}
		if err := op.after("shopbot_timing:after_"+op.name, o.afterQuery(op.name)); err != nil {
			return err
		}
	}

	o.logger.Info("Database observability registered",
		zap.Bool("tracing", o.config.TracingEnabled),
		zap.Bool("log_full_sql", o.config.LogFullSQL),
		zap.Duration("slow_query_threshold", o.config.SlowQueryThresh),
	)
	return nil
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (o *DBObserver) afterQuery(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		start, ok := ctx.Value(queryStartKey{}).(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(start)
		slow := elapsed > o.config.SlowQueryThresh

		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		if o.queryDuration != nil {
			o.queryDuration.RecordDuration(ctx, elapsed, AttrDBOperation.String(operation))
			if slow {
				o.slowQueries.Inc(ctx, AttrDBTable.String(table))
			}
		}

		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}
		span.SetAttributes(
			attribute.Int64("db.rows_affected", db.Statement.RowsAffected),
			attribute.String("db.sql.table", table),
		)
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}
		if slow {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", o.config.SlowQueryThresh.Milliseconds()),
			))
		}
	}
}

// StartPoolStats records connection pool gauges every PoolStatsInterval
// until ctx is done or Stop is called.
func (o *DBObserver) StartPoolStats(ctx context.Context, sqlDB *sql.DB) {
	if o.poolConns == nil || sqlDB == nil {
		return
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(o.config.PoolStatsInterval)
		defer ticker.Stop()

		o.collectPoolStats(ctx, sqlDB)
		for {
			select {
			case <-ticker.C:
				o.collectPoolStats(ctx, sqlDB)
			case <-o.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (o *DBObserver) collectPoolStats(ctx context.Context, sqlDB *sql.DB) {
	stats := sqlDB.Stats()
	o.poolConns.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
	o.poolConns.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
	o.poolConns.Record(ctx, int64(stats.OpenConnections), AttrDBState.String("open"))
	o.poolConns.Record(ctx, int64(stats.MaxOpenConnections), AttrDBState.String("max"))
}

// Stop ends pool stats collection. Safe to call more than once.
func (o *DBObserver) Stop() {
	o.stopOnce.Do(func() {
		close(o.stopCh)
		o.wg.Wait()
	})
}
