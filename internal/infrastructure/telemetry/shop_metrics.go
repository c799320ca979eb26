package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when ShopMetrics is built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// BacklogProvider reports work waiting on staff or customers
type BacklogProvider interface {
	CountPendingOrders(ctx context.Context) (int64, error)
	CountAbandonedCarts(ctx context.Context) (int64, error)
}

// ShopMetricsConfig configures ShopMetrics
type ShopMetricsConfig struct {
	Meter    metric.Meter
	Logger   *zap.Logger
	Provider BacklogProvider
	Interval time.Duration // backlog gauge refresh; default 1m
}

// ShopMetrics records business metrics. All recording methods are safe on a
// nil receiver so services can run without metrics.
type ShopMetrics struct {
	logger   *zap.Logger
	provider BacklogProvider
	interval time.Duration

	syncRuns       *Counter
	syncDuration   *Histogram
	syncItems      *Counter
	ordersPlaced   *Counter
	statusChanges  *Counter
	cartReminders  *Counter
	pendingOrders  *Gauge
	abandonedCarts *Gauge

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewShopMetrics registers all business instruments on cfg.Meter
func NewShopMetrics(cfg ShopMetricsConfig) (*ShopMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}

	m := &ShopMetrics{
		logger:   cfg.Logger,
		provider: cfg.Provider,
		interval: cfg.Interval,
		stopCh:   make(chan struct{}),
	}

	var err error
	if m.syncRuns, err = NewCounter(cfg.Meter, "catalog_sync_runs_total", "Catalog sync runs by final status", "{run}"); err != nil {
		return nil, err
	}
	if m.syncDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "catalog_sync_duration_seconds",
		Description: "Catalog sync run duration in seconds",
		Unit:        "s",
		Boundaries:  JobDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.syncItems, err = NewCounter(cfg.Meter, "catalog_sync_items_total", "Catalog sync items by outcome", "{item}"); err != nil {
		return nil, err
	}
	if m.ordersPlaced, err = NewCounter(cfg.Meter, "orders_placed_total", "Orders placed by delivery point", "{order}"); err != nil {
		return nil, err
	}
	if m.statusChanges, err = NewCounter(cfg.Meter, "order_status_changes_total", "Order status transitions by target status", "{transition}"); err != nil {
		return nil, err
	}
	if m.cartReminders, err = NewCounter(cfg.Meter, "cart_reminders_total", "Abandoned cart reminders by result", "{reminder}"); err != nil {
		return nil, err
	}
	if m.pendingOrders, err = NewGauge(cfg.Meter, "orders_pending", "Orders awaiting staff action", "{order}"); err != nil {
		return nil, err
	}
	if m.abandonedCarts, err = NewGauge(cfg.Meter, "carts_abandoned", "Active carts idle past the abandon threshold", "{cart}"); err != nil {
		return nil, err
	}
	return m, nil
}

// SyncItemCounts is the per-outcome breakdown of one sync run
type SyncItemCounts struct {
	Created int
	Updated int
	Skipped int
	Failed  int
}

// RecordSyncRun records the outcome of one catalog sync run
func (m *ShopMetrics) RecordSyncRun(ctx context.Context, status string, d time.Duration, items SyncItemCounts) {
	if m == nil {
		return
	}
	m.syncRuns.Inc(ctx, AttrSyncStatus.String(status))
	m.syncDuration.RecordDuration(ctx, d, AttrSyncStatus.String(status))
	for outcome, n := range map[string]int{
		"created": items.Created,
		"updated": items.Updated,
		"skipped": items.Skipped,
		"failed":  items.Failed,
	} {
		if n > 0 {
			m.syncItems.Add(ctx, int64(n), AttrSyncOutcome.String(outcome))
		}
	}
}

// RecordOrderPlaced counts a new order
func (m *ShopMetrics) RecordOrderPlaced(ctx context.Context, delivery string) {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc(ctx, AttrDelivery.String(delivery))
}

// RecordStatusChange counts a successful order status transition
func (m *ShopMetrics) RecordStatusChange(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.statusChanges.Inc(ctx, AttrOrderStatus.String(status))
}

// RecordCartReminder counts one reminder attempt; ok=false means delivery failed
func (m *ShopMetrics) RecordCartReminder(ctx context.Context, ok bool) {
	if m == nil {
		return
	}
	result := "sent"
	if !ok {
		result = "failed"
	}
	m.cartReminders.Inc(ctx, AttrResult.String(result))
}

// CollectBacklog refreshes the backlog gauges once
func (m *ShopMetrics) CollectBacklog(ctx context.Context) {
	if m == nil || m.provider == nil {
		return
	}
	if n, err := m.provider.CountPendingOrders(ctx); err != nil {
		m.logger.Warn("Failed to count pending orders", zap.Error(err))
	} else {
		m.pendingOrders.Record(ctx, n)
	}
	if n, err := m.provider.CountAbandonedCarts(ctx); err != nil {
		m.logger.Warn("Failed to count abandoned carts", zap.Error(err))
	} else {
		m.abandonedCarts.Record(ctx, n)
	}
}

// Start refreshes backlog gauges periodically until ctx is done or Stop is called
func (m *ShopMetrics) Start(ctx context.Context) {
	if m == nil || m.provider == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.CollectBacklog(ctx)
		for {
			select {
			case <-ticker.C:
				m.CollectBacklog(ctx)
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends periodic collection
func (m *ShopMetrics) Stop() {
	if m == nil {
		return
	}
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()
	})
}
