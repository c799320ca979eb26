package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/infrastructure/cache"
	"github.com/shopbot/backend/internal/infrastructure/inventory"
	"github.com/shopbot/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SyncStatus is the overall outcome of a reconciliation run
type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "SUCCESS"
	SyncStatusPartial SyncStatus = "PARTIAL"
	SyncStatusFailed  SyncStatus = "FAILED"
)

const (
	syncLockName       = "catalog_sync"
	defaultSyncLockTTL = 15 * time.Minute

	// location keys mapped onto the two product stock flags
	locationPoint1 = "point1"
	locationPoint2 = "point2"
)

// ErrSyncInProgress is returned when another run holds the sync lock
var ErrSyncInProgress = errors.New("catalog: sync already in progress")

// ProductSource lists upstream products. Implementations never fail: an
// unreachable upstream yields an empty slice.
type ProductSource interface {
	ListProducts(ctx context.Context) []inventory.Product
	Locations() []inventory.Location
}

// SyncResult summarizes one reconciliation run
type SyncResult struct {
	RunID      uuid.UUID  `json:"run_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	Total      int        `json:"total"`
	Created    int        `json:"created"`
	Updated    int        `json:"updated"`
	Unchanged  int        `json:"unchanged"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
	Status     SyncStatus `json:"status"`
	Message    string     `json:"message,omitempty"`
}

func (r *SyncResult) finish(now time.Time) {
	r.FinishedAt = now
	succeeded := r.Created + r.Updated + r.Unchanged
	switch {
	case r.Total > 0 && r.Failed == 0:
		r.Status = SyncStatusSuccess
	case r.Failed > 0 && succeeded > 0:
		r.Status = SyncStatusPartial
	default:
		r.Status = SyncStatusFailed
	}
}

// SyncServiceConfig configures a SyncService
type SyncServiceConfig struct {
	Source     ProductSource
	Products   catalog.ProductRepository
	Categories catalog.CategoryRepository
	Lock       cache.RunLock
	LockTTL    time.Duration
	Metrics    *telemetry.ShopMetrics
	Logger     *zap.Logger
}

// SyncService reconciles the local catalog against the inventory service.
// Upstream data always wins for the fields it owns.
type SyncService struct {
	source     ProductSource
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	lock       cache.RunLock
	lockTTL    time.Duration
	metrics    *telemetry.ShopMetrics
	logger     *zap.Logger
	now        func() time.Time

	mu   sync.RWMutex
	last *SyncResult
}

// NewSyncService creates a SyncService
func NewSyncService(cfg SyncServiceConfig) *SyncService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Lock == nil {
		cfg.Lock = cache.NewInMemoryRunLock()
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultSyncLockTTL
	}
	return &SyncService{
		source:     cfg.Source,
		products:   cfg.Products,
		categories: cfg.Categories,
		lock:       cfg.Lock,
		lockTTL:    cfg.LockTTL,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger.With(zap.String("component", "catalog_sync")),
		now:        time.Now,
	}
}

// LastResult returns the result of the most recent completed run, or nil
func (s *SyncService) LastResult() *SyncResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	r := *s.last
	return &r
}

// Run performs one reconciliation. Per-item storage failures are counted in
// the result; only failing to start or to load local state returns an error.
func (s *SyncService) Run(ctx context.Context) (*SyncResult, error) {
	release, err := s.lock.Acquire(ctx, syncLockName, s.lockTTL)
	if err != nil {
		if errors.Is(err, cache.ErrLockHeld) {
			return nil, ErrSyncInProgress
		}
		return nil, fmt.Errorf("catalog: failed to acquire sync lock: %w", err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("Failed to release sync lock", zap.Error(err))
		}
	}()

	result := &SyncResult{RunID: uuid.New(), StartedAt: s.now()}
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "sync",
		telemetry.SpanAttrSyncRunID, result.RunID.String())
	defer span.End()

	log := s.logger.With(zap.String("run_id", result.RunID.String()))
	log.Info("Catalog sync started")

	err = s.reconcile(ctx, log, result)
	result.finish(s.now())
	if err != nil {
		result.Status = SyncStatusFailed
		result.Message = err.Error()
		telemetry.RecordError(span, err)
	} else {
		telemetry.SetAttributes(span,
			"sync.status", string(result.Status),
			"sync.created", result.Created,
			"sync.updated", result.Updated,
			"sync.failed", result.Failed,
		)
		telemetry.SetOK(span)
	}

	s.metrics.RecordSyncRun(ctx, string(result.Status), result.FinishedAt.Sub(result.StartedAt), telemetry.SyncItemCounts{
		Created: result.Created,
		Updated: result.Updated,
		Skipped: result.Skipped,
		Failed:  result.Failed,
	})
	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	log.Info("Catalog sync finished",
		zap.String("status", string(result.Status)),
		zap.Int("total", result.Total),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("unchanged", result.Unchanged),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", result.FinishedAt.Sub(result.StartedAt)),
	)
	return result, err
}

func (s *SyncService) reconcile(ctx context.Context, log *zap.Logger, result *SyncResult) error {
	upstream := s.source.ListProducts(ctx)
	result.Total = len(upstream)
	if len(upstream) == 0 {
		result.Message = "nothing to do"
		log.Warn("Inventory returned no products, leaving local catalog untouched")
		return nil
	}

	local, err := s.products.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("catalog: failed to load local products: %w", err)
	}
	byCode := make(map[string]*catalog.Product, len(local))
	for i := range local {
		if code := local[i].CodeValue(); code != "" {
			byCode[code] = &local[i]
		}
	}

	locations := s.source.Locations()
	categoryCache := make(map[string]*int64)

	for _, item := range upstream {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if item.Code == "" {
			result.Skipped++
			log.Warn("Skipping upstream product without code",
				zap.String("external_id", item.ExternalID),
				zap.String("name", item.Name),
			)
			continue
		}

		categoryID, err := s.resolveCategory(ctx, item.CategoryPath, categoryCache)
		if err != nil {
			result.Failed++
			log.Error("Failed to resolve category",
				zap.String("code", item.Code),
				zap.Strings("path", item.CategoryPath),
				zap.Error(err),
			)
			continue
		}

		fields := syncFields(item, categoryID, locations)
		if existing, ok := byCode[item.Code]; ok {
			if !existing.ApplySync(fields) {
				result.Unchanged++
				continue
			}
			if err := s.products.Update(ctx, existing); err != nil {
				result.Failed++
				log.Error("Failed to update product", zap.String("code", item.Code), zap.Error(err))
				continue
			}
			result.Updated++
			continue
		}

		product, err := catalog.NewSyncedProduct(item.Code, fields)
		if err != nil {
			result.Failed++
			log.Warn("Rejected upstream product", zap.String("code", item.Code), zap.Error(err))
			continue
		}
		if err := s.products.Create(ctx, product); err != nil {
			result.Failed++
			log.Error("Failed to create product", zap.String("code", item.Code), zap.Error(err))
			continue
		}
		byCode[item.Code] = product
		result.Created++
	}
	return nil
}

func (s *SyncService) resolveCategory(ctx context.Context, path []string, cached map[string]*int64) (*int64, error) {
	if len(path) == 0 {
		return nil, nil
	}
	key := strings.Join(path, "/")
	if id, ok := cached[key]; ok {
		return id, nil
	}
	id, err := s.categories.EnsurePath(ctx, path)
	if err != nil {
		return nil, err
	}
	cached[key] = id
	return id, nil
}

func syncFields(item inventory.Product, categoryID *int64, locations []inventory.Location) catalog.SyncFields {
	flags := item.Stock.LocationFlags(locations)
	return catalog.SyncFields{
		ExternalID:  item.ExternalID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		Quantity:    item.Quantity,
		CategoryID:  categoryID,
		ImageURL:    item.ImageURL,
		StockPoint1: flags[locationPoint1],
		StockPoint2: flags[locationPoint2],
		Strength:    item.Strength,
	}
}
