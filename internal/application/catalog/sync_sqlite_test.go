package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopbot/backend/internal/infrastructure/config"
	"github.com/shopbot/backend/internal/infrastructure/inventory"
	"github.com/shopbot/backend/internal/infrastructure/persistence"
	"github.com/shopbot/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upstreamHandler serves a two-product catalog: the first product has data on
// the primary stock report, the second only on the per-store report.
func upstreamHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body any
		switch r.URL.Path {
		case "/entity/product":
			body = map[string]any{"rows": []any{
				map[string]any{
					"id": "p-1", "name": "Mango", "code": "MANGO", "pathName": "Liquids/Salt",
					"salePrices": []any{map[string]any{"value": 500}},
				},
				map[string]any{
					"id": "p-2", "name": "Berry", "code": "BERRY", "pathName": "Liquids",
					"salePrices": []any{map[string]any{"value": 12345}},
				},
			}}
		case "/report/stock/all":
			if r.URL.Query().Get("product.id") == "p-1" {
				body = []any{map[string]any{
					"stock":        7,
					"stockByStore": []any{map[string]any{"name": "1 склад", "stock": 7}},
				}}
			} else {
				body = []any{}
			}
		case "/report/stock/bystore":
			if r.URL.Query().Get("product.id") == "p-2" {
				body = map[string]any{"rows": []any{map[string]any{"name": "2 склад", "stock": 12}}}
			} else {
				body = map[string]any{"rows": []any{}}
			}
		default:
			body = []any{}
		}
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(body))
	})
}

func TestSyncService_SQLiteRerunLeavesRowsUntouched(t *testing.T) {
	ctx := context.Background()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.AutoMigrate(ctx))

	server := httptest.NewServer(upstreamHandler(t))
	t.Cleanup(server.Close)

	client, err := inventory.NewClient(&inventory.Config{
		BaseURL:           server.URL,
		Login:             "admin@shop",
		Password:          "secret",
		RequestsPerSecond: 1000,
		Burst:             100,
		Locations:         testLocations,
	}, nil)
	require.NoError(t, err)

	svc := NewSyncService(SyncServiceConfig{
		Source:     client,
		Products:   persistence.NewGormProductRepository(db.DB),
		Categories: persistence.NewGormCategoryRepository(db.DB),
	})

	first, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncStatusSuccess, first.Status)
	assert.Equal(t, 2, first.Created)

	var before []models.ProductModel
	require.NoError(t, db.DB.Order("id").Find(&before).Error)
	require.Len(t, before, 2)

	mango, berry := before[0], before[1]
	assert.True(t, decimal.NewFromInt(5).Equal(mango.Price))
	assert.Equal(t, int64(7), mango.Quantity)
	assert.True(t, mango.StockPoint1)
	assert.False(t, mango.StockPoint2)
	assert.True(t, decimal.RequireFromString("123.45").Equal(berry.Price))
	assert.Equal(t, int64(12), berry.Quantity)
	assert.False(t, berry.StockPoint1)
	assert.True(t, berry.StockPoint2)

	var categoriesBefore []models.CategoryModel
	require.NoError(t, db.DB.Order("id").Find(&categoriesBefore).Error)

	second, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncStatusSuccess, second.Status)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 2, second.Unchanged)

	var after []models.ProductModel
	require.NoError(t, db.DB.Order("id").Find(&after).Error)
	assert.Equal(t, before, after)

	var categoriesAfter []models.CategoryModel
	require.NoError(t, db.DB.Order("id").Find(&categoriesAfter).Error)
	assert.Equal(t, categoriesBefore, categoriesAfter)
}
