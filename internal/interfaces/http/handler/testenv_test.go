package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	appcatalog "github.com/shopbot/backend/internal/application/catalog"
	appfeedback "github.com/shopbot/backend/internal/application/feedback"
	appidentity "github.com/shopbot/backend/internal/application/identity"
	appreport "github.com/shopbot/backend/internal/application/report"
	apptrade "github.com/shopbot/backend/internal/application/trade"
	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/infrastructure/config"
	"github.com/shopbot/backend/internal/infrastructure/inventory"
	"github.com/shopbot/backend/internal/infrastructure/persistence"
	"github.com/shopbot/backend/internal/interfaces/http/dto"
	"github.com/shopbot/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type staticSource struct {
	products []inventory.Product
}

func (s *staticSource) ListProducts(context.Context) []inventory.Product { return s.products }
func (s *staticSource) Locations() []inventory.Location                 { return nil }

// testEnv wires every service against an isolated in-memory sqlite database
type testEnv struct {
	t        *testing.T
	db       *persistence.Database
	engine   *gin.Engine
	catalog  *appcatalog.CatalogService
	sync     *appcatalog.SyncService
	source   *staticSource
	orders   *apptrade.OrderService
	carts    *apptrade.CartService
	users    *appidentity.UserService
	feedback *appfeedback.Service
	stats    *appreport.StatisticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.AutoMigrate(context.Background()))

	userRepo := persistence.NewGormUserRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)

	env := &testEnv{
		t:        t,
		db:       db,
		engine:   gin.New(),
		source:   &staticSource{},
		catalog:  appcatalog.NewCatalogService(categoryRepo, productRepo, nil),
		orders:   apptrade.NewOrderService(orderRepo, userRepo, apptrade.ShopDetails{Address1: "Main st. 1"}, nil),
		carts:    apptrade.NewCartService(cartRepo, userRepo, 0, nil),
		users:    appidentity.NewUserService(userRepo, nil),
		feedback: appfeedback.NewService(persistence.NewGormFeedbackRepository(db.DB), userRepo, nil),
		stats:    appreport.NewStatisticsService(persistence.NewGormStatisticsRepository(db.DB), nil),
	}
	env.sync = appcatalog.NewSyncService(appcatalog.SyncServiceConfig{
		Source:     env.source,
		Products:   productRepo,
		Categories: categoryRepo,
	})
	env.engine.Use(middleware.RequestID())
	return env
}

func (e *testEnv) seedProduct(code, name, price string) int64 {
	e.t.Helper()
	p, err := catalog.NewSyncedProduct(code, catalog.SyncFields{
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Quantity:    5,
		StockPoint1: true,
	})
	require.NoError(e.t, err)
	require.NoError(e.t, persistence.NewGormProductRepository(e.db.DB).Create(context.Background(), p))
	return p.ID
}

func (e *testEnv) placeOrder(externalID, productID int64) int64 {
	e.t.Helper()
	order, err := e.orders.PlaceOrder(context.Background(), apptrade.PlaceOrderRequest{
		Customer:  apptrade.Customer{ExternalID: externalID, Handle: "buyer"},
		ProductID: productID,
		Point:     1,
	})
	require.NoError(e.t, err)
	return order.ID
}

// do performs a request and decodes the envelope; data is decoded into out when given
func (e *testEnv) do(method, path string, body any, out any) (*httptest.ResponseRecorder, dto.Response) {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var resp dto.Response
	if w.Code != http.StatusNoContent {
		require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	if out != nil && resp.Data != nil {
		raw, err := json.Marshal(resp.Data)
		require.NoError(e.t, err)
		require.NoError(e.t, json.Unmarshal(raw, out))
	}
	return w, resp
}
