package inventory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{
			name:   "valid config",
			config: &Config{Login: "admin@shop", Password: "secret"},
		},
		{
			name:    "missing login",
			config:  &Config{Password: "secret"},
			wantErr: ErrConfigMissingLogin,
		},
		{
			name:    "missing password",
			config:  &Config{Login: "admin@shop"},
			wantErr: ErrConfigMissingPassword,
		},
		{
			name:    "bad base url",
			config:  &Config{Login: "admin@shop", Password: "secret", BaseURL: "ftp://example.com"},
			wantErr: ErrConfigInvalidBaseURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultBaseURL, tt.config.BaseURL)
			assert.Equal(t, DefaultTimeoutSeconds, tt.config.TimeoutSeconds)
			assert.Equal(t, DefaultPageSize, tt.config.PageSize)
			assert.Equal(t, DefaultStrengthAttribute, tt.config.StrengthAttribute)
		})
	}
}

func TestLocation_Matches(t *testing.T) {
	loc := Location{Key: "point1", StoreMatch: []string{"1 склад", "Main"}}
	assert.True(t, loc.Matches("Склад: 1 Склад (центр)"))
	assert.True(t, loc.Matches("main warehouse"))
	assert.False(t, loc.Matches("2 склад"))
	assert.False(t, Location{Key: "empty"}.Matches("1 склад"))
}

// ---------------------------------------------------------------------------
// Stock level
// ---------------------------------------------------------------------------

func TestStockLevel_LocationFlags(t *testing.T) {
	locations := []Location{
		{Key: "point1", StoreMatch: []string{"1 склад"}},
		{Key: "point2", StoreMatch: []string{"2 склад"}},
	}

	t.Run("per store breakdown", func(t *testing.T) {
		level := StockLevel{
			Total: decimal.NewFromInt(3),
			Stores: []StoreStock{
				{Name: "1 склад", Quantity: decimal.NewFromInt(3)},
				{Name: "2 склад", Quantity: decimal.Zero},
			},
		}
		assert.Equal(t, map[string]bool{"point1": true, "point2": false}, level.LocationFlags(locations))
	})

	t.Run("no breakdown follows total", func(t *testing.T) {
		assert.Equal(t, map[string]bool{"point1": true, "point2": true},
			StockLevel{Total: decimal.NewFromInt(1)}.LocationFlags(locations))
		assert.Equal(t, map[string]bool{"point1": false, "point2": false},
			StockLevel{Total: decimal.Zero}.LocationFlags(locations))
	})

	t.Run("negative store stock is not available", func(t *testing.T) {
		level := StockLevel{
			Total:  decimal.NewFromInt(-1),
			Stores: []StoreStock{{Name: "2 склад", Quantity: decimal.NewFromInt(-1)}},
		}
		assert.Equal(t, map[string]bool{"point1": false, "point2": false}, level.LocationFlags(locations))
	})
}

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		set   bool
		want  string
	}{
		{`12`, true, "12"},
		{`12.5`, true, "12.5"},
		{`"7"`, true, "7"},
		{`null`, false, "0"},
		{`"n/a"`, false, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var n number
			require.NoError(t, json.Unmarshal([]byte(tt.input), &n))
			assert.Equal(t, tt.set, n.Set)
			assert.Equal(t, tt.want, n.Value.String())
		})
	}
}

// ---------------------------------------------------------------------------
// Client Tests
// ---------------------------------------------------------------------------

type fakeInventory struct {
	t        *testing.T
	products []map[string]any
	stockAll map[string]any
	byStore  map[string]any
	current  map[string]any
	stores   []map[string]any
	fail     bool
	requests atomic.Int32
}

func (f *fakeInventory) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	user, pass, ok := r.BasicAuth()
	if !ok || user != "admin@shop" || pass != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if f.fail {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	var body any
	switch r.URL.Path {
	case "/entity/product":
		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))
		end := min(offset+limit, len(f.products))
		rows := []map[string]any{}
		if offset < len(f.products) {
			rows = f.products[offset:end]
		}
		body = map[string]any{"meta": map[string]any{"size": len(f.products)}, "rows": rows}
	case "/report/stock/all":
		body = orEmptyList(f.stockAll[q.Get("product.id")])
	case "/report/stock/bystore":
		if v, ok := f.byStore[q.Get("product.id")]; ok {
			body = v
		} else {
			body = map[string]any{"rows": []any{}}
		}
	case "/report/stock/bystore/current":
		body = orEmptyList(f.current[q.Get("filter")])
	case "/entity/store":
		body = map[string]any{"rows": f.stores}
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	assert.NoError(f.t, json.NewEncoder(w).Encode(body))
}

func orEmptyList(v any) any {
	if v == nil {
		return []any{}
	}
	return v
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{
		BaseURL:           server.URL,
		Login:             "admin@shop",
		Password:          "secret",
		PageSize:          2,
		RequestsPerSecond: 1000,
		Burst:             100,
		StrengthAttribute: "крепость",
	}, nil)
	require.NoError(t, err)
	return client
}

func TestClient_ListProducts(t *testing.T) {
	fake := &fakeInventory{
		products: []map[string]any{
			{
				"id":          "aaaa-0001",
				"name":        " Mango ",
				"code":        "MANGO",
				"description": "sweet",
				"pathName":    "Liquids/Salt",
				"salePrices":  []any{map[string]any{"value": 15050}},
				"attributes": []any{
					map[string]any{"name": "Крепость", "value": map[string]any{"name": "20mg"}},
				},
			},
			{
				"id":         "bbbb-123456789",
				"name":       "Berry",
				"salePrices": []any{map[string]any{"value": 99999}},
				"attributes": []any{map[string]any{"name": "color", "value": "red"}},
			},
			{
				"id":   "c3",
				"name": "Coil",
				"code": "COIL",
			},
		},
		stockAll: map[string]any{
			"aaaa-0001": []any{map[string]any{
				"stock": 5,
				"stockByStore": []any{
					map[string]any{"name": "1 склад", "stock": 5},
					map[string]any{"name": "2 склад", "stock": 0},
				},
			}},
		},
		byStore: map[string]any{
			"bbbb-123456789": map[string]any{"rows": []any{
				map[string]any{"name": "2 склад", "stock": 4},
				map[string]any{"name": "1 склад", "stock": -2},
			}},
		},
		current: map[string]any{
			"assortmentId=c3": []any{
				map[string]any{"storeId": "s1", "stock": 2.5},
				map[string]any{"storeId": "s2", "stock": 0},
			},
		},
		stores: []map[string]any{
			{"id": "s1", "name": "1 склад"},
			{"id": "s2", "name": "2 склад"},
		},
	}
	fake.t = t
	client := newTestClient(t, fake)

	products := client.ListProducts(context.Background())
	require.Len(t, products, 3)

	mango := products[0]
	assert.Equal(t, "aaaa-0001", mango.ExternalID)
	assert.Equal(t, "Mango", mango.Name)
	assert.Equal(t, "MANGO", mango.Code)
	assert.Equal(t, "sweet", mango.Description)
	assert.True(t, decimal.RequireFromString("150.5").Equal(mango.Price))
	assert.Equal(t, []string{"Liquids", "Salt"}, mango.CategoryPath)
	assert.Equal(t, "20mg", mango.Strength)
	assert.Equal(t, int64(5), mango.Quantity)
	assert.Equal(t, StrategyStockAll, mango.Stock.Strategy)
	assert.Equal(t, "", mango.ImageURL)

	berry := products[1]
	assert.Equal(t, "ID_456789", berry.Code)
	assert.True(t, decimal.RequireFromString("999.99").Equal(berry.Price))
	assert.Empty(t, berry.Strength)
	assert.Equal(t, StrategyStockByStore, berry.Stock.Strategy)
	assert.Equal(t, int64(4), berry.Quantity)

	coil := products[2]
	assert.Equal(t, StrategyStockByStoreCurrent, coil.Stock.Strategy)
	assert.Equal(t, int64(2), coil.Quantity)
	assert.True(t, decimal.Zero.Equal(coil.Price))
	require.Len(t, coil.Stock.Stores, 2)
	assert.Equal(t, "1 склад", coil.Stock.Stores[0].Name)
	assert.Equal(t, "2 склад", coil.Stock.Stores[1].Name)

	locations := []Location{
		{Key: "point1", StoreMatch: []string{"1 склад"}},
		{Key: "point2", StoreMatch: []string{"2 склад"}},
	}
	assert.Equal(t, map[string]bool{"point1": true, "point2": false}, mango.Stock.LocationFlags(locations))
	assert.Equal(t, map[string]bool{"point1": false, "point2": true}, berry.Stock.LocationFlags(locations))
	assert.Equal(t, map[string]bool{"point1": true, "point2": false}, coil.Stock.LocationFlags(locations))
}

func TestClient_ListProducts_UpstreamFailure(t *testing.T) {
	fake := &fakeInventory{t: t, fail: true}
	client := newTestClient(t, fake)

	products := client.ListProducts(context.Background())
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestClient_ListProducts_MalformedJSON(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rows": [`))
	}))

	assert.Empty(t, client.ListProducts(context.Background()))
}

func TestClient_ListProducts_CancelledContext(t *testing.T) {
	fake := &fakeInventory{t: t, products: []map[string]any{{"id": "a", "name": "A", "code": "A"}}}
	client := newTestClient(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, client.ListProducts(ctx))
}

func TestClient_GetStock_NoData(t *testing.T) {
	fake := &fakeInventory{t: t}
	client := newTestClient(t, fake)

	level := client.GetStock(context.Background(), "unknown")
	assert.Equal(t, StrategyNone, level.Strategy)
	assert.True(t, level.Total.IsZero())
	assert.Empty(t, level.Stores)
}

func TestClient_GetStock_MalformedRepliesYieldZero(t *testing.T) {
	tests := []struct {
		name   string
		bodies map[string]string
	}{
		{
			name: "truncated json",
			bodies: map[string]string{
				"/report/stock/all":             `{"oops":`,
				"/report/stock/bystore":         `{"oops":`,
				"/report/stock/bystore/current": `{"oops":`,
				"/entity/store":                 `{"oops":`,
			},
		},
		{
			name: "wrong shape",
			bodies: map[string]string{
				"/report/stock/all":             `{"rows": [{"stock": 5}]}`,
				"/report/stock/bystore":         `[{"stock": 5}]`,
				"/report/stock/bystore/current": `{"storeId": "s1", "stock": 5}`,
				"/entity/store":                 `[]`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, ok := tt.bodies[r.URL.Path]
				if !ok {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
			}))

			level := client.GetStock(context.Background(), "p")
			assert.Equal(t, StrategyNone, level.Strategy)
			assert.True(t, level.Total.IsZero())
			assert.Empty(t, level.Stores)
		})
	}
}

func TestClient_GetStock_StockAllFallsBackToStoreSum(t *testing.T) {
	fake := &fakeInventory{
		t: t,
		stockAll: map[string]any{
			"p": []any{map[string]any{
				"stockByStore": []any{
					map[string]any{"name": "1 склад", "stock": 2},
					map[string]any{"name": "2 склад", "quantity": 3},
				},
			}},
		},
	}
	client := newTestClient(t, fake)

	level := client.GetStock(context.Background(), "p")
	assert.Equal(t, StrategyStockAll, level.Strategy)
	assert.True(t, decimal.NewFromInt(5).Equal(level.Total))
}

func TestClient_ListStores_Cached(t *testing.T) {
	fake := &fakeInventory{t: t, stores: []map[string]any{{"id": "s1", "name": "1 склад"}}}
	client := newTestClient(t, fake)

	first := client.ListStores(context.Background())
	second := client.ListStores(context.Background())
	assert.Equal(t, map[string]string{"s1": "1 склад"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), fake.requests.Load())
}

func TestClient_RejectsBadCredentials(t *testing.T) {
	server := httptest.NewServer(&fakeInventory{t: t})
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{
		BaseURL:           server.URL,
		Login:             "admin@shop",
		Password:          "wrong",
		RequestsPerSecond: 1000,
		Burst:             100,
	}, nil)
	require.NoError(t, err)

	_, err = client.doRequest(context.Background(), "/entity/store", nil)
	assert.ErrorIs(t, err, ErrRequestFailed)
}
