package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxResponseSize is the maximum allowed response size from the inventory API (10MB)
const maxResponseSize = 10 * 1024 * 1024

const (
	// maxPages bounds product paging against an upstream that never returns a short page
	maxPages      = 1000
	storeCacheTTL = 10 * time.Minute
	fallbackCode  = "ID_"
)

// Stock strategy names, in the order they are tried
const (
	StrategyStockAll            = "stock_all"
	StrategyStockByStore        = "stock_bystore"
	StrategyStockByStoreCurrent = "stock_bystore_current"
	StrategyNone                = "none"
)

// Errors returned by the transport layer. Public operations log them and
// degrade to empty results.
var (
	ErrRequestFailed  = errors.New("inventory: request failed")
	ErrUnavailable    = errors.New("inventory: service unavailable")
	ErrMalformedReply = errors.New("inventory: malformed response")
)

type stockStrategy struct {
	name  string
	fetch func(ctx context.Context, productID string) (StockLevel, bool)
}

// Client reads the product catalog and stock levels from the inventory service
type Client struct {
	config     *Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	strategies []stockStrategy

	storesMu       sync.Mutex
	stores         map[string]string
	storesLoadedAt time.Time
	now            func() time.Time
}

// NewClient creates a client with the given configuration
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		logger:  logger.With(zap.String("component", "inventory_client")),
		now:     time.Now,
	}
	c.strategies = []stockStrategy{
		{name: StrategyStockAll, fetch: c.stockAll},
		{name: StrategyStockByStore, fetch: c.stockByStore},
		{name: StrategyStockByStoreCurrent, fetch: c.stockByStoreCurrent},
	}
	return c, nil
}

// Locations returns the configured pickup point mapping
func (c *Client) Locations() []Location {
	return c.config.Locations
}

// ListProducts fetches every upstream product with its resolved stock. Any
// transport or decoding failure is logged and yields an empty slice.
func (c *Client) ListProducts(ctx context.Context) []Product {
	var rows []productRow
	for page := 0; page < maxPages; page++ {
		offset := page * c.config.PageSize
		query := url.Values{}
		query.Set("limit", strconv.Itoa(c.config.PageSize))
		query.Set("offset", strconv.Itoa(offset))

		var resp productListResponse
		if err := c.getJSON(ctx, "/entity/product", query, &resp); err != nil {
			c.logger.Error("Failed to list products", zap.Int("offset", offset), zap.Error(err))
			return []Product{}
		}
		rows = append(rows, resp.Rows...)
		if len(resp.Rows) < c.config.PageSize {
			break
		}
		if resp.Meta.Size > 0 && len(rows) >= resp.Meta.Size {
			break
		}
	}

	products := make([]Product, 0, len(rows))
	for _, row := range rows {
		if ctx.Err() != nil {
			c.logger.Warn("Product listing cancelled", zap.Int("resolved", len(products)), zap.Error(ctx.Err()))
			return []Product{}
		}
		p := c.normalize(row)
		p.Stock = c.GetStock(ctx, row.ID)
		p.Quantity = quantityOf(p.Stock.Total)
		products = append(products, p)
	}

	c.logger.Info("Fetched products from inventory", zap.Int("count", len(products)))
	return products
}

func (c *Client) normalize(row productRow) Product {
	p := Product{
		ExternalID:   row.ID,
		Name:         strings.TrimSpace(row.Name),
		Code:         strings.TrimSpace(row.Code),
		Description:  row.Description,
		Price:        decimal.Zero,
		CategoryPath: catalog.SplitCategoryPath(row.PathName),
	}
	if p.Code == "" && row.ID != "" {
		p.Code = fallbackCode + lastN(row.ID, 6)
	}
	if len(row.SalePrices) > 0 && row.SalePrices[0].Value.Set {
		// prices are stored upstream in minor units
		p.Price = row.SalePrices[0].Value.Value.Shift(-2)
	}
	for _, attr := range row.Attributes {
		if strings.EqualFold(strings.TrimSpace(attr.Name), c.config.StrengthAttribute) {
			p.Strength = attr.text()
			break
		}
	}
	return p
}

// GetStock resolves the stock of one product by trying each strategy in
// order. The first strategy that finds data wins; when none does the level
// is zero with strategy "none".
func (c *Client) GetStock(ctx context.Context, productID string) StockLevel {
	for _, s := range c.strategies {
		if level, ok := s.fetch(ctx, productID); ok {
			level.Strategy = s.name
			return level
		}
	}
	c.logger.Debug("No stock data found", zap.String("product_id", productID))
	return StockLevel{Strategy: StrategyNone, Total: decimal.Zero}
}

func (c *Client) stockAll(ctx context.Context, productID string) (StockLevel, bool) {
	query := url.Values{}
	query.Set("product.id", productID)

	var rows []stockAllRow
	if err := c.getJSON(ctx, "/report/stock/all", query, &rows); err != nil {
		c.logStrategyFailure(StrategyStockAll, productID, err)
		return StockLevel{}, false
	}
	if len(rows) == 0 {
		return StockLevel{}, false
	}

	first := rows[0]
	level := StockLevel{Total: decimal.Zero}
	storeSum := decimal.Zero
	for _, s := range first.StockByStore {
		qty := s.amount()
		storeSum = storeSum.Add(qty)
		level.Stores = append(level.Stores, StoreStock{Name: s.Name, Quantity: qty})
	}
	switch {
	case first.Stock.Set:
		level.Total = first.Stock.Value
	case first.Quantity.Set:
		level.Total = first.Quantity.Value
	default:
		level.Total = storeSum
	}
	return level, true
}

func (c *Client) stockByStore(ctx context.Context, productID string) (StockLevel, bool) {
	query := url.Values{}
	query.Set("product.id", productID)

	var resp stockByStoreResponse
	if err := c.getJSON(ctx, "/report/stock/bystore", query, &resp); err != nil {
		c.logStrategyFailure(StrategyStockByStore, productID, err)
		return StockLevel{}, false
	}
	if len(resp.Rows) == 0 {
		return StockLevel{}, false
	}

	level := StockLevel{Total: decimal.Zero}
	for _, row := range resp.Rows {
		rowTotal := decimal.Zero
		switch {
		case row.Stock.Set:
			rowTotal = row.Stock.Value
		case row.Quantity.Set:
			rowTotal = row.Quantity.Value
		}

		if len(row.StockByStore) > 0 {
			storeSum := decimal.Zero
			for _, s := range row.StockByStore {
				qty := s.amount()
				if qty.IsPositive() {
					storeSum = storeSum.Add(qty)
				}
				level.Stores = append(level.Stores, StoreStock{Name: s.Name, Quantity: qty})
			}
			if !row.Stock.Set && !row.Quantity.Set {
				rowTotal = storeSum
			}
		} else if row.Name != "" {
			level.Stores = append(level.Stores, StoreStock{Name: row.Name, Quantity: rowTotal})
		}

		if rowTotal.IsPositive() {
			level.Total = level.Total.Add(rowTotal)
		}
	}
	return level, true
}

func (c *Client) stockByStoreCurrent(ctx context.Context, productID string) (StockLevel, bool) {
	query := url.Values{}
	query.Set("filter", "assortmentId="+productID)

	var rows []currentStockRow
	if err := c.getJSON(ctx, "/report/stock/bystore/current", query, &rows); err != nil {
		c.logStrategyFailure(StrategyStockByStoreCurrent, productID, err)
		return StockLevel{}, false
	}
	if len(rows) == 0 {
		return StockLevel{}, false
	}

	names := c.ListStores(ctx)
	level := StockLevel{Total: decimal.Zero}
	for _, row := range rows {
		qty := row.Stock.Value
		if !row.Stock.Set {
			qty = row.Quantity.Value
		}
		if qty.IsPositive() {
			level.Total = level.Total.Add(qty)
		}
		level.Stores = append(level.Stores, StoreStock{
			StoreID:  row.StoreID,
			Name:     names[row.StoreID],
			Quantity: qty,
		})
	}
	return level, true
}

// ListStores returns upstream store names keyed by store id. Results are
// cached briefly; failures yield an empty map.
func (c *Client) ListStores(ctx context.Context) map[string]string {
	c.storesMu.Lock()
	defer c.storesMu.Unlock()

	if c.stores != nil && c.now().Sub(c.storesLoadedAt) < storeCacheTTL {
		return c.stores
	}

	var resp storeListResponse
	if err := c.getJSON(ctx, "/entity/store", nil, &resp); err != nil {
		c.logger.Warn("Failed to list stores", zap.Error(err))
		return map[string]string{}
	}
	stores := make(map[string]string, len(resp.Rows))
	for _, s := range resp.Rows {
		stores[s.ID] = s.Name
	}
	c.stores = stores
	c.storesLoadedAt = c.now()
	return stores
}

func (c *Client) logStrategyFailure(strategy, productID string, err error) {
	c.logger.Debug("Stock strategy failed",
		zap.String("strategy", strategy),
		zap.String("product_id", productID),
		zap.Error(err),
	)
}

// getJSON performs a rate-limited authenticated GET and decodes the body into dest
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("inventory: rate limiter: %w", err)
	}

	endpoint := c.config.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("inventory: failed to create request: %w", err)
	}
	req.SetBasicAuth(c.config.Login, c.config.Password)
	req.Header.Set("Accept", "application/json;charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("inventory: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrRequestFailed, resp.StatusCode)
	}
	return body, nil
}

// quantityOf truncates a stock total to whole units; negative totals count as zero
func quantityOf(total decimal.Decimal) int64 {
	if !total.IsPositive() {
		return 0
	}
	return total.IntPart()
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
