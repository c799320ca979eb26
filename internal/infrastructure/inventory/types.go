package inventory

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is one upstream catalog row, normalized for reconciliation
type Product struct {
	ExternalID   string
	Name         string
	Code         string
	Description  string
	Price        decimal.Decimal
	Quantity     int64
	ImageURL     string
	CategoryPath []string
	Strength     string
	Stock        StockLevel
}

// StoreStock is the quantity held at one upstream store
type StoreStock struct {
	StoreID  string
	Name     string
	Quantity decimal.Decimal
}

// StockLevel is the resolved stock of one product
type StockLevel struct {
	Strategy string
	Total    decimal.Decimal
	Stores   []StoreStock
}

// LocationFlags reports, per location key, whether any matching store has
// stock. Without a per-store breakdown every flag equals Total > 0.
func (s StockLevel) LocationFlags(locations []Location) map[string]bool {
	flags := make(map[string]bool, len(locations))
	if len(s.Stores) == 0 {
		for _, loc := range locations {
			flags[loc.Key] = s.Total.IsPositive()
		}
		return flags
	}
	for _, loc := range locations {
		for _, store := range s.Stores {
			if store.Quantity.IsPositive() && loc.Matches(store.Name) {
				flags[loc.Key] = true
				break
			}
		}
		if _, ok := flags[loc.Key]; !ok {
			flags[loc.Key] = false
		}
	}
	return flags
}

// number is a JSON quantity that may arrive as a number, a numeric string or
// null. Set reports whether a usable value was present.
type number struct {
	Value decimal.Decimal
	Set   bool
}

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := strings.Trim(string(data), `"`)
	v, err := decimal.NewFromString(raw)
	if err != nil {
		// non-numeric quantities are treated as absent
		return nil
	}
	n.Value, n.Set = v, true
	return nil
}

// listMeta is the paging block of a list response
type listMeta struct {
	Size   int `json:"size"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// productListResponse is the response of GET /entity/product
type productListResponse struct {
	Meta listMeta     `json:"meta"`
	Rows []productRow `json:"rows"`
}

type productRow struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Code        string           `json:"code"`
	Description string           `json:"description"`
	PathName    string           `json:"pathName"`
	SalePrices  []salePrice      `json:"salePrices"`
	Attributes  []attributeValue `json:"attributes"`
}

type salePrice struct {
	Value number `json:"value"`
}

// attributeValue is a custom field; Value may be a string, a number, a bool
// or a reference object carrying a name.
type attributeValue struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// text renders the attribute value as display text
func (a attributeValue) text() string {
	if len(a.Value) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(a.Value, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var ref struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(a.Value, &ref); err == nil && ref.Name != "" {
		return strings.TrimSpace(ref.Name)
	}
	var n number
	if err := n.UnmarshalJSON(a.Value); err == nil && n.Set {
		return n.Value.String()
	}
	return ""
}

// stockAllRow is one element of GET /report/stock/all
type stockAllRow struct {
	Stock        number         `json:"stock"`
	Quantity     number         `json:"quantity"`
	StockByStore []storeRowJSON `json:"stockByStore"`
}

type storeRowJSON struct {
	Name     string `json:"name"`
	Stock    number `json:"stock"`
	Quantity number `json:"quantity"`
}

func (s storeRowJSON) amount() decimal.Decimal {
	if s.Stock.Set {
		return s.Stock.Value
	}
	return s.Quantity.Value
}

// stockByStoreResponse is the response of GET /report/stock/bystore
type stockByStoreResponse struct {
	Rows []stockByStoreRow `json:"rows"`
}

type stockByStoreRow struct {
	Name         string         `json:"name"`
	Stock        number         `json:"stock"`
	Quantity     number         `json:"quantity"`
	StockByStore []storeRowJSON `json:"stockByStore"`
}

// currentStockRow is one element of GET /report/stock/bystore/current
type currentStockRow struct {
	StoreID  string `json:"storeId"`
	Stock    number `json:"stock"`
	Quantity number `json:"quantity"`
}

// storeListResponse is the response of GET /entity/store
type storeListResponse struct {
	Rows []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"rows"`
}
