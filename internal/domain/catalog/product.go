package catalog

import (
	"context"
	"time"

	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item. Code is the stable key shared with the
// upstream inventory service.
type Product struct {
	ID          int64
	Name        string
	Code        *string
	ExternalID  string
	Description string
	Price       decimal.Decimal
	Quantity    int64
	CategoryID  *int64
	ImageURL    string
	StockPoint1 bool
	StockPoint2 bool
	Strength    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CodeValue returns the code or "" when unset
func (p *Product) CodeValue() string {
	if p.Code == nil {
		return ""
	}
	return *p.Code
}

// InStock reports whether any pickup point has the product
func (p *Product) InStock() bool {
	return p.StockPoint1 || p.StockPoint2
}

// SyncFields are the product attributes owned by inventory reconciliation
type SyncFields struct {
	ExternalID  string
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int64
	CategoryID  *int64
	ImageURL    string
	StockPoint1 bool
	StockPoint2 bool
	Strength    string
}

// NewSyncedProduct builds a product from reconciled upstream data
func NewSyncedProduct(code string, f SyncFields) (*Product, error) {
	if code == "" {
		return nil, shared.InvalidInput("product code is required")
	}
	if f.Name == "" {
		return nil, shared.InvalidInput("product name is required")
	}
	if f.Price.IsNegative() {
		return nil, shared.InvalidInput("product price cannot be negative")
	}
	p := &Product{Code: &code}
	p.ApplySync(f)
	return p, nil
}

// ApplySync overwrites the reconciliation-owned fields and reports whether
// anything changed. Unchanged products are left untouched so repeated runs
// against the same upstream data do not rewrite rows.
func (p *Product) ApplySync(f SyncFields) bool {
	changed := p.Name != f.Name ||
		p.Description != f.Description ||
		!p.Price.Equal(f.Price) ||
		p.Quantity != f.Quantity ||
		!equalIDPtr(p.CategoryID, f.CategoryID) ||
		p.ImageURL != f.ImageURL ||
		p.StockPoint1 != f.StockPoint1 ||
		p.StockPoint2 != f.StockPoint2 ||
		p.Strength != f.Strength ||
		(f.ExternalID != "" && p.ExternalID != f.ExternalID)
	if !changed {
		return false
	}

	p.Name = f.Name
	p.Description = f.Description
	p.Price = f.Price
	p.Quantity = f.Quantity
	p.CategoryID = f.CategoryID
	p.ImageURL = f.ImageURL
	p.StockPoint1 = f.StockPoint1
	p.StockPoint2 = f.StockPoint2
	p.Strength = f.Strength
	if f.ExternalID != "" {
		p.ExternalID = f.ExternalID
	}
	return true
}

func equalIDPtr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ProductPatch is a partial admin update; nil fields are left unchanged
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Quantity    *int64
	CategoryID  *int64
	ImageURL    *string
	Strength    *string
}

// IsEmpty reports whether the patch sets nothing
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.Quantity == nil && p.CategoryID == nil && p.ImageURL == nil && p.Strength == nil
}

// Validate checks the fields that are set
func (p ProductPatch) Validate() error {
	if p.IsEmpty() {
		return shared.InvalidInput("no fields to update")
	}
	if p.Name != nil && *p.Name == "" {
		return shared.InvalidInput("product name cannot be empty")
	}
	if p.Price != nil && p.Price.IsNegative() {
		return shared.InvalidInput("product price cannot be negative")
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		return shared.InvalidInput("product quantity cannot be negative")
	}
	return nil
}

// StockPoint identifies one of the two pickup locations
type StockPoint int

const (
	StockPoint1 StockPoint = 1
	StockPoint2 StockPoint = 2
)

// IsValid checks the point is a known location
func (s StockPoint) IsValid() bool {
	return s == StockPoint1 || s == StockPoint2
}

// ProductRepository defines persistence for products
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByCode(ctx context.Context, code string) (*Product, error)

	// ListAll returns every product ordered by name
	ListAll(ctx context.Context) ([]Product, error)

	// ListByCategory returns products of one category; nil lists uncategorized products
	ListByCategory(ctx context.Context, categoryID *int64) ([]Product, error)

	Create(ctx context.Context, product *Product) error

	// Update overwrites all stored fields of the product
	Update(ctx context.Context, product *Product) error

	// UpdateFields applies a partial update
	UpdateFields(ctx context.Context, id int64, patch ProductPatch) error

	UpdateStock(ctx context.Context, id int64, point StockPoint, inStock bool) error

	Delete(ctx context.Context, id int64) error
}
