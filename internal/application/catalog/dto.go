package catalog

import (
	"time"

	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=255"`
	ParentID *int64 `json:"parent_id" binding:"omitempty,min=1"`
}

// UpdateCategoryRequest renames or moves a category. A nil ParentID promotes
// the category to a root.
type UpdateCategoryRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=255"`
	ParentID *int64 `json:"parent_id" binding:"omitempty,min=1"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

// UpdateProductRequest is a partial product update; omitted fields are kept
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string          `json:"description" binding:"omitempty,max=4000"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int64           `json:"quantity" binding:"omitempty,min=0"`
	CategoryID  *int64           `json:"category_id" binding:"omitempty,min=1"`
	ImageURL    *string          `json:"image_url" binding:"omitempty,max=1024"`
	Strength    *string          `json:"strength" binding:"omitempty,max=50"`
}

// Patch converts the request into a domain patch
func (r UpdateProductRequest) Patch() catalog.ProductPatch {
	return catalog.ProductPatch{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Quantity:    r.Quantity,
		CategoryID:  r.CategoryID,
		ImageURL:    r.ImageURL,
		Strength:    r.Strength,
	}
}

// UpdateStockRequest toggles availability at one pickup point
type UpdateStockRequest struct {
	Point   int   `json:"point" binding:"required,oneof=1 2"`
	InStock *bool `json:"in_stock" binding:"required"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Code        string          `json:"code"`
	ExternalID  string          `json:"external_id"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	CategoryID  *int64          `json:"category_id"`
	ImageURL    string          `json:"image_url"`
	StockPoint1 bool            `json:"stock_point1"`
	StockPoint2 bool            `json:"stock_point2"`
	Strength    string          `json:"strength"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToCategoryResponse converts a domain category to a response
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, ParentID: c.ParentID}
}

// ToCategoryResponses converts a slice of categories
func ToCategoryResponses(categories []catalog.Category) []CategoryResponse {
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
	}
	return out
}

// ToProductResponse converts a domain product to a response
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Code:        p.CodeValue(),
		ExternalID:  p.ExternalID,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		CategoryID:  p.CategoryID,
		ImageURL:    p.ImageURL,
		StockPoint1: p.StockPoint1,
		StockPoint2: p.StockPoint2,
		Strength:    p.Strength,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}
