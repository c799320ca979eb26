package models

import (
	"time"

	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for the Category domain entity.
type CategoryModel struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Name     string `gorm:"type:varchar(255);not null"`
	ParentID *int64 `gorm:"index:idx_categories_parent_id"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		ID:       m.ID,
		Name:     m.Name,
		ParentID: m.ParentID,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.ID = c.ID
	m.Name = c.Name
	m.ParentID = c.ParentID
}

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	Name        string          `gorm:"type:varchar(255);not null"`
	Code        *string         `gorm:"type:varchar(100);uniqueIndex:idx_products_code"`
	ExternalID  string          `gorm:"column:external_id;type:varchar(64);index:idx_products_external_id"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Quantity    int64           `gorm:"not null;default:0"`
	CategoryID  *int64          `gorm:"index:idx_products_category_id"`
	ImageURL    string          `gorm:"column:image_url;type:varchar(500)"`
	StockPoint1 bool            `gorm:"column:stock_point1;not null;default:false"`
	StockPoint2 bool            `gorm:"column:stock_point2;not null;default:false"`
	Strength    string          `gorm:"type:varchar(64)"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		ID:          m.ID,
		Name:        m.Name,
		Code:        m.Code,
		ExternalID:  m.ExternalID,
		Description: m.Description,
		Price:       m.Price,
		Quantity:    m.Quantity,
		CategoryID:  m.CategoryID,
		ImageURL:    m.ImageURL,
		StockPoint1: m.StockPoint1,
		StockPoint2: m.StockPoint2,
		Strength:    m.Strength,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.ID = p.ID
	m.Name = p.Name
	m.Code = p.Code
	m.ExternalID = p.ExternalID
	m.Description = p.Description
	m.Price = p.Price
	m.Quantity = p.Quantity
	m.CategoryID = p.CategoryID
	m.ImageURL = p.ImageURL
	m.StockPoint1 = p.StockPoint1
	m.StockPoint2 = p.StockPoint2
	m.Strength = p.Strength
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
