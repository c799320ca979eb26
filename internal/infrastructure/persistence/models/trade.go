package models

import (
	"time"

	"github.com/shopbot/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order domain entity.
type OrderModel struct {
	ID           int64            `gorm:"primaryKey;autoIncrement"`
	UserID       int64            `gorm:"not null;index:idx_orders_user_id"`
	TotalAmount  decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	DeliveryType string           `gorm:"type:varchar(20);not null"`
	PaymentType  string           `gorm:"type:varchar(50)"`
	Status       string           `gorm:"type:varchar(20);not null;default:'created';index:idx_orders_status"`
	CreatedAt    time.Time        `gorm:"not null;index:idx_orders_created_at"`
	UpdatedAt    time.Time        `gorm:"not null"`
	Items        []OrderItemModel `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *trade.Order {
	items := make([]trade.OrderItem, len(m.Items))
	for i := range m.Items {
		items[i] = m.Items[i].ToDomain()
	}
	return &trade.Order{
		ID:           m.ID,
		UserID:       m.UserID,
		TotalAmount:  m.TotalAmount,
		DeliveryType: trade.DeliveryType(m.DeliveryType),
		PaymentType:  m.PaymentType,
		Status:       trade.OrderStatus(m.Status),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		Items:        items,
	}
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.ID = o.ID
	m.UserID = o.UserID
	m.TotalAmount = o.TotalAmount
	m.DeliveryType = string(o.DeliveryType)
	m.PaymentType = o.PaymentType
	m.Status = o.Status.String()
	m.CreatedAt = o.CreatedAt
	m.UpdatedAt = o.UpdatedAt
	m.Items = make([]OrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i].FromDomain(&o.Items[i])
	}
}

// OrderItemModel is the persistence model for an order line.
type OrderItemModel struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	OrderID   int64           `gorm:"not null;index:idx_order_items_order_id"`
	ProductID *int64          `gorm:"index:idx_order_items_product_id"`
	Quantity  int             `gorm:"not null;default:1"`
	Price     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem.
func (m *OrderItemModel) ToDomain() trade.OrderItem {
	return trade.OrderItem{
		ID:        m.ID,
		OrderID:   m.OrderID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		Price:     m.Price,
	}
}

// FromDomain populates the persistence model from a domain OrderItem.
func (m *OrderItemModel) FromDomain(i *trade.OrderItem) {
	m.ID = i.ID
	m.OrderID = i.OrderID
	m.ProductID = i.ProductID
	m.Quantity = i.Quantity
	m.Price = i.Price
}

// CartModel is the persistence model for the Cart domain entity.
type CartModel struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	UserID      int64      `gorm:"not null;index:idx_carts_user_id"`
	ProductID   int64      `gorm:"not null"`
	Quantity    int        `gorm:"not null;default:1"`
	Status      string     `gorm:"type:varchar(20);not null;default:'active';index:idx_carts_status_updated,priority:1"`
	LastUpdated time.Time  `gorm:"not null;index:idx_carts_status_updated,priority:2"`
	RemindedAt  *time.Time `gorm:"column:reminded_at"`
}

// TableName returns the table name for GORM
func (CartModel) TableName() string {
	return "carts"
}

// ToDomain converts the persistence model to a domain Cart entity.
func (m *CartModel) ToDomain() *trade.Cart {
	return &trade.Cart{
		ID:          m.ID,
		UserID:      m.UserID,
		ProductID:   m.ProductID,
		Quantity:    m.Quantity,
		Status:      trade.CartStatus(m.Status),
		LastUpdated: m.LastUpdated,
		RemindedAt:  m.RemindedAt,
	}
}

// FromDomain populates the persistence model from a domain Cart entity.
func (m *CartModel) FromDomain(c *trade.Cart) {
	m.ID = c.ID
	m.UserID = c.UserID
	m.ProductID = c.ProductID
	m.Quantity = c.Quantity
	m.Status = string(c.Status)
	m.LastUpdated = c.LastUpdated
	m.RemindedAt = c.RemindedAt
}
