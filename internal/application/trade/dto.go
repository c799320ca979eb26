package trade

import (
	"time"

	"github.com/shopbot/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// Customer identifies the chat user acting on an order or cart. The user is
// registered on first contact.
type Customer struct {
	ExternalID int64  `json:"external_id" binding:"required"`
	Handle     string `json:"handle" binding:"max=255"`
	Language   string `json:"language" binding:"omitempty,max=16"`
}

// PlaceOrderRequest places a single-product order
type PlaceOrderRequest struct {
	Customer
	ProductID int64 `json:"product_id" binding:"required,min=1"`
	Point     int   `json:"point" binding:"required,oneof=1 2"`
}

// AddToCartRequest adds a product to the customer's cart
type AddToCartRequest struct {
	Customer
	ProductID int64 `json:"product_id" binding:"required,min=1"`
	Quantity  int   `json:"quantity" binding:"required,min=1,max=100"`
}

// ChangeStatusRequest moves an order to a new status. Force overwrites the
// status without the transition check and is meant for admin corrections.
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Force  bool   `json:"force"`
}

// ListOrdersRequest filters the admin order listing
type ListOrdersRequest struct {
	Status   string `form:"status"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// OrderItemResponse is one line of an order
type OrderItemResponse struct {
	ProductID *int64          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID             int64               `json:"id"`
	UserID         int64               `json:"user_id"`
	UserExternalID int64               `json:"user_external_id"`
	UserHandle     string              `json:"user_handle"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	DeliveryType   string              `json:"delivery_type"`
	PaymentType    string              `json:"payment_type"`
	Status         string              `json:"status"`
	ProductNames   string              `json:"product_names"`
	Quantities     string              `json:"quantities"`
	Items          []OrderItemResponse `json:"items,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// ToOrderResponse converts an order summary to a response
func ToOrderResponse(s *trade.OrderSummary) OrderResponse {
	resp := OrderResponse{
		ID:             s.ID,
		UserID:         s.UserID,
		UserExternalID: s.UserExternalID,
		UserHandle:     s.UserHandle,
		TotalAmount:    s.TotalAmount,
		DeliveryType:   string(s.DeliveryType),
		PaymentType:    s.PaymentType,
		Status:         string(s.Status),
		ProductNames:   s.ProductNames,
		Quantities:     s.Quantities,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
	for _, item := range s.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Amount:    item.Amount(),
		})
	}
	return resp
}

// ToOrderResponses converts a slice of order summaries
func ToOrderResponses(summaries []trade.OrderSummary) []OrderResponse {
	out := make([]OrderResponse, len(summaries))
	for i := range summaries {
		out[i] = ToOrderResponse(&summaries[i])
	}
	return out
}

// CartResponse represents a cart line in API responses
type CartResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	ProductID   int64     `json:"product_id"`
	Quantity    int       `json:"quantity"`
	Status      string    `json:"status"`
	LastUpdated time.Time `json:"last_updated"`
}

// ToCartResponse converts a cart to a response
func ToCartResponse(c *trade.Cart) CartResponse {
	return CartResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		ProductID:   c.ProductID,
		Quantity:    c.Quantity,
		Status:      string(c.Status),
		LastUpdated: c.LastUpdated,
	}
}

// AbandonedCartResponse is an idle cart with its product and customer
type AbandonedCartResponse struct {
	CartResponse
	ProductName    string          `json:"product_name"`
	Price          decimal.Decimal `json:"price"`
	Total          decimal.Decimal `json:"total"`
	UserExternalID int64           `json:"user_external_id"`
	RemindedAt     *time.Time      `json:"reminded_at"`
}

// ReminderResult summarizes one abandoned cart reminder pass
type ReminderResult struct {
	Found   int `json:"found"`
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}
