package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Notification types carried on the wire
const (
	TypeOrderStatusChanged = "order.status_changed"
	TypeCartReminder       = "cart.reminder"
)

// Envelope identifies one outgoing notification
type Envelope struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEnvelope stamps a fresh id and the current time
func NewEnvelope(notificationType string) Envelope {
	return Envelope{
		ID:         uuid.New(),
		Type:       notificationType,
		OccurredAt: time.Now().UTC(),
	}
}

// OrderStatusChanged tells a customer that their order moved to a new status
type OrderStatusChanged struct {
	Envelope
	OrderID        int64           `json:"order_id"`
	UserExternalID int64           `json:"user_external_id"`
	Language       string          `json:"language"`
	Status         string          `json:"status"`
	Total          decimal.Decimal `json:"total"`
	ProductNames   string          `json:"product_names"`
	Quantities     string          `json:"quantities"`
	PickupAddress  string          `json:"pickup_address,omitempty"`
	PaymentDetails string          `json:"payment_details,omitempty"`
}

// CartReminder nudges a customer about a cart left idle
type CartReminder struct {
	Envelope
	CartID         int64           `json:"cart_id"`
	UserExternalID int64           `json:"user_external_id"`
	Language       string          `json:"language"`
	ProductName    string          `json:"product_name"`
	Quantity       int             `json:"quantity"`
	Total          decimal.Decimal `json:"total"`
}

// Notifier delivers customer-facing notifications to the chat layer
type Notifier interface {
	OrderStatusChanged(ctx context.Context, n OrderStatusChanged) error
	CartReminder(ctx context.Context, n CartReminder) error
}
