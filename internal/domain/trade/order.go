package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a customer order
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// AllOrderStatuses lists every status in lifecycle order
var AllOrderStatuses = []OrderStatus{
	OrderStatusCreated,
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusConfirmed,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// PendingOrderStatuses are the statuses awaiting admin attention
var PendingOrderStatuses = []OrderStatus{OrderStatusPending, OrderStatusPaid}

// SoldOrderStatuses are the statuses counted as sales in statistics
var SoldOrderStatuses = []OrderStatus{OrderStatusPaid, OrderStatusConfirmed, OrderStatusCompleted}

// IsValid checks if the status is a known OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusCreated, OrderStatusPending, OrderStatusPaid,
		OrderStatusConfirmed, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusCreated:
		return target == OrderStatusPending || target == OrderStatusPaid ||
			target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusPending:
		return target == OrderStatusPaid || target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusPaid:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusCompleted || target == OrderStatusCancelled
	}
	return false
}

// PredecessorsOf returns every status that may transition into target
func PredecessorsOf(target OrderStatus) []OrderStatus {
	var out []OrderStatus
	for _, s := range AllOrderStatuses {
		if s.CanTransitionTo(target) {
			out = append(out, s)
		}
	}
	return out
}

// ParseOrderStatus converts a raw string into an OrderStatus
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", shared.InvalidInput(fmt.Sprintf("unknown order status %q", s))
	}
	return status, nil
}

// ValidateTransition returns ErrInvalidState when from cannot move to to
func ValidateTransition(from, to OrderStatus) error {
	if !to.IsValid() {
		return shared.InvalidInput(fmt.Sprintf("unknown order status %q", to))
	}
	if !from.CanTransitionTo(to) {
		return shared.InvalidState(fmt.Sprintf("cannot change order status from %s to %s", from, to))
	}
	return nil
}

// DeliveryType names the pickup point an order is collected from
type DeliveryType string

const (
	DeliveryPoint1 DeliveryType = "point1"
	DeliveryPoint2 DeliveryType = "point2"
)

// IsValid checks the delivery type is a known pickup point
func (d DeliveryType) IsValid() bool {
	return d == DeliveryPoint1 || d == DeliveryPoint2
}

// DeliveryForPoint maps a 1-based pickup point number to its DeliveryType
func DeliveryForPoint(point int) (DeliveryType, error) {
	switch point {
	case 1:
		return DeliveryPoint1, nil
	case 2:
		return DeliveryPoint2, nil
	}
	return "", shared.InvalidInput(fmt.Sprintf("unknown pickup point %d", point))
}

// Order is a placed customer order
type Order struct {
	ID           int64
	UserID       int64
	TotalAmount  decimal.Decimal
	DeliveryType DeliveryType
	PaymentType  string
	Status       OrderStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Items        []OrderItem
}

// OrderItem is a line of an order. Price is captured when the order is placed.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID *int64
	Quantity  int
	Price     decimal.Decimal
}

// Amount returns price times quantity
func (i OrderItem) Amount() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderSummary is an order joined with its customer and a display-only
// rendering of its items.
type OrderSummary struct {
	Order
	UserExternalID int64
	UserHandle     string
	UserLanguage   string
	ProductNames   string
	Quantities     string
}
