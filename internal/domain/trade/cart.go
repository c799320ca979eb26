package trade

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultAbandonAfter is the idle time after which an active cart counts as abandoned
const DefaultAbandonAfter = 24 * time.Hour

// CartStatus represents the status of a cart line
type CartStatus string

const (
	CartStatusActive    CartStatus = "active"
	CartStatusAbandoned CartStatus = "abandoned"
	CartStatusCompleted CartStatus = "completed"
)

// IsValid checks if the status is a known CartStatus
func (s CartStatus) IsValid() bool {
	switch s {
	case CartStatusActive, CartStatusAbandoned, CartStatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s CartStatus) CanTransitionTo(target CartStatus) bool {
	return s == CartStatusActive && (target == CartStatusAbandoned || target == CartStatusCompleted)
}

// Cart is one product a user intends to buy
type Cart struct {
	ID          int64
	UserID      int64
	ProductID   int64
	Quantity    int
	Status      CartStatus
	LastUpdated time.Time
	RemindedAt  *time.Time
}

// IsAbandoned reports whether the cart is active and idle for strictly longer than idle
func (c *Cart) IsAbandoned(now time.Time, idle time.Duration) bool {
	return c.Status == CartStatusActive && now.Sub(c.LastUpdated) > idle
}

// NeedsReminder reports whether no reminder was sent since the last cart update
func (c *Cart) NeedsReminder() bool {
	return c.RemindedAt == nil || c.RemindedAt.Before(c.LastUpdated)
}

// AbandonedCart is an abandoned cart joined with its product and customer
type AbandonedCart struct {
	Cart
	ProductName    string
	Price          decimal.Decimal
	UserExternalID int64
	UserLanguage   string
}

// Total returns price times quantity
func (a AbandonedCart) Total() decimal.Decimal {
	return a.Price.Mul(decimal.NewFromInt(int64(a.Quantity)))
}
