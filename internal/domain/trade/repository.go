package trade

import (
	"context"
	"time"

	"github.com/shopbot/backend/internal/domain/shared"
)

// OrderFilter narrows an order listing
type OrderFilter struct {
	shared.Filter
	Status *OrderStatus
}

// OrderRepository defines persistence for orders and their items
type OrderRepository interface {
	// Create places a single-product order: the product's current price becomes
	// the order total and the price of its only item (quantity 1). Returns
	// ErrNotFound when the product does not exist.
	Create(ctx context.Context, userID, productID int64, delivery DeliveryType) (int64, error)

	// CreateFromCart converts an active cart into an order and completes the cart
	CreateFromCart(ctx context.Context, cartID int64) (int64, error)

	// UpdateStatus overwrites the status without checking the current one.
	// Reports whether a row was affected.
	UpdateStatus(ctx context.Context, orderID int64, status OrderStatus) (bool, error)

	// TransitionStatus sets to only while the stored status is from.
	// Reports whether a row was affected.
	TransitionStatus(ctx context.Context, orderID int64, from, to OrderStatus) (bool, error)

	GetByID(ctx context.Context, orderID int64) (*OrderSummary, error)
	ListByUser(ctx context.Context, userID int64) ([]OrderSummary, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)

	// ListPending returns orders in PendingOrderStatuses, newest first
	ListPending(ctx context.Context) ([]OrderSummary, error)

	List(ctx context.Context, filter OrderFilter) ([]OrderSummary, int64, error)
}

// CartRepository defines persistence for carts
type CartRepository interface {
	// Upsert adds quantity to the user's active cart line for the product, creating it if needed
	Upsert(ctx context.Context, userID, productID int64, quantity int) (*Cart, error)

	GetByID(ctx context.Context, id int64) (*Cart, error)

	// ListAbandoned returns active carts whose last update is strictly older than now-idle
	ListAbandoned(ctx context.Context, now time.Time, idle time.Duration) ([]AbandonedCart, error)

	// Abandon marks an active cart as abandoned
	Abandon(ctx context.Context, id int64) error

	MarkReminded(ctx context.Context, id int64, at time.Time) error
}
