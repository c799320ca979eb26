package trade

import (
	"context"

	"github.com/shopbot/backend/internal/infrastructure/telemetry"
)

// Backlog reports pending orders and abandoned carts for the backlog gauges
type Backlog struct {
	orders *OrderService
	carts  *CartService
}

// NewBacklog creates a Backlog over the two services
func NewBacklog(orders *OrderService, carts *CartService) *Backlog {
	return &Backlog{orders: orders, carts: carts}
}

// CountPendingOrders implements telemetry.BacklogProvider
func (b *Backlog) CountPendingOrders(ctx context.Context) (int64, error) {
	pending, err := b.orders.orders.ListPending(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(pending)), nil
}

// CountAbandonedCarts implements telemetry.BacklogProvider
func (b *Backlog) CountAbandonedCarts(ctx context.Context) (int64, error) {
	return b.carts.CountAbandoned(ctx)
}

var _ telemetry.BacklogProvider = (*Backlog)(nil)
