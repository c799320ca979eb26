package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormOrderRepository_Create(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)
	userID := seedUser(t, db, 501, "eve")
	productID := seedProduct(t, db, "C-1", "Cola", "12.50")

	orderID, err := repo.Create(ctx, userID, productID, trade.DeliveryPoint2)
	require.NoError(t, err)

	summary, err := repo.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusPending, summary.Status)
	assert.Equal(t, trade.DeliveryPoint2, summary.DeliveryType)
	assert.True(t, summary.TotalAmount.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, int64(501), summary.UserExternalID)
	assert.Equal(t, "eve", summary.UserHandle)
	assert.Equal(t, "Cola", summary.ProductNames)
	assert.Equal(t, "1", summary.Quantities)
	require.Len(t, summary.Items, 1)
	assert.True(t, summary.Items[0].Price.Equal(decimal.RequireFromString("12.5")))

	t.Run("price captured at order time", func(t *testing.T) {
		price := decimal.NewFromInt(99)
		require.NoError(t, NewGormProductRepository(db).UpdateFields(ctx, productID, catalog.ProductPatch{Price: &price}))
		again, err := repo.GetByID(ctx, orderID)
		require.NoError(t, err)
		assert.True(t, again.Items[0].Price.Equal(decimal.RequireFromString("12.5")))
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := repo.Create(ctx, userID, 9999, trade.DeliveryPoint1)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		count, err := repo.CountByUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("unknown delivery", func(t *testing.T) {
		_, err := repo.Create(ctx, userID, productID, trade.DeliveryType("courier"))
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestGormOrderRepository_CreateFromCart(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)
	carts := NewGormCartRepository(db)
	userID := seedUser(t, db, 601, "frank")
	productID := seedProduct(t, db, "D-1", "Disposable", "4.00")

	cart, err := carts.Upsert(ctx, userID, productID, 3)
	require.NoError(t, err)

	orderID, err := repo.CreateFromCart(ctx, cart.ID)
	require.NoError(t, err)

	summary, err := repo.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusCreated, summary.Status)
	assert.True(t, summary.TotalAmount.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, "3", summary.Quantities)

	completed, err := carts.GetByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.CartStatusCompleted, completed.Status)

	_, err = repo.CreateFromCart(ctx, cart.ID)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	_, err = repo.CreateFromCart(ctx, 4242)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormOrderRepository_Statuses(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormOrderRepository(db)
	userID := seedUser(t, db, 701, "gina")
	productID := seedProduct(t, db, "E-1", "Energy", "2")
	now := time.Now()

	created := seedOrder(t, db, userID, productID, "created", "2", now.Add(-4*time.Hour))
	pending := seedOrder(t, db, userID, productID, "pending", "2", now.Add(-3*time.Hour))
	paid := seedOrder(t, db, userID, productID, "paid", "2", now.Add(-2*time.Hour))
	seedOrder(t, db, userID, productID, "completed", "2", now.Add(-time.Hour))

	t.Run("pending list covers pending and paid, newest first", func(t *testing.T) {
		list, err := repo.ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, paid, list[0].ID)
		assert.Equal(t, pending, list[1].ID)
	})

	t.Run("unconditional update", func(t *testing.T) {
		ok, err := repo.UpdateStatus(ctx, created, trade.OrderStatusCompleted)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.UpdateStatus(ctx, 9999, trade.OrderStatusPaid)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = repo.UpdateStatus(ctx, created, trade.OrderStatus("shipped"))
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("compare and set", func(t *testing.T) {
		ok, err := repo.TransitionStatus(ctx, pending, trade.OrderStatusPaid, trade.OrderStatusConfirmed)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = repo.TransitionStatus(ctx, pending, trade.OrderStatusPending, trade.OrderStatusPaid)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := repo.GetByID(ctx, pending)
		require.NoError(t, err)
		assert.Equal(t, trade.OrderStatusPaid, got.Status)
	})

	t.Run("list with status filter", func(t *testing.T) {
		status := trade.OrderStatusPaid
		list, total, err := repo.List(ctx, trade.OrderFilter{Filter: shared.DefaultFilter(), Status: &status})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, list, 2)

		all, total, err := repo.List(ctx, trade.OrderFilter{Filter: shared.Filter{Page: 1, PageSize: 3}})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Len(t, all, 3)
	})

	t.Run("by user", func(t *testing.T) {
		list, err := repo.ListByUser(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, list, 4)

		none, err := repo.ListByUser(ctx, userID+100)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 9999)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}
