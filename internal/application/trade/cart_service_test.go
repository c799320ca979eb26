package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopbot/backend/internal/domain/identity"
	"github.com/shopbot/backend/internal/domain/notification"
	"github.com/shopbot/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newCartFixture() (*CartService, *MockCartRepository, *MockUserRepository, *MockNotifier) {
	carts := new(MockCartRepository)
	users := new(MockUserRepository)
	notifier := new(MockNotifier)
	svc := NewCartService(carts, users, 0, nil)
	svc.SetNotifier(notifier)
	svc.now = func() time.Time { return fixedNow }
	return svc, carts, users, notifier
}

func abandoned(id int64, remindedAt *time.Time) trade.AbandonedCart {
	return trade.AbandonedCart{
		Cart: trade.Cart{
			ID:          id,
			UserID:      3,
			ProductID:   11,
			Quantity:    2,
			Status:      trade.CartStatusActive,
			LastUpdated: fixedNow.Add(-48 * time.Hour),
			RemindedAt:  remindedAt,
		},
		ProductName:    "Mango",
		Price:          decimal.RequireFromString("10.25"),
		UserExternalID: 1000 + id,
		UserLanguage:   "ru",
	}
}

func TestCartService_AddToCart(t *testing.T) {
	svc, carts, users, _ := newCartFixture()
	users.On("GetOrCreate", mock.Anything, int64(1001), "buyer", identity.DefaultLanguage).
		Return(&identity.User{ID: 3, ExternalID: 1001}, false, nil)
	carts.On("Upsert", mock.Anything, int64(3), int64(11), 2).
		Return(&trade.Cart{ID: 9, UserID: 3, ProductID: 11, Quantity: 2, Status: trade.CartStatusActive}, nil)

	resp, err := svc.AddToCart(context.Background(), AddToCartRequest{
		Customer:  Customer{ExternalID: 1001, Handle: "buyer"},
		ProductID: 11,
		Quantity:  2,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(9), resp.ID)
	assert.Equal(t, "active", resp.Status)
}

func TestCartService_RemindAbandoned(t *testing.T) {
	svc, carts, _, notifier := newCartFixture()
	recent := fixedNow.Add(-time.Hour)
	carts.On("ListAbandoned", mock.Anything, fixedNow, trade.DefaultAbandonAfter).Return([]trade.AbandonedCart{
		abandoned(1, nil),
		abandoned(2, &recent),
		abandoned(3, nil),
		abandoned(4, nil),
	}, nil)

	notifier.On("CartReminder", mock.Anything, mock.MatchedBy(func(n notification.CartReminder) bool {
		return n.CartID == 1 && n.Total.Equal(decimal.RequireFromString("20.50")) && n.UserExternalID == 1001
	})).Return(nil)
	notifier.On("CartReminder", mock.Anything, mock.MatchedBy(func(n notification.CartReminder) bool { return n.CartID == 3 })).
		Return(errors.New("stream down"))
	notifier.On("CartReminder", mock.Anything, mock.MatchedBy(func(n notification.CartReminder) bool { return n.CartID == 4 })).
		Return(nil)
	carts.On("MarkReminded", mock.Anything, int64(1), fixedNow).Return(nil)
	carts.On("MarkReminded", mock.Anything, int64(4), fixedNow).Return(errors.New("db down"))

	result, err := svc.RemindAbandoned(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &ReminderResult{Found: 4, Sent: 1, Skipped: 1, Failed: 2}, result)
	carts.AssertNotCalled(t, "MarkReminded", mock.Anything, int64(3), mock.Anything)
	carts.AssertNotCalled(t, "MarkReminded", mock.Anything, int64(2), mock.Anything)
}

func TestCartService_RemindAbandoned_ListFailure(t *testing.T) {
	svc, carts, _, notifier := newCartFixture()
	carts.On("ListAbandoned", mock.Anything, fixedNow, trade.DefaultAbandonAfter).Return(nil, errors.New("db down"))

	_, err := svc.RemindAbandoned(context.Background())

	assert.Error(t, err)
	notifier.AssertNotCalled(t, "CartReminder", mock.Anything, mock.Anything)
}

func TestCartService_RemindAbandoned_NoNotifier(t *testing.T) {
	carts := new(MockCartRepository)
	svc := NewCartService(carts, new(MockUserRepository), time.Hour, nil)
	svc.now = func() time.Time { return fixedNow }
	carts.On("ListAbandoned", mock.Anything, fixedNow, time.Hour).Return([]trade.AbandonedCart{abandoned(1, nil)}, nil)

	result, err := svc.RemindAbandoned(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	carts.AssertNotCalled(t, "MarkReminded", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartService_ListAbandoned(t *testing.T) {
	svc, carts, _, _ := newCartFixture()
	carts.On("ListAbandoned", mock.Anything, fixedNow, trade.DefaultAbandonAfter).Return([]trade.AbandonedCart{abandoned(1, nil)}, nil)

	list, err := svc.ListAbandoned(context.Background())

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Mango", list[0].ProductName)
	assert.True(t, list[0].Total.Equal(decimal.RequireFromString("20.50")))

	count, err := svc.CountAbandoned(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCartService_Cancel(t *testing.T) {
	svc, carts, _, _ := newCartFixture()
	carts.On("Abandon", mock.Anything, int64(9)).Return(nil)

	require.NoError(t, svc.Cancel(context.Background(), 9))
	carts.AssertExpectations(t)
}

func TestBacklog(t *testing.T) {
	orders := new(MockOrderRepository)
	orders.On("ListPending", mock.Anything).Return([]trade.OrderSummary{*summary(1, trade.OrderStatusPending), *summary(2, trade.OrderStatusPaid)}, nil)
	orderSvc := NewOrderService(orders, new(MockUserRepository), ShopDetails{}, nil)
	cartSvc, carts, _, _ := newCartFixture()
	carts.On("ListAbandoned", mock.Anything, fixedNow, trade.DefaultAbandonAfter).Return([]trade.AbandonedCart{abandoned(1, nil)}, nil)

	b := NewBacklog(orderSvc, cartSvc)

	pending, err := b.CountPendingOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending)

	carted, err := b.CountAbandonedCarts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), carted)
}
