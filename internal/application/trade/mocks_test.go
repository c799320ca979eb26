package trade

import (
	"context"
	"time"

	"github.com/shopbot/backend/internal/domain/identity"
	"github.com/shopbot/backend/internal/domain/notification"
	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/domain/trade"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, userID, productID int64, delivery trade.DeliveryType) (int64, error) {
	args := m.Called(ctx, userID, productID, delivery)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CreateFromCart(ctx context.Context, cartID int64) (int64, error) {
	args := m.Called(ctx, cartID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, orderID int64, status trade.OrderStatus) (bool, error) {
	args := m.Called(ctx, orderID, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) TransitionStatus(ctx context.Context, orderID int64, from, to trade.OrderStatus) (bool, error) {
	args := m.Called(ctx, orderID, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, orderID int64) (*trade.OrderSummary, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.OrderSummary), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID int64) ([]trade.OrderSummary, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]trade.OrderSummary), args.Error(1)
}

func (m *MockOrderRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) ListPending(ctx context.Context) ([]trade.OrderSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]trade.OrderSummary), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, filter trade.OrderFilter) ([]trade.OrderSummary, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]trade.OrderSummary), args.Get(1).(int64), args.Error(2)
}

// MockCartRepository is a mock implementation of CartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) Upsert(ctx context.Context, userID, productID int64, quantity int) (*trade.Cart, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Cart), args.Error(1)
}

func (m *MockCartRepository) GetByID(ctx context.Context, id int64) (*trade.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Cart), args.Error(1)
}

func (m *MockCartRepository) ListAbandoned(ctx context.Context, now time.Time, idle time.Duration) ([]trade.AbandonedCart, error) {
	args := m.Called(ctx, now, idle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.AbandonedCart), args.Error(1)
}

func (m *MockCartRepository) Abandon(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCartRepository) MarkReminded(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByExternalID(ctx context.Context, externalID int64) (*identity.User, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) GetOrCreate(ctx context.Context, externalID int64, handle string, lang identity.Language) (*identity.User, bool, error) {
	args := m.Called(ctx, externalID, handle, lang)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*identity.User), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) GetLanguage(ctx context.Context, externalID int64) (identity.Language, error) {
	args := m.Called(ctx, externalID)
	return args.Get(0).(identity.Language), args.Error(1)
}

func (m *MockUserRepository) UpdateLanguage(ctx context.Context, externalID int64, lang identity.Language) error {
	return m.Called(ctx, externalID, lang).Error(0)
}

func (m *MockUserRepository) UpdateNickname(ctx context.Context, externalID int64, nickname string) error {
	return m.Called(ctx, externalID, nickname).Error(0)
}

func (m *MockUserRepository) UpdateSubscription(ctx context.Context, externalID int64, subscribed bool) error {
	return m.Called(ctx, externalID, subscribed).Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, filter shared.Filter) ([]identity.User, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockNotifier is a mock implementation of notification.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) OrderStatusChanged(ctx context.Context, n notification.OrderStatusChanged) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotifier) CartReminder(ctx context.Context, n notification.CartReminder) error {
	return m.Called(ctx, n).Error(0)
}
