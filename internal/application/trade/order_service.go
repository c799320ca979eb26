package trade

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopbot/backend/internal/domain/identity"
	"github.com/shopbot/backend/internal/domain/notification"
	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/domain/trade"
	"github.com/shopbot/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ShopDetails are the customer-facing details sent with order notifications
type ShopDetails struct {
	Address1     string
	Address2     string
	PaymentPhone string
	PaymentBank  string
}

// PickupAddress returns the address of the order's pickup point
func (d ShopDetails) PickupAddress(delivery trade.DeliveryType) string {
	switch delivery {
	case trade.DeliveryPoint1:
		return d.Address1
	case trade.DeliveryPoint2:
		return d.Address2
	}
	return ""
}

// PaymentDetails renders the transfer details shown to customers
func (d ShopDetails) PaymentDetails() string {
	parts := make([]string, 0, 2)
	if d.PaymentPhone != "" {
		parts = append(parts, d.PaymentPhone)
	}
	if d.PaymentBank != "" {
		parts = append(parts, d.PaymentBank)
	}
	return strings.Join(parts, " ")
}

// OrderService handles order placement and the order status lifecycle
type OrderService struct {
	orders   trade.OrderRepository
	users    identity.UserRepository
	shop     ShopDetails
	notifier notification.Notifier
	metrics  *telemetry.ShopMetrics
	logger   *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orders trade.OrderRepository,
	users identity.UserRepository,
	shop ShopDetails,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders: orders,
		users:  users,
		shop:   shop,
		logger: logger,
	}
}

// SetNotifier sets the notifier used to tell customers about status changes
func (s *OrderService) SetNotifier(n notification.Notifier) {
	s.notifier = n
}

// SetMetrics sets the business metrics recorder
func (s *OrderService) SetMetrics(m *telemetry.ShopMetrics) {
	s.metrics = m
}

// PlaceOrder registers the customer if needed and places a single-product
// order at the chosen pickup point
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderResponse, error) {
	delivery, err := trade.DeliveryForPoint(req.Point)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "order", "place", telemetry.SpanAttrProductID, req.ProductID)
	defer span.End()

	user, created, err := s.users.GetOrCreate(ctx, req.ExternalID, req.Handle, identity.ParseLanguage(req.Language))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if created {
		s.logger.Info("Registered new customer", zap.Int64("external_id", user.ExternalID))
	}

	orderID, err := s.orders.Create(ctx, user.ID, req.ProductID, delivery)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderID, orderID)

	summary, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordOrderPlaced(ctx, string(delivery))
	s.logger.Info("Order placed",
		zap.Int64("order_id", orderID),
		zap.Int64("product_id", req.ProductID),
		zap.String("delivery", string(delivery)),
	)
	s.notifyStatus(ctx, summary)
	telemetry.SetOK(span)

	resp := ToOrderResponse(summary)
	return &resp, nil
}

// CheckoutCart converts an active cart into an order
func (s *OrderService) CheckoutCart(ctx context.Context, cartID int64) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "checkout_cart", telemetry.SpanAttrCartID, cartID)
	defer span.End()

	orderID, err := s.orders.CreateFromCart(ctx, cartID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	summary, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordOrderPlaced(ctx, string(summary.DeliveryType))
	s.logger.Info("Cart checked out", zap.Int64("cart_id", cartID), zap.Int64("order_id", orderID))
	s.notifyStatus(ctx, summary)
	telemetry.SetOK(span)

	resp := ToOrderResponse(summary)
	return &resp, nil
}

// ChangeStatus moves an order along the status lifecycle. Illegal transitions
// return ErrInvalidState; a concurrent change between read and write is
// detected and reported the same way.
func (s *OrderService) ChangeStatus(ctx context.Context, orderID int64, target trade.OrderStatus) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "change_status",
		telemetry.SpanAttrOrderID, orderID,
		telemetry.SpanAttrOrderStatus, string(target),
	)
	defer span.End()

	summary, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := trade.ValidateTransition(summary.Status, target); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	ok, err := s.orders.TransitionStatus(ctx, orderID, summary.Status, target)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !ok {
		err := shared.InvalidState(fmt.Sprintf("order %d was changed concurrently", orderID))
		telemetry.RecordError(span, err)
		return nil, err
	}

	return s.afterStatusChange(ctx, summary, target), nil
}

// OverrideStatus overwrites the status without checking the lifecycle
func (s *OrderService) OverrideStatus(ctx context.Context, orderID int64, target trade.OrderStatus) (*OrderResponse, error) {
	if !target.IsValid() {
		return nil, shared.InvalidInput(fmt.Sprintf("unknown order status %q", target))
	}
	ok, err := s.orders.UpdateStatus(ctx, orderID, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.NotFound(fmt.Sprintf("order %d not found", orderID))
	}
	summary, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.logger.Warn("Order status overridden", zap.Int64("order_id", orderID), zap.String("status", string(target)))
	return s.afterStatusChange(ctx, summary, target), nil
}

func (s *OrderService) afterStatusChange(ctx context.Context, summary *trade.OrderSummary, target trade.OrderStatus) *OrderResponse {
	previous := summary.Status
	summary.Status = target

	s.metrics.RecordStatusChange(ctx, string(target))
	s.logger.Info("Order status changed",
		zap.Int64("order_id", summary.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(target)),
	)
	s.notifyStatus(ctx, summary)

	resp := ToOrderResponse(summary)
	return &resp
}

// ChangeStatusByName parses status and applies ChangeStatus or, with force, OverrideStatus
func (s *OrderService) ChangeStatusByName(ctx context.Context, orderID int64, req ChangeStatusRequest) (*OrderResponse, error) {
	target, err := trade.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, err
	}
	if req.Force {
		return s.OverrideStatus(ctx, orderID, target)
	}
	return s.ChangeStatus(ctx, orderID, target)
}

// MarkPaid records that the customer reports having paid for their order
func (s *OrderService) MarkPaid(ctx context.Context, orderID, externalUserID int64) (*OrderResponse, error) {
	summary, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if summary.UserExternalID != externalUserID {
		return nil, shared.NotFound(fmt.Sprintf("order %d not found", orderID))
	}
	return s.ChangeStatus(ctx, orderID, trade.OrderStatusPaid)
}

// Confirm marks an order as confirmed by staff
func (s *OrderService) Confirm(ctx context.Context, orderID int64) (*OrderResponse, error) {
	return s.ChangeStatus(ctx, orderID, trade.OrderStatusConfirmed)
}

// Get returns one order
func (s *OrderService) Get(ctx context.Context, orderID int64) (*OrderResponse, error) {
	summary, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(summary)
	return &resp, nil
}

// Pending returns orders awaiting staff action, newest first
func (s *OrderService) Pending(ctx context.Context) ([]OrderResponse, error) {
	summaries, err := s.orders.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(summaries), nil
}

// List returns a page of orders, optionally narrowed to one status
func (s *OrderService) List(ctx context.Context, req ListOrdersRequest) ([]OrderResponse, int64, error) {
	filter := trade.OrderFilter{Filter: shared.Filter{Page: req.Page, PageSize: req.PageSize}}
	if req.Status != "" {
		status, err := trade.ParseOrderStatus(req.Status)
		if err != nil {
			return nil, 0, err
		}
		filter.Status = &status
	}
	summaries, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(summaries), total, nil
}

// CustomerOrders returns the order history of a chat user and its size
func (s *OrderService) CustomerOrders(ctx context.Context, externalUserID int64) ([]OrderResponse, int64, error) {
	user, err := s.users.GetByExternalID(ctx, externalUserID)
	if err != nil {
		return nil, 0, err
	}
	summaries, err := s.orders.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.orders.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(summaries), count, nil
}

// notifyStatus tells the customer about the order's current status. Delivery
// failures are logged; they never fail the order operation.
func (s *OrderService) notifyStatus(ctx context.Context, summary *trade.OrderSummary) {
	if s.notifier == nil {
		return
	}
	n := notification.OrderStatusChanged{
		Envelope:       notification.NewEnvelope(notification.TypeOrderStatusChanged),
		OrderID:        summary.ID,
		UserExternalID: summary.UserExternalID,
		Language:       summary.UserLanguage,
		Status:         string(summary.Status),
		Total:          summary.TotalAmount,
		ProductNames:   summary.ProductNames,
		Quantities:     summary.Quantities,
		PickupAddress:  s.shop.PickupAddress(summary.DeliveryType),
	}
	if summary.Status == trade.OrderStatusPending || summary.Status == trade.OrderStatusCreated {
		n.PaymentDetails = s.shop.PaymentDetails()
	}
	if err := s.notifier.OrderStatusChanged(ctx, n); err != nil {
		s.logger.Warn("Failed to notify customer about order status",
			zap.Int64("order_id", summary.ID),
			zap.String("status", string(summary.Status)),
			zap.Error(err),
		)
	}
}
