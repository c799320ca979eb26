package trade

import (
	"context"
	"time"

	"github.com/shopbot/backend/internal/domain/identity"
	"github.com/shopbot/backend/internal/domain/notification"
	"github.com/shopbot/backend/internal/domain/trade"
	"github.com/shopbot/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CartService manages carts and reminds customers about abandoned ones
type CartService struct {
	carts        trade.CartRepository
	users        identity.UserRepository
	notifier     notification.Notifier
	metrics      *telemetry.ShopMetrics
	abandonAfter time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewCartService creates a new CartService. abandonAfter <= 0 uses the default of 24h.
func NewCartService(
	carts trade.CartRepository,
	users identity.UserRepository,
	abandonAfter time.Duration,
	logger *zap.Logger,
) *CartService {
	if abandonAfter <= 0 {
		abandonAfter = trade.DefaultAbandonAfter
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		carts:        carts,
		users:        users,
		abandonAfter: abandonAfter,
		logger:       logger,
		now:          time.Now,
	}
}

// SetNotifier sets the notifier used for reminders
func (s *CartService) SetNotifier(n notification.Notifier) {
	s.notifier = n
}

// SetMetrics sets the business metrics recorder
func (s *CartService) SetMetrics(m *telemetry.ShopMetrics) {
	s.metrics = m
}

// AddToCart registers the customer if needed and adds the product to their cart
func (s *CartService) AddToCart(ctx context.Context, req AddToCartRequest) (*CartResponse, error) {
	user, _, err := s.users.GetOrCreate(ctx, req.ExternalID, req.Handle, identity.ParseLanguage(req.Language))
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.Upsert(ctx, user.ID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, err
	}
	resp := ToCartResponse(cart)
	return &resp, nil
}

// Cancel abandons an active cart at the customer's request
func (s *CartService) Cancel(ctx context.Context, cartID int64) error {
	if err := s.carts.Abandon(ctx, cartID); err != nil {
		return err
	}
	s.logger.Info("Cart cancelled", zap.Int64("cart_id", cartID))
	return nil
}

// ListAbandoned returns active carts idle for longer than the abandon threshold
func (s *CartService) ListAbandoned(ctx context.Context) ([]AbandonedCartResponse, error) {
	carts, err := s.carts.ListAbandoned(ctx, s.now(), s.abandonAfter)
	if err != nil {
		return nil, err
	}
	out := make([]AbandonedCartResponse, len(carts))
	for i := range carts {
		c := carts[i]
		out[i] = AbandonedCartResponse{
			CartResponse:   ToCartResponse(&c.Cart),
			ProductName:    c.ProductName,
			Price:          c.Price,
			Total:          c.Total(),
			UserExternalID: c.UserExternalID,
			RemindedAt:     c.RemindedAt,
		}
	}
	return out, nil
}

// CountAbandoned returns the number of abandoned carts
func (s *CartService) CountAbandoned(ctx context.Context) (int64, error) {
	carts, err := s.carts.ListAbandoned(ctx, s.now(), s.abandonAfter)
	if err != nil {
		return 0, err
	}
	return int64(len(carts)), nil
}

// RemindAbandoned sends one reminder per abandoned cart not yet reminded since
// its last update. A failing cart is counted and does not stop the pass.
func (s *CartService) RemindAbandoned(ctx context.Context) (*ReminderResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cart", "remind_abandoned")
	defer span.End()

	now := s.now()
	carts, err := s.carts.ListAbandoned(ctx, now, s.abandonAfter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &ReminderResult{Found: len(carts)}
	if s.notifier == nil {
		result.Skipped = len(carts)
		s.logger.Warn("No notifier configured, skipping cart reminders", zap.Int("carts", len(carts)))
		return result, nil
	}

	for _, c := range carts {
		if ctx.Err() != nil {
			break
		}
		if !c.NeedsReminder() {
			result.Skipped++
			continue
		}

		err := s.notifier.CartReminder(ctx, notification.CartReminder{
			Envelope:       notification.NewEnvelope(notification.TypeCartReminder),
			CartID:         c.ID,
			UserExternalID: c.UserExternalID,
			Language:       c.UserLanguage,
			ProductName:    c.ProductName,
			Quantity:       c.Quantity,
			Total:          c.Total(),
		})
		if err != nil {
			result.Failed++
			s.metrics.RecordCartReminder(ctx, false)
			s.logger.Warn("Failed to send cart reminder", zap.Int64("cart_id", c.ID), zap.Error(err))
			continue
		}
		s.metrics.RecordCartReminder(ctx, true)

		if err := s.carts.MarkReminded(ctx, c.ID, now); err != nil {
			result.Failed++
			s.logger.Error("Failed to mark cart reminded", zap.Int64("cart_id", c.ID), zap.Error(err))
			continue
		}
		result.Sent++
	}

	telemetry.SetAttributes(span,
		"reminders.found", result.Found,
		"reminders.sent", result.Sent,
		"reminders.failed", result.Failed,
	)
	telemetry.SetOK(span)
	s.logger.Info("Cart reminder pass finished",
		zap.Int("found", result.Found),
		zap.Int("sent", result.Sent),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
