package event

import (
	"context"

	"github.com/shopbot/backend/internal/domain/notification"
	"go.uber.org/zap"
)

// LogNotifier writes notifications to the log. It is used when Redis is
// disabled and no chat layer consumes the stream.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a logging notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// OrderStatusChanged implements notification.Notifier
func (n *LogNotifier) OrderStatusChanged(_ context.Context, msg notification.OrderStatusChanged) error {
	n.logger.Info("Order status notification",
		zap.String("notification_id", msg.ID.String()),
		zap.Int64("order_id", msg.OrderID),
		zap.Int64("user_external_id", msg.UserExternalID),
		zap.String("status", msg.Status),
		zap.String("total", msg.Total.StringFixed(2)),
	)
	return nil
}

// CartReminder implements notification.Notifier
func (n *LogNotifier) CartReminder(_ context.Context, msg notification.CartReminder) error {
	n.logger.Info("Cart reminder notification",
		zap.String("notification_id", msg.ID.String()),
		zap.Int64("cart_id", msg.CartID),
		zap.Int64("user_external_id", msg.UserExternalID),
		zap.String("product", msg.ProductName),
		zap.Int("quantity", msg.Quantity),
	)
	return nil
}

var _ notification.Notifier = (*LogNotifier)(nil)
