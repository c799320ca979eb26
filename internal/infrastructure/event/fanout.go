package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopbot/backend/internal/domain/notification"
	"go.uber.org/zap"
)

// FanoutNotifier delivers each notification to every target. A failing or
// panicking target does not stop delivery to the others; all failures are
// joined into the returned error.
type FanoutNotifier struct {
	targets []notification.Notifier
	logger  *zap.Logger
}

// NewFanoutNotifier creates a notifier over targets
func NewFanoutNotifier(logger *zap.Logger, targets ...notification.Notifier) *FanoutNotifier {
	return &FanoutNotifier{targets: targets, logger: logger}
}

// OrderStatusChanged implements notification.Notifier
func (f *FanoutNotifier) OrderStatusChanged(ctx context.Context, msg notification.OrderStatusChanged) error {
	return f.each(msg.Envelope, func(t notification.Notifier) error {
		return t.OrderStatusChanged(ctx, msg)
	})
}

// CartReminder implements notification.Notifier
func (f *FanoutNotifier) CartReminder(ctx context.Context, msg notification.CartReminder) error {
	return f.each(msg.Envelope, func(t notification.Notifier) error {
		return t.CartReminder(ctx, msg)
	})
}

func (f *FanoutNotifier) each(env notification.Envelope, send func(notification.Notifier) error) error {
	var errs []error
	for _, t := range f.targets {
		if err := f.dispatch(env, t, send); err != nil {
			f.logger.Error("notifier failed",
				zap.String("type", env.Type),
				zap.String("notification_id", env.ID.String()),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *FanoutNotifier) dispatch(env notification.Envelope, t notification.Notifier, send func(notification.Notifier) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panicked on %s: %v", env.Type, r)
		}
	}()
	return send(t)
}

var _ notification.Notifier = (*FanoutNotifier)(nil)
