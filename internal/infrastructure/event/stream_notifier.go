package event

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopbot/backend/internal/domain/notification"
	"go.uber.org/zap"
)

const (
	// DefaultStream is the stream the chat layer consumes
	DefaultStream = "shopbot:notifications"

	defaultMaxLen = 10000
)

// RedisStreamNotifier publishes notifications to a Redis stream with XADD.
// The stream is trimmed approximately to maxLen entries.
type RedisStreamNotifier struct {
	client *redis.Client
	stream string
	maxLen int64
	logger *zap.Logger
}

// NewRedisStreamNotifier creates a publisher on an existing client
func NewRedisStreamNotifier(client *redis.Client, stream string, logger *zap.Logger) *RedisStreamNotifier {
	if stream == "" {
		stream = DefaultStream
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStreamNotifier{
		client: client,
		stream: stream,
		maxLen: defaultMaxLen,
		logger: logger,
	}
}

// OrderStatusChanged implements notification.Notifier
func (n *RedisStreamNotifier) OrderStatusChanged(ctx context.Context, msg notification.OrderStatusChanged) error {
	return n.publish(ctx, msg.Envelope, msg)
}

// CartReminder implements notification.Notifier
func (n *RedisStreamNotifier) CartReminder(ctx context.Context, msg notification.CartReminder) error {
	return n.publish(ctx, msg.Envelope, msg)
}

func (n *RedisStreamNotifier) publish(ctx context.Context, env notification.Envelope, msg any) error {
	values, err := encode(env, msg)
	if err != nil {
		return err
	}

	id, err := n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		MaxLen: n.maxLen,
		Approx: true,
		Values: values,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish %s notification: %w", env.Type, err)
	}

	n.logger.Debug("Notification published",
		zap.String("stream", n.stream),
		zap.String("entry_id", id),
		zap.String("type", env.Type),
		zap.String("notification_id", env.ID.String()),
	)
	return nil
}

var _ notification.Notifier = (*RedisStreamNotifier)(nil)
