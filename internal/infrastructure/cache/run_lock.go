package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultLockPrefix = "shopbot:lock:"

// ErrLockHeld is returned when another owner holds the lock
var ErrLockHeld = errors.New("cache: lock is held by another owner")

// ReleaseFunc releases an acquired lock. Releasing after expiry or a
// takeover by another owner is a no-op.
type ReleaseFunc func(ctx context.Context) error

// RunLock guards a named job against concurrent runs
type RunLock interface {
	// Acquire takes the lock for ttl or returns ErrLockHeld
	Acquire(ctx context.Context, name string, ttl time.Duration) (ReleaseFunc, error)
}

// releaseScript deletes the key only while it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisRunLock implements RunLock with SET NX PX, so the lock spans processes
type RedisRunLock struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisRunLock creates a lock backed by an existing client
func NewRedisRunLock(client *redis.Client, keyPrefix string) *RedisRunLock {
	if keyPrefix == "" {
		keyPrefix = defaultLockPrefix
	}
	return &RedisRunLock{client: client, keyPrefix: keyPrefix}
}

// Acquire implements RunLock
func (l *RedisRunLock) Acquire(ctx context.Context, name string, ttl time.Duration) (ReleaseFunc, error) {
	key := l.keyPrefix + name
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("failed to release lock %s: %w", name, err)
		}
		return nil
	}, nil
}

type lockEntry struct {
	token     string
	expiresAt time.Time
}

// InMemoryRunLock implements RunLock for a single process
type InMemoryRunLock struct {
	mu      sync.Mutex
	entries map[string]lockEntry
	now     func() time.Time
}

// NewInMemoryRunLock creates a process-local lock
func NewInMemoryRunLock() *InMemoryRunLock {
	return &InMemoryRunLock{
		entries: make(map[string]lockEntry),
		now:     time.Now,
	}
}

// Acquire implements RunLock
func (l *InMemoryRunLock) Acquire(_ context.Context, name string, ttl time.Duration) (ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[name]; ok && l.now().Before(e.expiresAt) {
		return nil, ErrLockHeld
	}
	token := uuid.NewString()
	l.entries[name] = lockEntry{token: token, expiresAt: l.now().Add(ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if e, ok := l.entries[name]; ok && e.token == token {
			delete(l.entries, name)
		}
		return nil
	}, nil
}

// NewRunLock returns a Redis lock when a client is available and a process
// local lock otherwise.
func NewRunLock(client *redis.Client, logger *zap.Logger) RunLock {
	if client != nil {
		return NewRedisRunLock(client, defaultLockPrefix)
	}
	if logger != nil {
		logger.Warn("Redis disabled, using in-process run lock. " +
			"Concurrent runs across several instances are not prevented.")
	}
	return NewInMemoryRunLock()
}

var (
	_ RunLock = (*RedisRunLock)(nil)
	_ RunLock = (*InMemoryRunLock)(nil)
)
