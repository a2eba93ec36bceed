package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/syllabus/pkg/ports"
	"github.com/oklog/ulid/v2"
	backend "github.com/redis/go-redis/v9"
)

var (
	// ErrLockAcquire is returned when the lock cannot be acquired.
	ErrLockAcquire = errors.New("failed to acquire distributed lock")
)

// releaseScript deletes the key only if it still holds our token.
var releaseScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// Locker implements ports.DistributedLocker using Redis.
type Locker struct {
	client *backend.Client
	prefix string
	poll   time.Duration
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client: client,
		prefix: prefix,
		poll:   100 * time.Millisecond,
	}
}

func (l *Locker) lockKey(key string) string {
	return l.prefix + "lock:" + key
}

// TryLock makes a single SET NX PX attempt.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, bool, error) {
	lockKey := l.lockKey(key)
	token := ulid.Make().String()

	ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis error acquiring lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{lockKey}, token).Err()
	}, true, nil
}

// Lock polls TryLock until the lock is acquired or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()

	for {
		unlock, ok, err := l.TryLock(ctx, key, ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			return unlock, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrLockAcquire, ctx.Err())
		case <-ticker.C:
		}
	}
}
