package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/syllabus/pkg/ports"
)

// Locker implements ports.DistributedLocker within a single process.
// Expired holds are reclaimed on the next attempt.
type Locker struct {
	mu    sync.Mutex
	held  map[string]lease
	seq   uint64
	poll  time.Duration
	nowFn func() time.Time
}

type lease struct {
	token   uint64
	expires time.Time
}

// NewLocker creates an in-process locker.
func NewLocker() *Locker {
	return &Locker{
		held:  make(map[string]lease),
		poll:  10 * time.Millisecond,
		nowFn: time.Now,
	}
}

// TryLock makes a single attempt.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	if cur, ok := l.held[key]; ok && (cur.expires.IsZero() || now.Before(cur.expires)) {
		return nil, false, nil
	}

	l.seq++
	token := l.seq
	var expires time.Time
	if ttl > 0 {
		expires = now.Add(ttl)
	}
	l.held[key] = lease{token: token, expires: expires}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if cur, ok := l.held[key]; ok && cur.token == token {
			delete(l.held, key)
		}
		return nil
	}, true, nil
}

// Lock polls TryLock until the lock is acquired or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	for {
		unlock, ok, err := l.TryLock(ctx, key, ttl)
		if err != nil || ok {
			return unlock, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.poll):
		}
	}
}
