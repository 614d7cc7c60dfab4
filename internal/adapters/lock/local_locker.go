package lock

import (
	"context"
	"sync"
	"time"

	"congregation-api/internal/core/domain"
)

// LocalLocker is an in-process per-key lock used when Redis is not
// configured. It only serializes callers inside one process.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

// NewLocalLocker creates an in-process locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		held: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Acquire takes the lock for key or fails with domain.ErrLockHeld. A lock
// past its ttl counts as free.
func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expiresAt, ok := l.held[key]; ok && now.Before(expiresAt) {
		return nil, domain.ErrLockHeld
	}

	expiresAt := now.Add(ttl)
	l.held[key] = expiresAt

	release := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		// Only drop our own entry
		if l.held[key] == expiresAt {
			delete(l.held, key)
		}
		return nil
	}
	return release, nil
}
