package services

import (
	"context"
	"time"
)

// Notifier delivers a message to an address (email for receipts and codes).
// Implementations own transport configuration, timeouts and cancellation.
type Notifier interface {
	Send(ctx context.Context, address, subject, body string) error
}

// Locker serializes work on a single entity across process instances.
// Acquire returns domain.ErrLockHeld when another holder owns the key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}
