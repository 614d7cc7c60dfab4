package lock

import (
	"context"
	"testing"
	"time"

	"congregation-api/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisLocker(client), mr
}

func TestRedisLockerExclusive(t *testing.T) {
	locker, _ := newRedisLocker(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "donation:1:receipt", time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "donation:1:receipt", time.Minute)
	assert.ErrorIs(t, err, domain.ErrLockHeld)

	other, err := locker.Acquire(ctx, "donation:2:receipt", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, release(ctx))

	again, err := locker.Acquire(ctx, "donation:1:receipt", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestRedisLockerExpiry(t *testing.T) {
	locker, mr := newRedisLocker(t)
	ctx := context.Background()

	stale, err := locker.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	fresh, err := locker.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	// The expired holder must not free the new holder's lock
	require.NoError(t, stale(ctx))
	_, err = locker.Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, domain.ErrLockHeld)

	require.NoError(t, fresh(ctx))
	assert.False(t, mr.Exists(keyPrefix+"k"))
}

func TestLocalLocker(t *testing.T) {
	locker := NewLocalLocker()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	locker.now = func() time.Time { return now }
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, domain.ErrLockHeld)

	require.NoError(t, release(ctx))
	second, err := locker.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	third, err := locker.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err, "expired lock is free")

	// The superseded holder leaves the new entry alone
	require.NoError(t, second(ctx))
	_, err = locker.Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, domain.ErrLockHeld)
	require.NoError(t, third(ctx))
}
