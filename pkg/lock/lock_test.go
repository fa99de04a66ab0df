package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocker(t *testing.T, ttl time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, ttl), mr
}

func TestLockIsExclusiveUntilReleased(t *testing.T) {
	ctx := context.Background()
	l, mr := newLocker(t, 10*time.Second)

	unlock, err := l.Lock(ctx, "likes:u1:v1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(keyPrefix+"likes:u1:v1"))

	waitCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_, err = l.Lock(waitCtx, "likes:u1:v1")
	assert.Error(t, err)

	// a different pair is not blocked
	other, err := l.Lock(ctx, "likes:u1:v2")
	require.NoError(t, err)
	other()

	unlock()
	assert.False(t, mr.Exists(keyPrefix+"likes:u1:v1"))

	again, err := l.Lock(ctx, "likes:u1:v1")
	require.NoError(t, err)
	again()
}

func TestLockExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	l, mr := newLocker(t, 2*time.Second)

	stale, err := l.Lock(ctx, "subscriptions:u1:c1")
	require.NoError(t, err)
	mr.FastForward(3 * time.Second)

	unlock, err := l.Lock(ctx, "subscriptions:u1:c1")
	require.NoError(t, err)

	// releasing the expired holder must not drop the new one
	stale()
	assert.True(t, mr.Exists(keyPrefix+"subscriptions:u1:c1"))
	unlock()
	assert.False(t, mr.Exists(keyPrefix+"subscriptions:u1:c1"))
}
