package cache

import (
	"context"
	"testing"
	"time"

	"VidTube.com/pkg/mq"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T, ttl time.Duration) (*LikeCountCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLikeCountCache(client, ttl), mr
}

func TestLikeCountKey(t *testing.T) {
	assert.Equal(t, "like:count:Video:65f0", LikeCountKey("Video", "65f0"))
}

func TestHandleRelationEventIgnoresSubscriptions(t *testing.T) {
	// an unreachable client fails any command it is asked to run
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	c := NewLikeCountCache(client, time.Minute)

	err := c.HandleRelationEvent(context.Background(), mq.NewRelationEvent(mq.RelationKindSubscription, "u", "c", "", true))
	assert.NoError(t, err)

	err = c.HandleRelationEvent(context.Background(), mq.NewRelationEvent(mq.RelationKindLike, "u", "v", "Video", true))
	assert.Error(t, err)
}

func TestLikeCountCacheAside(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t, time.Minute)

	_, ok, err := c.Get(ctx, "Video", "v1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "Video", "v1", 7))
	n, ok, err := c.Get(ctx, "Video", "v1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, time.Minute, mr.TTL(LikeCountKey("Video", "v1")))

	// other targets are untouched
	_, ok, err = c.Get(ctx, "Tweet", "v1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Invalidate(ctx, "Video", "v1"))
	_, ok, err = c.Get(ctx, "Video", "v1")
	require.NoError(t, err)
	assert.False(t, ok)

	// invalidating a cold key is fine
	assert.NoError(t, c.Invalidate(ctx, "Video", "v1"))
}

func TestLikeCountCacheExpires(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t, 30*time.Second)
	require.NoError(t, c.Set(ctx, "Video", "v1", 3))

	mr.FastForward(29 * time.Second)
	_, ok, err := c.Get(ctx, "Video", "v1")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Second)
	_, ok, err = c.Get(ctx, "Video", "v1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLikeCountCacheCorruptValue(t *testing.T) {
	c, mr := newCache(t, time.Minute)
	require.NoError(t, mr.Set(LikeCountKey("Video", "v1"), "many"))
	_, ok, err := c.Get(context.Background(), "Video", "v1")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestHandleRelationEventInvalidatesLikeCount(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t, time.Minute)
	require.NoError(t, c.Set(ctx, "Video", "v1", 2))
	require.NoError(t, c.Set(ctx, "Video", "v2", 5))

	require.NoError(t, c.HandleRelationEvent(ctx, mq.NewRelationEvent(mq.RelationKindLike, "u", "v1", "Video", false)))
	assert.False(t, mr.Exists(LikeCountKey("Video", "v1")))
	assert.True(t, mr.Exists(LikeCountKey("Video", "v2")))
}
