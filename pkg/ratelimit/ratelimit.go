// Package ratelimit caps how often one caller may hit a route within a window.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// Result 限流结果
type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// SlidingWindow 基于 redis 有序集合的滑动窗口限流
type SlidingWindow struct {
	client      redis.Cmdable
	window      time.Duration
	maxRequests int64
}

func NewSlidingWindow(client redis.Cmdable, window time.Duration, maxRequests int64) *SlidingWindow {
	return &SlidingWindow{client: client, window: window, maxRequests: maxRequests}
}

var _ Limiter = (*SlidingWindow)(nil)

func (l *SlidingWindow) Allow(ctx context.Context, key string) (*Result, error) {
	now := time.Now()
	windowStart := now.Add(-l.window)
	key = keyPrefix + key

	pipe := l.client.TxPipeline()
	// 清理窗口外的记录
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	})
	countCmd := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, l.window+time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", key, err)
	}

	count := countCmd.Val()
	result := &Result{
		Allowed:   count <= l.maxRequests,
		Remaining: l.maxRequests - count,
	}
	if result.Remaining < 0 {
		result.Remaining = 0
	}
	if !result.Allowed {
		result.RetryAfter = l.window
	}
	return result, nil
}
