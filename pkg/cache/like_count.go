package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"VidTube.com/pkg/mq"
	"github.com/redis/go-redis/v9"
)

// 点赞数缓存 Key：like:count:{targetModel}:{target}
const LikeCountKeyTemplate = "like:count:%s:%s"

// LikeCountCache 点赞计数缓存
type LikeCountCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewLikeCountCache(client redis.Cmdable, ttl time.Duration) *LikeCountCache {
	return &LikeCountCache{client: client, ttl: ttl}
}

func LikeCountKey(targetModel, target string) string {
	return fmt.Sprintf(LikeCountKeyTemplate, targetModel, target)
}

// Get 返回缓存的点赞数, 未命中时 ok 为 false
func (c *LikeCountCache) Get(ctx context.Context, targetModel, target string) (n int64, ok bool, err error) {
	val, err := c.client.Get(ctx, LikeCountKey(targetModel, target)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get like count: %w", err)
	}
	n, err = strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt like count %q: %w", val, err)
	}
	return n, true, nil
}

func (c *LikeCountCache) Set(ctx context.Context, targetModel, target string, n int64) error {
	return c.client.Set(ctx, LikeCountKey(targetModel, target), n, c.ttl).Err()
}

// Invalidate 删除缓存, 下一次读取回源
func (c *LikeCountCache) Invalidate(ctx context.Context, targetModel, target string) error {
	return c.client.Del(ctx, LikeCountKey(targetModel, target)).Err()
}

// HandleRelationEvent 消费其他实例发布的点赞事件, 失效对应计数
func (c *LikeCountCache) HandleRelationEvent(ctx context.Context, event *mq.RelationEvent) error {
	if event.Kind != mq.RelationKindLike {
		return nil
	}
	return c.Invalidate(ctx, event.TargetModel, event.Target)
}

var _ mq.RelationEventHandler = (*LikeCountCache)(nil)
