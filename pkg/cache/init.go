package cache

import (
	"context"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/redis/go-redis/v9"
)

// NewClient 创建 redis 客户端; ping 失败只记录日志, 缓存为可选依赖
func NewClient(ctx context.Context, addr, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		hlog.CtxWarnf(ctx, "redis %s unreachable: %v", addr, err)
	}
	return client
}
