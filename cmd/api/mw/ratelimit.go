package mw

import (
	"context"
	"strconv"

	"VidTube.com/cmd/api/handlers"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/ratelimit"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// RateLimit 按用户与路由限流; 限流器不可用时放行
func RateLimit(limiter ratelimit.Limiter) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		caller := c.ClientIP()
		if p := handlers.CurrentPrincipal(c); p != nil {
			caller = p.UserID.Hex()
		}
		res, err := limiter.Allow(ctx, caller+":"+c.FullPath())
		if err != nil {
			hlog.CtxWarnf(ctx, "rate limiter unavailable: %v", err)
			c.Next(ctx)
			return
		}
		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
			handlers.SendResponse(c, errno.RateLimitedErr, nil)
			c.Abort()
			return
		}
		c.Next(ctx)
	}
}
