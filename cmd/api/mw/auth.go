package mw

import (
	"context"
	"strings"

	"VidTube.com/cmd/api/handlers"
	"VidTube.com/pkg/auth"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app"
)

// Principal 解析 cookie 或 Authorization 头中的 access token, 校验失败按匿名处理
func Principal(resolver *auth.TokenResolver) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		token := string(c.Cookie(constants.AccessTokenKey))
		if token == "" {
			token = strings.TrimSpace(string(c.GetHeader("Authorization")))
		}
		if token != "" {
			if p, err := resolver.Resolve(token); err == nil {
				c.Set(constants.PrincipalKey, p)
			}
		}
		c.Next(ctx)
	}
}

// AuthRequired 拒绝匿名请求
func AuthRequired() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if handlers.CurrentPrincipal(c) == nil {
			handlers.SendResponse(c, errno.UnauthenticatedErr, nil)
			c.Abort()
			return
		}
		c.Next(ctx)
	}
}
