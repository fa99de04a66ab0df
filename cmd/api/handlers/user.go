package handlers

import (
	"context"

	"VidTube.com/cmd/user/service"
	"VidTube.com/config"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol"
)

func Register(ctx context.Context, c *app.RequestContext) {
	var param RegisterParam
	if err := c.BindAndValidate(&param); err != nil {
		SendResponse(c, bindErr(err), nil)
		return
	}
	avatarPath, err := saveUpload(c, "avatar")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	coverPath, err := saveUpload(c, "coverImage")
	defer removeUploads(avatarPath, coverPath)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	resp, err := service.NewUserService(ctx).Register(&service.RegisterRequest{
		Username:       param.Username,
		Email:          param.Email,
		FullName:       param.FullName,
		Password:       param.Password,
		AvatarPath:     avatarPath,
		CoverImagePath: coverPath,
	})
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func Login(ctx context.Context, c *app.RequestContext) {
	var param LoginParam
	if err := c.BindAndValidate(&param); err != nil {
		SendResponse(c, bindErr(err), nil)
		return
	}
	resp, err := service.NewUserService(ctx).Login(param.Login(), param.Password)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	maxAge := int(config.ConfigInfo.Jwt.AccessTTL.Seconds())
	c.SetCookie(constants.AccessTokenKey, resp.AccessToken, maxAge, "/", "", protocol.CookieSameSiteLaxMode, false, true)
	SendResponse(c, errno.Success, resp)
}

func Logout(ctx context.Context, c *app.RequestContext) {
	c.SetCookie(constants.AccessTokenKey, "", -1, "/", "", protocol.CookieSameSiteLaxMode, false, true)
	SendResponse(c, errno.Success, nil)
}

func CurrentUser(ctx context.Context, c *app.RequestContext) {
	resp, err := service.NewUserService(ctx).CurrentUser(CurrentPrincipal(c))
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func DeleteAccount(ctx context.Context, c *app.RequestContext) {
	if err := service.NewUserService(ctx).DeleteAccount(CurrentPrincipal(c)); err != nil {
		SendResponse(c, err, nil)
		return
	}
	c.SetCookie(constants.AccessTokenKey, "", -1, "/", "", protocol.CookieSameSiteLaxMode, false, true)
	SendResponse(c, errno.Success, nil)
}

func ChannelProfile(ctx context.Context, c *app.RequestContext) {
	resp, err := service.NewUserService(ctx).ChannelProfile(CurrentPrincipal(c), c.Param("username"))
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func WatchHistory(ctx context.Context, c *app.RequestContext) {
	resp, err := service.NewUserService(ctx).WatchHistory(CurrentPrincipal(c))
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}
