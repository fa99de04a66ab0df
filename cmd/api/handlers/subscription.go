package handlers

import (
	"context"

	"VidTube.com/cmd/relation/service"
	"VidTube.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
)

func ToggleSubscription(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "channelId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	subscribed, err := service.NewSubscriptionService(ctx).ToggleSubscription(CurrentPrincipal(c), id)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, utils.H{"subscribed": subscribed})
}

func ChannelSubscribers(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "channelId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	var page PageParam
	if err := c.BindAndValidate(&page); err != nil {
		SendResponse(c, bindErr(err), nil)
		return
	}
	resp, err := service.NewSubscriptionService(ctx).Subscribers(id, page.Page, page.Limit)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func SubscribedChannels(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "subscriberId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	var page PageParam
	if err := c.BindAndValidate(&page); err != nil {
		SendResponse(c, bindErr(err), nil)
		return
	}
	resp, err := service.NewSubscriptionService(ctx).SubscribedChannels(id, page.Page, page.Limit)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}
