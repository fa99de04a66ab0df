package handlers

import (
	"context"

	"VidTube.com/cmd/interaction/service"
	"VidTube.com/cmd/model"
	"VidTube.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
)

// like toggles are routed per kind: /likes/toggle/{v,c,t}/:targetId
var likeKinds = map[string]model.TargetModel{
	"v": model.TargetVideo,
	"c": model.TargetComment,
	"t": model.TargetTweet,
}

func ToggleLike(ctx context.Context, c *app.RequestContext) {
	kind, ok := likeKinds[c.Param("kind")]
	if !ok {
		SendResponse(c, errno.ParamErr.WithMessage("Invalid target model"), nil)
		return
	}
	id, err := pathID(c, "targetId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	liked, err := service.NewLikeService(ctx).ToggleLike(CurrentPrincipal(c), string(kind), id)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, utils.H{"liked": liked})
}

func LikeCount(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "targetId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	n, err := service.NewLikeService(ctx).LikeCount(c.Param("targetModel"), id)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, utils.H{"likeCount": n})
}

func LikedUsers(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "targetId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	var page PageParam
	if err := c.BindAndValidate(&page); err != nil {
		SendResponse(c, bindErr(err), nil)
		return
	}
	resp, err := service.NewLikeService(ctx).LikedUsers(c.Param("targetModel"), id, page.Page, page.Limit)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func LikedVideos(ctx context.Context, c *app.RequestContext) {
	var page PageParam
	if err := c.BindAndValidate(&page); err != nil {
		SendResponse(c, bindErr(err), nil)
		return
	}
	resp, err := service.NewLikeService(ctx).LikedVideos(CurrentPrincipal(c), page.Page, page.Limit)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func ListComments(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "videoId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	var page PageParam
	if err := c.BindAndValidate(&page); err != nil {
		SendResponse(c, bindErr(err), nil)
		return
	}
	resp, err := service.NewCommentService(ctx).ListComments(id, page.Page, page.Limit)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func AddComment(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "videoId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	var param ContentParam
	if err := c.BindAndValidate(&param); err != nil {
		SendResponse(c, bindErr(err), nil)
		return
	}
	resp, err := service.NewCommentService(ctx).AddComment(CurrentPrincipal(c), id, param.Content)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func UpdateComment(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "commentId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	var param ContentParam
	if err := c.BindAndValidate(&param); err != nil {
		SendResponse(c, bindErr(err), nil)
		return
	}
	resp, err := service.NewCommentService(ctx).UpdateComment(CurrentPrincipal(c), id, param.Content)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func DeleteComment(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "commentId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	if err := service.NewCommentService(ctx).DeleteComment(CurrentPrincipal(c), id); err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, nil)
}

func CreateTweet(ctx context.Context, c *app.RequestContext) {
	var param ContentParam
	if err := c.BindAndValidate(&param); err != nil {
		SendResponse(c, bindErr(err), nil)
		return
	}
	resp, err := service.NewTweetService(ctx).CreateTweet(CurrentPrincipal(c), param.Content)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func ListUserTweets(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "userId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	var page PageParam
	if err := c.BindAndValidate(&page); err != nil {
		SendResponse(c, bindErr(err), nil)
		return
	}
	resp, err := service.NewTweetService(ctx).ListUserTweets(id, page.Page, page.Limit)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func UpdateTweet(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "tweetId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	var param ContentParam
	if err := c.BindAndValidate(&param); err != nil {
		SendResponse(c, bindErr(err), nil)
		return
	}
	resp, err := service.NewTweetService(ctx).UpdateTweet(CurrentPrincipal(c), id, param.Content)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func DeleteTweet(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "tweetId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	if err := service.NewTweetService(ctx).DeleteTweet(CurrentPrincipal(c), id); err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, nil)
}
