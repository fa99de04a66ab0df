package handlers

import (
	"context"

	"VidTube.com/cmd/playlist/service"
	"VidTube.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func CreatePlaylist(ctx context.Context, c *app.RequestContext) {
	var param PlaylistParam
	if err := c.BindAndValidate(&param); err != nil {
		SendResponse(c, bindErr(err), nil)
		return
	}
	var name, description string
	if param.Name != nil {
		name = *param.Name
	}
	if param.Description != nil {
		description = *param.Description
	}
	resp, err := service.NewPlaylistService(ctx).CreatePlaylist(CurrentPrincipal(c), name, description)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func UserPlaylists(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "userId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	resp, err := service.NewPlaylistService(ctx).UserPlaylists(CurrentPrincipal(c), id)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func GetPlaylist(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "playlistId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	resp, err := service.NewPlaylistService(ctx).GetPlaylist(CurrentPrincipal(c), id)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func playlistVideoIDs(c *app.RequestContext) (playlist, video primitive.ObjectID, err error) {
	if playlist, err = pathID(c, "playlistId"); err != nil {
		return
	}
	video, err = pathID(c, "videoId")
	return
}

func AddVideoToPlaylist(ctx context.Context, c *app.RequestContext) {
	playlist, video, err := playlistVideoIDs(c)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	resp, err := service.NewPlaylistService(ctx).AddVideo(CurrentPrincipal(c), playlist, video)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func RemoveVideoFromPlaylist(ctx context.Context, c *app.RequestContext) {
	playlist, video, err := playlistVideoIDs(c)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	resp, err := service.NewPlaylistService(ctx).RemoveVideo(CurrentPrincipal(c), playlist, video)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func UpdatePlaylist(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "playlistId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	var param PlaylistParam
	if err := c.BindAndValidate(&param); err != nil {
		SendResponse(c, bindErr(err), nil)
		return
	}
	resp, err := service.NewPlaylistService(ctx).UpdatePlaylist(CurrentPrincipal(c), id, &service.UpdatePlaylistRequest{
		Name:        param.Name,
		Description: param.Description,
	})
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func DeletePlaylist(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "playlistId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	if err := service.NewPlaylistService(ctx).DeletePlaylist(CurrentPrincipal(c), id); err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, nil)
}
