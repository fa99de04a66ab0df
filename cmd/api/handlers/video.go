package handlers

import (
	"context"

	videoservice "VidTube.com/cmd/video/service"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/app"
)

func ListVideos(ctx context.Context, c *app.RequestContext) {
	var param VideoListParam
	if err := c.BindAndValidate(&param); err != nil {
		SendResponse(c, bindErr(err), nil)
		return
	}
	req := &videoservice.ListVideosRequest{
		Page:     param.Page,
		Limit:    param.Limit,
		Query:    param.Query,
		SortBy:   param.SortBy,
		SortType: param.SortType,
	}
	if param.UserID != "" {
		id, err := utils.ParseObjectID(param.UserID, "userId")
		if err != nil {
			SendResponse(c, err, nil)
			return
		}
		req.UserID = &id
	}
	resp, err := videoservice.NewVideoService(ctx).ListVideos(CurrentPrincipal(c), req)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func PublishVideo(ctx context.Context, c *app.RequestContext) {
	videoPath, err := saveUpload(c, "videoFile")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	thumbnailPath, err := saveUpload(c, "thumbnail")
	defer removeUploads(videoPath, thumbnailPath)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	resp, err := videoservice.NewVideoService(ctx).PublishVideo(CurrentPrincipal(c), &videoservice.PublishVideoRequest{
		Title:         c.PostForm("title"),
		Description:   c.PostForm("description"),
		VideoPath:     videoPath,
		ThumbnailPath: thumbnailPath,
	})
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func GetVideo(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "videoId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	resp, err := videoservice.NewVideoService(ctx).GetVideo(CurrentPrincipal(c), id)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func UpdateVideo(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "videoId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	var param VideoUpdateParam
	if err := c.BindAndValidate(&param); err != nil {
		SendResponse(c, bindErr(err), nil)
		return
	}
	resp, err := videoservice.NewVideoService(ctx).UpdateVideo(CurrentPrincipal(c), id, &videoservice.UpdateVideoRequest{
		Title:       param.Title,
		Description: param.Description,
	})
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func ReplaceVideoFile(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "videoId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	path, err := saveUpload(c, "videoFile")
	defer removeUploads(path)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	resp, err := videoservice.NewVideoService(ctx).ReplaceVideoFile(CurrentPrincipal(c), id, path)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func ReplaceThumbnail(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "videoId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	path, err := saveUpload(c, "thumbnail")
	defer removeUploads(path)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	resp, err := videoservice.NewVideoService(ctx).ReplaceThumbnail(CurrentPrincipal(c), id, path)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func DeleteVideo(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "videoId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	if err := videoservice.NewVideoService(ctx).DeleteVideo(CurrentPrincipal(c), id); err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, nil)
}

func TogglePublishStatus(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "videoId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	resp, err := videoservice.NewVideoService(ctx).TogglePublishStatus(CurrentPrincipal(c), id)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}

func RecordView(ctx context.Context, c *app.RequestContext) {
	id, err := pathID(c, "videoId")
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	resp, err := videoservice.NewVideoService(ctx).RecordView(CurrentPrincipal(c), id)
	if err != nil {
		SendResponse(c, err, nil)
		return
	}
	SendResponse(c, errno.Success, resp)
}
