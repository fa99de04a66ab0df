package service

import (
	"context"
	"strings"

	"VidTube.com/cmd/model"
	"VidTube.com/cmd/video/dal/db"
	"VidTube.com/pkg/auth"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/query"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	videoSortFields = []string{"createdAt", "views", "duration", "title"}
	detailFields    = []string{"videoFile", "thumbnail", "title", "description", "duration", "views", "isPublished", "createdAt", "updatedAt", "owner"}
)

const videoNotFound = "Video not found"

type VideoService struct {
	ctx context.Context
}

func NewVideoService(ctx context.Context) *VideoService {
	return &VideoService{ctx: ctx}
}

type ListVideosRequest struct {
	Page     int64
	Limit    int64
	Query    string
	SortBy   string
	SortType string
	// UserID restricts the list to one owner's videos.
	UserID *primitive.ObjectID
}

type PublishVideoRequest struct {
	Title         string
	Description   string
	VideoPath     string
	ThumbnailPath string
}

type UpdateVideoRequest struct {
	Title       *string
	Description *string
}

// visibleTo limits videos to published ones plus the principal's own.
func visibleTo(p *auth.Principal) bson.M {
	if p == nil {
		return model.VideoVisibleTo(primitive.NilObjectID)
	}
	return model.VideoVisibleTo(p.UserID)
}

func detailSpec(match bson.M) query.Spec {
	return query.Spec{
		Collection: constants.VideoCollection,
		Match:      match,
		Joins:      []query.Join{query.JoinOne(constants.UserCollection, "owner", "owner", "username", "fullName", "avatar")},
		Project:    detailFields,
	}
}

func (s *VideoService) ListVideos(p *auth.Principal, req *ListVideosRequest) (*query.Page[model.VideoDetail], error) {
	page, err := query.NewPagination(req.Page, req.Limit)
	if err != nil {
		return nil, err
	}
	sort, err := query.ParseSort(req.SortBy, req.SortType, "createdAt", videoSortFields...)
	if err != nil {
		return nil, err
	}
	var owner bson.M
	if req.UserID != nil {
		owner = bson.M{"owner": *req.UserID}
	}
	spec := detailSpec(query.And(owner, visibleTo(p), query.TextSearch(req.Query, "title", "description")))
	spec.Sort = sort
	return query.Run[model.VideoDetail](s.ctx, db.Engine, spec, page)
}

// GetVideo returns a video with its owner. Unpublished videos exist only for
// their owner.
func (s *VideoService) GetVideo(p *auth.Principal, id primitive.ObjectID) (*model.VideoDetail, error) {
	v, err := query.First[model.VideoDetail](s.ctx, db.Engine, detailSpec(query.And(bson.M{"_id": id}, visibleTo(p))))
	if err != nil {
		return nil, errno.FromStore(err, videoNotFound)
	}
	return v, nil
}

func (s *VideoService) PublishVideo(p *auth.Principal, req *PublishVideoRequest) (*model.Video, error) {
	owner, err := auth.Require(p)
	if err != nil {
		return nil, err
	}
	title, description := strings.TrimSpace(req.Title), strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		return nil, errno.ParamErr.WithMessage("Title and Description are required")
	}
	if req.VideoPath == "" {
		return nil, errno.ParamErr.WithMessage("Video file is required")
	}
	if req.ThumbnailPath == "" {
		return nil, errno.ParamErr.WithMessage("Thumbnail file is required")
	}

	videoFile, err := media.Upload(s.ctx, req.VideoPath, constants.MediaVideo)
	if err != nil {
		return nil, err
	}
	thumbnail, err := media.Upload(s.ctx, req.ThumbnailPath, constants.MediaImage)
	if err != nil {
		s.rollback(videoFile.PublicID, constants.MediaVideo)
		return nil, err
	}

	video := &model.Video{
		Owner:             owner,
		VideoFile:         videoFile.URL,
		VideoPublicID:     videoFile.PublicID,
		Thumbnail:         thumbnail.URL,
		ThumbnailPublicID: thumbnail.PublicID,
		Title:             title,
		Description:       description,
		Duration:          videoFile.Duration,
		IsPublished:       true,
	}
	if err := db.CreateVideo(s.ctx, video); err != nil {
		s.rollback(videoFile.PublicID, constants.MediaVideo)
		s.rollback(thumbnail.PublicID, constants.MediaImage)
		return nil, err
	}
	return video, nil
}

// rollback removes an asset uploaded for a request that then failed.
func (s *VideoService) rollback(publicID, kind string) {
	if err := media.Delete(s.ctx, publicID, kind); err != nil {
		hlog.CtxErrorf(s.ctx, "rollback %s %s failed: %v", kind, publicID, err)
	}
}

// owned loads the video and checks the principal owns it.
func (s *VideoService) owned(p *auth.Principal, id primitive.ObjectID) (*model.Video, error) {
	if _, err := auth.Require(p); err != nil {
		return nil, err
	}
	video, err := db.GetVideo(s.ctx, id)
	if err != nil {
		return nil, errno.FromStore(err, videoNotFound)
	}
	if err := auth.Authorize(p, video); err != nil {
		return nil, err
	}
	return video, nil
}

func (s *VideoService) UpdateVideo(p *auth.Principal, id primitive.ObjectID, req *UpdateVideoRequest) (*model.Video, error) {
	set := bson.M{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, errno.ParamErr.WithMessage("Title cannot be empty")
		}
		set["title"] = title
	}
	if req.Description != nil {
		set["description"] = strings.TrimSpace(*req.Description)
	}
	if len(set) == 0 {
		return nil, errno.ParamErr.WithMessage("Nothing to update")
	}
	if _, err := s.owned(p, id); err != nil {
		return nil, err
	}
	return db.UpdateVideo(s.ctx, id, set)
}

// ReplaceVideoFile overwrites the stored video asset in place.
func (s *VideoService) ReplaceVideoFile(p *auth.Principal, id primitive.ObjectID, path string) (*model.Video, error) {
	if path == "" {
		return nil, errno.ParamErr.WithMessage("Video file is required")
	}
	video, err := s.owned(p, id)
	if err != nil {
		return nil, err
	}
	asset, err := media.Replace(s.ctx, path, video.VideoPublicID, constants.MediaVideo)
	if err != nil {
		return nil, err
	}
	return db.UpdateVideo(s.ctx, id, bson.M{
		"videoFile":     asset.URL,
		"videoPublicId": asset.PublicID,
		"duration":      asset.Duration,
	})
}

func (s *VideoService) ReplaceThumbnail(p *auth.Principal, id primitive.ObjectID, path string) (*model.Video, error) {
	if path == "" {
		return nil, errno.ParamErr.WithMessage("Thumbnail file is required")
	}
	video, err := s.owned(p, id)
	if err != nil {
		return nil, err
	}
	asset, err := media.Replace(s.ctx, path, video.ThumbnailPublicID, constants.MediaImage)
	if err != nil {
		return nil, err
	}
	return db.UpdateVideo(s.ctx, id, bson.M{
		"thumbnail":         asset.URL,
		"thumbnailPublicId": asset.PublicID,
	})
}

// DeleteVideo removes both remote assets before the record; a failed remote
// delete leaves the record in place.
func (s *VideoService) DeleteVideo(p *auth.Principal, id primitive.ObjectID) error {
	video, err := s.owned(p, id)
	if err != nil {
		return err
	}
	if err := media.Delete(s.ctx, video.VideoPublicID, constants.MediaVideo); err != nil {
		return err
	}
	if err := media.Delete(s.ctx, video.ThumbnailPublicID, constants.MediaImage); err != nil {
		return err
	}
	return db.DeleteVideo(s.ctx, id)
}

func (s *VideoService) TogglePublishStatus(p *auth.Principal, id primitive.ObjectID) (*model.Video, error) {
	video, err := s.owned(p, id)
	if err != nil {
		return nil, err
	}
	return db.UpdateVideo(s.ctx, id, bson.M{"isPublished": !video.IsPublished})
}

// RecordView counts a view and moves the video to the front of the viewer's
// watch history. Anonymous views are counted only.
func (s *VideoService) RecordView(p *auth.Principal, id primitive.ObjectID) (*model.VideoDetail, error) {
	if _, err := s.GetVideo(p, id); err != nil {
		return nil, err
	}
	if err := db.IncrViews(s.ctx, id); err != nil {
		return nil, err
	}
	if p != nil {
		if err := db.PushWatchHistory(s.ctx, p.UserID, id); err != nil {
			return nil, err
		}
	}
	return s.GetVideo(p, id)
}
