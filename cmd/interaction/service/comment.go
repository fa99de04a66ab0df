package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"VidTube.com/cmd/interaction/dal/db"
	"VidTube.com/cmd/model"
	"VidTube.com/pkg/auth"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const commentNotFound = "Comment not found"

type CommentService struct {
	ctx context.Context
}

func NewCommentService(ctx context.Context) *CommentService {
	return &CommentService{ctx: ctx}
}

func commentContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", errno.ParamErr.WithMessage("Content is required")
	}
	if utf8.RuneCountInString(content) > constants.MaxCommentLength {
		return "", errno.ParamErr.WithMessage("Comment is too long")
	}
	return content, nil
}

func (s *CommentService) videoExists(id primitive.ObjectID) error {
	ok, err := db.VideoExists(s.ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errno.NotFoundErr.WithMessage("Video not found")
	}
	return nil
}

func (s *CommentService) AddComment(p *auth.Principal, videoID primitive.ObjectID, content string) (*model.Comment, error) {
	owner, err := auth.Require(p)
	if err != nil {
		return nil, err
	}
	content, err = commentContent(content)
	if err != nil {
		return nil, err
	}
	if err := s.videoExists(videoID); err != nil {
		return nil, err
	}
	comment := &model.Comment{Content: content, Video: videoID, Owner: owner}
	if err := db.CreateComment(s.ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments pages through a video's comments, newest first, with their authors.
func (s *CommentService) ListComments(videoID primitive.ObjectID, page, limit int64) (*query.Page[model.CommentWithOwner], error) {
	pg, err := query.NewPagination(page, limit)
	if err != nil {
		return nil, err
	}
	if err := s.videoExists(videoID); err != nil {
		return nil, err
	}
	return query.Run[model.CommentWithOwner](s.ctx, db.Engine, query.Spec{
		Collection: constants.CommentCollection,
		Match:      bson.M{"video": videoID},
		Joins:      []query.Join{query.JoinOne(constants.UserCollection, "owner", "owner", summaryFields...)},
		Sort:       newestFirst,
		Project:    []string{"content", "video", "owner", "createdAt", "updatedAt"},
	}, pg)
}

func (s *CommentService) owned(p *auth.Principal, id primitive.ObjectID) (*model.Comment, error) {
	if _, err := auth.Require(p); err != nil {
		return nil, err
	}
	comment, err := db.GetComment(s.ctx, id)
	if err != nil {
		return nil, errno.FromStore(err, commentNotFound)
	}
	if err := auth.Authorize(p, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) UpdateComment(p *auth.Principal, id primitive.ObjectID, content string) (*model.Comment, error) {
	content, err := commentContent(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(p, id); err != nil {
		return nil, err
	}
	return db.UpdateCommentContent(s.ctx, id, content)
}

func (s *CommentService) DeleteComment(p *auth.Principal, id primitive.ObjectID) error {
	if _, err := s.owned(p, id); err != nil {
		return err
	}
	return db.DeleteComment(s.ctx, id)
}
