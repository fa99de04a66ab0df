package service

import (
	"context"
	"time"

	"VidTube.com/cmd/interaction/dal/db"
	"VidTube.com/cmd/model"
	"VidTube.com/pkg/auth"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/mq"
	"VidTube.com/pkg/query"
	"VidTube.com/pkg/relation"
	"VidTube.com/pkg/store"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	summaryFields = []string{"username", "fullName", "avatar"}
	videoFields   = []string{"videoFile", "thumbnail", "title", "description", "duration", "views", "isPublished", "createdAt", "updatedAt", "owner"}
	newestFirst   = []store.SortKey{{Field: "createdAt", Desc: true}}
)

type LikeService struct {
	ctx context.Context
}

func NewLikeService(ctx context.Context) *LikeService {
	return &LikeService{ctx: ctx}
}

func parseTargetModel(raw string) (model.TargetModel, error) {
	kind := model.TargetModel(raw)
	if _, ok := kind.Collection(); !ok {
		return "", errno.ParamErr.WithMessage("Invalid target model")
	}
	return kind, nil
}

// ToggleLike flips the principal's like on the target and reports whether the
// target is liked afterwards. The target must exist only when a like is created.
func (s *LikeService) ToggleLike(p *auth.Principal, targetModel string, target primitive.ObjectID) (bool, error) {
	user, err := auth.Require(p)
	if err != nil {
		return false, err
	}
	kind, err := parseTargetModel(targetModel)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	edge := relation.Edge{
		Collection: constants.LikeCollection,
		Key:        db.LikeKey(user, target, kind),
		Doc: &model.Like{
			LikedBy:     user,
			Target:      target,
			TargetModel: kind,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		Event: mq.NewRelationEvent(mq.RelationKindLike, user.Hex(), target.Hex(), string(kind), false),
	}
	liked, err := toggler.Toggle(s.ctx, edge, func(ctx context.Context) error {
		ok, err := db.TargetExists(ctx, kind, target)
		if err != nil {
			return err
		}
		if !ok {
			return errno.NotFoundErr.WithMessage(string(kind) + " not found")
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if likeCounts != nil {
		if err := likeCounts.Invalidate(s.ctx, string(kind), target.Hex()); err != nil {
			hlog.CtxErrorf(s.ctx, "invalidate like count %s:%s failed: %v", kind, target.Hex(), err)
		}
	}
	return liked, nil
}

// LikeCount returns the number of likes on the target, served from the cache when warm.
func (s *LikeService) LikeCount(targetModel string, target primitive.ObjectID) (int64, error) {
	kind, err := parseTargetModel(targetModel)
	if err != nil {
		return 0, err
	}
	if likeCounts != nil {
		n, ok, err := likeCounts.Get(s.ctx, string(kind), target.Hex())
		if err != nil {
			hlog.CtxErrorf(s.ctx, "get like count %s:%s failed: %v", kind, target.Hex(), err)
		} else if ok {
			return n, nil
		}
	}
	n, err := db.CountLikes(s.ctx, kind, target)
	if err != nil {
		return 0, err
	}
	if likeCounts != nil {
		if err := likeCounts.Set(s.ctx, string(kind), target.Hex(), n); err != nil {
			hlog.CtxErrorf(s.ctx, "set like count %s:%s failed: %v", kind, target.Hex(), err)
		}
	}
	return n, nil
}

// LikedUsers pages through the users who liked the target, most recent first.
func (s *LikeService) LikedUsers(targetModel string, target primitive.ObjectID, page, limit int64) (*query.Page[model.Liker], error) {
	kind, err := parseTargetModel(targetModel)
	if err != nil {
		return nil, err
	}
	pg, err := query.NewPagination(page, limit)
	if err != nil {
		return nil, err
	}
	return query.Run[model.Liker](s.ctx, db.Engine, query.Spec{
		Collection: constants.LikeCollection,
		Match:      bson.M{"target": target, "targetModel": kind},
		Joins:      []query.Join{query.JoinOne(constants.UserCollection, "likedBy", "likedBy", summaryFields...)},
		Sort:       newestFirst,
		Project:    []string{"likedBy", "createdAt"},
	}, pg)
}

// LikedVideos pages through the videos the principal liked, each with its
// owner. A liked video its owner has since unpublished comes back without
// the video.
func (s *LikeService) LikedVideos(p *auth.Principal, page, limit int64) (*query.Page[model.LikedVideo], error) {
	user, err := auth.Require(p)
	if err != nil {
		return nil, err
	}
	pg, err := query.NewPagination(page, limit)
	if err != nil {
		return nil, err
	}
	video := query.JoinOne(constants.VideoCollection, "target", "target", videoFields...)
	video.Match = model.VideoVisibleTo(user)
	video.Joins = []query.Join{query.JoinOne(constants.UserCollection, "owner", "owner", summaryFields...)}
	return query.Run[model.LikedVideo](s.ctx, db.Engine, query.Spec{
		Collection: constants.LikeCollection,
		Match:      bson.M{"likedBy": user, "targetModel": model.TargetVideo},
		Joins:      []query.Join{video},
		Sort:       newestFirst,
		Project:    []string{"target", "createdAt"},
	}, pg)
}
