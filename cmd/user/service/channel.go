package service

import (
	"strings"

	"VidTube.com/cmd/model"
	"VidTube.com/cmd/user/dal/db"
	"VidTube.com/pkg/auth"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/query"
	"VidTube.com/pkg/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChannelProfile returns the public channel of username with subscriber
// counts. isSubscribed is true only when the principal subscribes to it.
func (s *UserService) ChannelProfile(p *auth.Principal, username string) (*model.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, errno.ParamErr.WithMessage("Username is missing")
	}
	var isSubscribed store.Expr = store.Literal{Value: false}
	if p != nil && !p.UserID.IsZero() {
		isSubscribed = store.In{Value: store.Literal{Value: p.UserID}, Array: store.FieldRef("subscribers.subscriber")}
	}
	profile, err := query.First[model.ChannelProfile](s.ctx, db.Engine, query.Spec{
		Collection: constants.UserCollection,
		Match:      bson.M{"username": username},
		Joins: []query.Join{
			{From: constants.SubscriptionCollection, LocalField: "_id", ForeignField: "channel", As: "subscribers"},
			{From: constants.SubscriptionCollection, LocalField: "_id", ForeignField: "subscriber", As: "subscribedTo"},
		},
		Computed: []store.Field{
			{Name: "subscribersCount", Expr: store.Size{Of: store.FieldRef("subscribers")}},
			{Name: "channelsSubscribedToCount", Expr: store.Size{Of: store.FieldRef("subscribedTo")}},
			{Name: "isSubscribed", Expr: isSubscribed},
		},
		Project: []string{"username", "fullName", "email", "avatar", "coverImage", "subscribersCount", "channelsSubscribedToCount", "isSubscribed"},
	})
	if err != nil {
		return nil, errno.FromStore(err, "Channel does not exist")
	}
	return profile, nil
}

// historySpec joins the user's watched videos with their owners.
func historySpec(user primitive.ObjectID) query.Spec {
	return query.Spec{
		Collection: constants.UserCollection,
		Match:      bson.M{"_id": user},
		Joins: []query.Join{{
			From:         constants.VideoCollection,
			LocalField:   "watchHistory",
			ForeignField: "_id",
			As:           "history",
			Match:        model.VideoVisibleTo(user),
			Joins: []query.Join{{
				From:         constants.UserCollection,
				LocalField:   "owner",
				ForeignField: "_id",
				As:           "owner",
				Cardinality:  query.One,
				Project:      []string{"fullName", "username", "avatar"},
				ExcludeID:    true,
			}},
			Project: []string{"title", "description", "videoFile", "thumbnail", "duration", "views", "createdAt", "owner"},
		}},
		Project: []string{"watchHistory", "history"},
	}
}

type historyRow struct {
	WatchHistory []primitive.ObjectID `bson:"watchHistory"`
	Videos       []model.WatchedVideo `bson:"history"`
}

// WatchHistory returns the principal's watched videos, most recent first,
// leaving out videos unpublished by someone else. Each owner carries exactly
// fullName, username and avatar.
func (s *UserService) WatchHistory(p *auth.Principal) ([]model.WatchedVideo, error) {
	id, err := auth.Require(p)
	if err != nil {
		return nil, err
	}
	row, err := query.First[historyRow](s.ctx, db.Engine, historySpec(id))
	if err != nil {
		return nil, errno.FromStore(err, userNotFound)
	}
	return query.OrderByIDs(row.WatchHistory, row.Videos, func(v model.WatchedVideo) primitive.ObjectID {
		return v.ID
	}), nil
}
