package service

import (
	"context"
	"time"

	"VidTube.com/cmd/model"
	"VidTube.com/cmd/relation/dal/db"
	"VidTube.com/pkg/auth"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/mq"
	"VidTube.com/pkg/query"
	"VidTube.com/pkg/relation"
	"VidTube.com/pkg/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	summaryFields = []string{"username", "fullName", "avatar"}
	newestFirst   = []store.SortKey{{Field: "createdAt", Desc: true}}
)

type SubscriptionService struct {
	ctx context.Context
}

func NewSubscriptionService(ctx context.Context) *SubscriptionService {
	return &SubscriptionService{ctx: ctx}
}

// ToggleSubscription subscribes the principal to channel, or unsubscribes when
// already subscribed. Returns the resulting state.
func (s *SubscriptionService) ToggleSubscription(p *auth.Principal, channel primitive.ObjectID) (bool, error) {
	subscriber, err := auth.Require(p)
	if err != nil {
		return false, err
	}
	if subscriber == channel {
		return false, errno.InvalidOpErr.WithMessage("You cannot subscribe to your own channel")
	}

	now := time.Now().UTC()
	edge := relation.Edge{
		Collection: constants.SubscriptionCollection,
		Key:        db.SubscriptionKey(subscriber, channel),
		Doc: &model.Subscription{
			Subscriber: subscriber,
			Channel:    channel,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		Event: mq.NewRelationEvent(mq.RelationKindSubscription, subscriber.Hex(), channel.Hex(), "", false),
	}
	return toggler.Toggle(s.ctx, edge, func(ctx context.Context) error {
		ok, err := db.ChannelExists(ctx, channel)
		if err != nil {
			return err
		}
		if !ok {
			return errno.NotFoundErr.WithMessage("Channel not found")
		}
		return nil
	})
}

// Subscribers pages through the users subscribed to channel.
func (s *SubscriptionService) Subscribers(channel primitive.ObjectID, page, limit int64) (*query.Page[model.Subscriber], error) {
	pg, err := query.NewPagination(page, limit)
	if err != nil {
		return nil, err
	}
	return query.Run[model.Subscriber](s.ctx, db.Engine, query.Spec{
		Collection: constants.SubscriptionCollection,
		Match:      bson.M{"channel": channel},
		Joins:      []query.Join{query.JoinOne(constants.UserCollection, "subscriber", "subscriber", summaryFields...)},
		Sort:       newestFirst,
		Project:    []string{"subscriber", "createdAt"},
	}, pg)
}

// SubscribedChannels pages through the channels subscriber follows.
func (s *SubscriptionService) SubscribedChannels(subscriber primitive.ObjectID, page, limit int64) (*query.Page[model.SubscribedChannel], error) {
	pg, err := query.NewPagination(page, limit)
	if err != nil {
		return nil, err
	}
	return query.Run[model.SubscribedChannel](s.ctx, db.Engine, query.Spec{
		Collection: constants.SubscriptionCollection,
		Match:      bson.M{"subscriber": subscriber},
		Joins:      []query.Join{query.JoinOne(constants.UserCollection, "channel", "channel", summaryFields...)},
		Sort:       newestFirst,
		Project:    []string{"channel", "createdAt"},
	}, pg)
}
