package db

import (
	"context"

	"VidTube.com/pkg/constants"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionKey is the unique edge key of a subscription.
func SubscriptionKey(subscriber, channel primitive.ObjectID) bson.M {
	return bson.M{"subscriber": subscriber, "channel": channel}
}

func ChannelExists(ctx context.Context, channel primitive.ObjectID) (bool, error) {
	n, err := DB.CountDocuments(ctx, constants.UserCollection, bson.M{"_id": channel})
	if err != nil {
		return false, errors.Wrapf(err, "ChannelExists failed,id:%s", channel.Hex())
	}
	return n > 0, nil
}
