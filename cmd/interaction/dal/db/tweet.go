package db

import (
	"context"
	"time"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/constants"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func CreateTweet(ctx context.Context, tweet *model.Tweet) error {
	now := time.Now().UTC()
	tweet.CreatedAt, tweet.UpdatedAt = now, now
	id, err := DB.Insert(ctx, constants.TweetCollection, tweet)
	if err != nil {
		return errors.Wrapf(err, "CreateTweet failed,owner:%s", tweet.Owner.Hex())
	}
	tweet.ID = id
	return nil
}

func GetTweet(ctx context.Context, id primitive.ObjectID) (*model.Tweet, error) {
	var tweet model.Tweet
	if err := DB.FindOne(ctx, constants.TweetCollection, bson.M{"_id": id}, &tweet); err != nil {
		return nil, errors.Wrapf(err, "GetTweet failed,id:%s", id.Hex())
	}
	return &tweet, nil
}

func UpdateTweetContent(ctx context.Context, id primitive.ObjectID, content string) (*model.Tweet, error) {
	update := bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now().UTC()}}
	if _, err := DB.UpdateOne(ctx, constants.TweetCollection, bson.M{"_id": id}, update, nil); err != nil {
		return nil, errors.Wrapf(err, "UpdateTweetContent failed,id:%s", id.Hex())
	}
	return GetTweet(ctx, id)
}

// DeleteTweet removes the tweet and the likes on it.
func DeleteTweet(ctx context.Context, id primitive.ObjectID) error {
	if _, err := DB.DeleteOne(ctx, constants.TweetCollection, bson.M{"_id": id}); err != nil {
		return errors.Wrapf(err, "DeleteTweet failed,id:%s", id.Hex())
	}
	return DeleteLikesOn(ctx, model.TargetTweet, id)
}
