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

func CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.WatchHistory == nil {
		user.WatchHistory = []primitive.ObjectID{}
	}
	id, err := DB.Insert(ctx, constants.UserCollection, user)
	if err != nil {
		return errors.Wrapf(err, "CreateUser failed,username:%s", user.Username)
	}
	user.ID = id
	return nil
}

func GetUser(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var user model.User
	if err := DB.FindOne(ctx, constants.UserCollection, bson.M{"_id": id}, &user); err != nil {
		return nil, errors.Wrapf(err, "GetUser failed,id:%s", id.Hex())
	}
	return &user, nil
}

// GetUserByLogin finds a user by username or email.
func GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	var user model.User
	filter := bson.M{"$or": []bson.M{{"username": login}, {"email": login}}}
	if err := DB.FindOne(ctx, constants.UserCollection, filter, &user); err != nil {
		return nil, errors.Wrapf(err, "GetUserByLogin failed,login:%s", login)
	}
	return &user, nil
}

// CheckUserExists reports whether the username or email is taken.
func CheckUserExists(ctx context.Context, username, email string) (bool, error) {
	n, err := DB.CountDocuments(ctx, constants.UserCollection, bson.M{"$or": []bson.M{{"username": username}, {"email": email}}})
	if err != nil {
		return false, errors.Wrapf(err, "CheckUserExists failed,username:%s", username)
	}
	return n > 0, nil
}

var ownedCollections = []string{
	constants.VideoCollection,
	constants.PlaylistCollection,
	constants.TweetCollection,
	constants.CommentCollection,
}

// OwnsContent reports whether any video, playlist, tweet or comment still
// belongs to the user.
func OwnsContent(ctx context.Context, id primitive.ObjectID) (bool, error) {
	for _, coll := range ownedCollections {
		n, err := DB.CountDocuments(ctx, coll, bson.M{"owner": id})
		if err != nil {
			return false, errors.Wrapf(err, "OwnsContent failed,%s:%s", coll, id.Hex())
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

// DeleteUser removes the user's likes, subscriptions in both directions and
// the user document.
func DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	if _, err := DB.DeleteMany(ctx, constants.LikeCollection, bson.M{"likedBy": id}); err != nil {
		return errors.Wrapf(err, "DeleteUser likes failed,id:%s", id.Hex())
	}
	if _, err := DB.DeleteMany(ctx, constants.SubscriptionCollection, bson.M{"$or": []bson.M{{"subscriber": id}, {"channel": id}}}); err != nil {
		return errors.Wrapf(err, "DeleteUser subscriptions failed,id:%s", id.Hex())
	}
	_, err := DB.DeleteOne(ctx, constants.UserCollection, bson.M{"_id": id})
	return errors.Wrapf(err, "DeleteUser failed,id:%s", id.Hex())
}
