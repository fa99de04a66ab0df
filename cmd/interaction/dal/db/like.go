package db

import (
	"context"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/constants"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LikeKey is the unique edge key of a like.
func LikeKey(user, target primitive.ObjectID, kind model.TargetModel) bson.M {
	return bson.M{"likedBy": user, "target": target, "targetModel": kind}
}

// TargetExists checks the liked entity is present in the collection of its kind.
func TargetExists(ctx context.Context, kind model.TargetModel, target primitive.ObjectID) (bool, error) {
	coll, ok := kind.Collection()
	if !ok {
		return false, errors.Errorf("unknown target model %q", kind)
	}
	n, err := DB.CountDocuments(ctx, coll, bson.M{"_id": target})
	if err != nil {
		return false, errors.Wrapf(err, "TargetExists failed,%s:%s", kind, target.Hex())
	}
	return n > 0, nil
}

func CountLikes(ctx context.Context, kind model.TargetModel, target primitive.ObjectID) (int64, error) {
	n, err := DB.CountDocuments(ctx, constants.LikeCollection, bson.M{"target": target, "targetModel": kind})
	if err != nil {
		return 0, errors.Wrapf(err, "CountLikes failed,%s:%s", kind, target.Hex())
	}
	return n, nil
}

// DeleteLikesOn removes every like pointing at the given targets.
func DeleteLikesOn(ctx context.Context, kind model.TargetModel, targets ...primitive.ObjectID) error {
	if len(targets) == 0 {
		return nil
	}
	_, err := DB.DeleteMany(ctx, constants.LikeCollection, bson.M{"target": bson.M{"$in": targets}, "targetModel": kind})
	return errors.Wrapf(err, "DeleteLikesOn failed,%s", kind)
}
