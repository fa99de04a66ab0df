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

func VideoExists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := DB.CountDocuments(ctx, constants.VideoCollection, bson.M{"_id": id})
	if err != nil {
		return false, errors.Wrapf(err, "VideoExists failed,id:%s", id.Hex())
	}
	return n > 0, nil
}

func CreateComment(ctx context.Context, comment *model.Comment) error {
	now := time.Now().UTC()
	comment.CreatedAt, comment.UpdatedAt = now, now
	id, err := DB.Insert(ctx, constants.CommentCollection, comment)
	if err != nil {
		return errors.Wrapf(err, "CreateComment failed,video:%s", comment.Video.Hex())
	}
	comment.ID = id
	return nil
}

func GetComment(ctx context.Context, id primitive.ObjectID) (*model.Comment, error) {
	var comment model.Comment
	if err := DB.FindOne(ctx, constants.CommentCollection, bson.M{"_id": id}, &comment); err != nil {
		return nil, errors.Wrapf(err, "GetComment failed,id:%s", id.Hex())
	}
	return &comment, nil
}

func UpdateCommentContent(ctx context.Context, id primitive.ObjectID, content string) (*model.Comment, error) {
	update := bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now().UTC()}}
	if _, err := DB.UpdateOne(ctx, constants.CommentCollection, bson.M{"_id": id}, update, nil); err != nil {
		return nil, errors.Wrapf(err, "UpdateCommentContent failed,id:%s", id.Hex())
	}
	return GetComment(ctx, id)
}

// DeleteComment removes the comment and the likes on it.
func DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	if _, err := DB.DeleteOne(ctx, constants.CommentCollection, bson.M{"_id": id}); err != nil {
		return errors.Wrapf(err, "DeleteComment failed,id:%s", id.Hex())
	}
	return DeleteLikesOn(ctx, model.TargetComment, id)
}
