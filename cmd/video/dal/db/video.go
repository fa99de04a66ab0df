package db

import (
	"context"
	"time"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/store"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func CreateVideo(ctx context.Context, video *model.Video) error {
	now := time.Now().UTC()
	video.CreatedAt, video.UpdatedAt = now, now
	id, err := DB.Insert(ctx, constants.VideoCollection, video)
	if err != nil {
		return errors.Wrapf(err, "CreateVideo failed,title:%s", video.Title)
	}
	video.ID = id
	return nil
}

func GetVideo(ctx context.Context, id primitive.ObjectID) (*model.Video, error) {
	var video model.Video
	if err := DB.FindOne(ctx, constants.VideoCollection, bson.M{"_id": id}, &video); err != nil {
		return nil, errors.Wrapf(err, "GetVideo failed,id:%s", id.Hex())
	}
	return &video, nil
}

// UpdateVideo sets fields on the video and returns the stored result.
func UpdateVideo(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Video, error) {
	set["updatedAt"] = time.Now().UTC()
	if _, err := DB.UpdateOne(ctx, constants.VideoCollection, bson.M{"_id": id}, bson.M{"$set": set}, nil); err != nil {
		return nil, errors.Wrapf(err, "UpdateVideo failed,id:%s", id.Hex())
	}
	return GetVideo(ctx, id)
}

func IncrViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := DB.UpdateOne(ctx, constants.VideoCollection, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}}, nil)
	return errors.Wrapf(err, "IncrViews failed,id:%s", id.Hex())
}

// PushWatchHistory moves the video to the front of the user's history.
func PushWatchHistory(ctx context.Context, userID, videoID primitive.ObjectID) error {
	filter := bson.M{"_id": userID}
	if _, err := DB.UpdateOne(ctx, constants.UserCollection, filter, bson.M{"$pull": bson.M{"watchHistory": videoID}}, nil); err != nil {
		return errors.Wrapf(err, "PushWatchHistory pull failed,user:%s", userID.Hex())
	}
	_, err := DB.UpdateOne(ctx, constants.UserCollection, filter, bson.M{
		"$push": bson.M{"watchHistory": bson.M{"$each": []primitive.ObjectID{videoID}, "$position": 0}},
	}, nil)
	return errors.Wrapf(err, "PushWatchHistory push failed,user:%s", userID.Hex())
}

// DeleteVideo removes the record and every edge that points at it: likes on
// the video and on its comments, the comments, playlist entries and watch
// history entries.
func DeleteVideo(ctx context.Context, id primitive.ObjectID) error {
	n, err := DB.DeleteOne(ctx, constants.VideoCollection, bson.M{"_id": id})
	if err != nil {
		return errors.Wrapf(err, "DeleteVideo failed,id:%s", id.Hex())
	}
	if n == 0 {
		return nil
	}

	var comments []model.Comment
	if err := DB.FindMany(ctx, constants.CommentCollection, bson.M{"video": id}, &store.FindOptions{Projection: []string{"_id"}}, &comments); err != nil {
		return errors.Wrapf(err, "DeleteVideo list comments failed,id:%s", id.Hex())
	}
	commentIDs := make([]primitive.ObjectID, 0, len(comments))
	for _, c := range comments {
		commentIDs = append(commentIDs, c.ID)
	}
	if _, err := DB.DeleteMany(ctx, constants.LikeCollection, bson.M{"$or": []bson.M{
		{"target": id, "targetModel": model.TargetVideo},
		{"target": bson.M{"$in": commentIDs}, "targetModel": model.TargetComment},
	}}); err != nil {
		return errors.Wrapf(err, "DeleteVideo likes failed,id:%s", id.Hex())
	}
	if _, err := DB.DeleteMany(ctx, constants.CommentCollection, bson.M{"video": id}); err != nil {
		return errors.Wrapf(err, "DeleteVideo comments failed,id:%s", id.Hex())
	}
	if _, err := DB.UpdateMany(ctx, constants.PlaylistCollection, bson.M{"videos": id}, bson.M{"$pull": bson.M{"videos": id}}); err != nil {
		return errors.Wrapf(err, "DeleteVideo playlists failed,id:%s", id.Hex())
	}
	if _, err := DB.UpdateMany(ctx, constants.UserCollection, bson.M{"watchHistory": id}, bson.M{"$pull": bson.M{"watchHistory": id}}); err != nil {
		return errors.Wrapf(err, "DeleteVideo watch history failed,id:%s", id.Hex())
	}
	return nil
}
