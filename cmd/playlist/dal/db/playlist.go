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

func CreatePlaylist(ctx context.Context, playlist *model.Playlist) error {
	now := time.Now().UTC()
	playlist.CreatedAt, playlist.UpdatedAt = now, now
	if playlist.Videos == nil {
		playlist.Videos = []primitive.ObjectID{}
	}
	id, err := DB.Insert(ctx, constants.PlaylistCollection, playlist)
	if err != nil {
		return errors.Wrapf(err, "CreatePlaylist failed,name:%s", playlist.Name)
	}
	playlist.ID = id
	return nil
}

func GetPlaylist(ctx context.Context, id primitive.ObjectID) (*model.Playlist, error) {
	var playlist model.Playlist
	if err := DB.FindOne(ctx, constants.PlaylistCollection, bson.M{"_id": id}, &playlist); err != nil {
		return nil, errors.Wrapf(err, "GetPlaylist failed,id:%s", id.Hex())
	}
	return &playlist, nil
}

func UpdatePlaylist(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Playlist, error) {
	set["updatedAt"] = time.Now().UTC()
	if _, err := DB.UpdateOne(ctx, constants.PlaylistCollection, bson.M{"_id": id}, bson.M{"$set": set}, nil); err != nil {
		return nil, errors.Wrapf(err, "UpdatePlaylist failed,id:%s", id.Hex())
	}
	return GetPlaylist(ctx, id)
}

// AddVideo appends the video unless the playlist already holds it; added is
// false in that case.
func AddVideo(ctx context.Context, id, video primitive.ObjectID) (added bool, err error) {
	res, err := DB.UpdateOne(ctx, constants.PlaylistCollection,
		bson.M{"_id": id, "videos": bson.M{"$ne": video}},
		bson.M{"$push": bson.M{"videos": video}, "$set": bson.M{"updatedAt": time.Now().UTC()}}, nil)
	if err != nil {
		return false, errors.Wrapf(err, "AddVideo failed,playlist:%s", id.Hex())
	}
	return res.MatchedCount > 0, nil
}

// RemoveVideo pulls every occurrence of the video; removed is false when it was absent.
func RemoveVideo(ctx context.Context, id, video primitive.ObjectID) (removed bool, err error) {
	res, err := DB.UpdateOne(ctx, constants.PlaylistCollection,
		bson.M{"_id": id, "videos": video},
		bson.M{"$pull": bson.M{"videos": video}, "$set": bson.M{"updatedAt": time.Now().UTC()}}, nil)
	if err != nil {
		return false, errors.Wrapf(err, "RemoveVideo failed,playlist:%s", id.Hex())
	}
	return res.MatchedCount > 0, nil
}

func DeletePlaylist(ctx context.Context, id primitive.ObjectID) error {
	_, err := DB.DeleteOne(ctx, constants.PlaylistCollection, bson.M{"_id": id})
	return errors.Wrapf(err, "DeletePlaylist failed,id:%s", id.Hex())
}

// VideoVisible reports whether the video exists and is published or owned by viewer.
func VideoVisible(ctx context.Context, id, viewer primitive.ObjectID) (bool, error) {
	filter := bson.M{"$and": []bson.M{{"_id": id}, model.VideoVisibleTo(viewer)}}
	n, err := DB.CountDocuments(ctx, constants.VideoCollection, filter)
	if err != nil {
		return false, errors.Wrapf(err, "VideoVisible failed,id:%s", id.Hex())
	}
	return n > 0, nil
}
