package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Video struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Owner             primitive.ObjectID `bson:"owner" json:"owner"`
	VideoFile         string             `bson:"videoFile" json:"videoFile"`
	VideoPublicID     string             `bson:"videoPublicId" json:"-"`
	Thumbnail         string             `bson:"thumbnail" json:"thumbnail"`
	ThumbnailPublicID string             `bson:"thumbnailPublicId" json:"-"`
	Title             string             `bson:"title" json:"title"`
	Description       string             `bson:"description" json:"description"`
	Duration          float64            `bson:"duration" json:"duration"`
	Views             int64              `bson:"views" json:"views"`
	IsPublished       bool               `bson:"isPublished" json:"isPublished"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (v *Video) OwnerID() primitive.ObjectID { return v.Owner }

// VideoVisibleTo filters videos down to the published ones plus those owned
// by viewer. A zero viewer is anonymous and sees published videos only.
func VideoVisibleTo(viewer primitive.ObjectID) bson.M {
	if viewer.IsZero() {
		return bson.M{"isPublished": true}
	}
	return bson.M{"$or": []bson.M{{"isPublished": true}, {"owner": viewer}}}
}

// VideoDetail is a video with its owner joined.
type VideoDetail struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	VideoFile   string             `bson:"videoFile" json:"videoFile"`
	Thumbnail   string             `bson:"thumbnail" json:"thumbnail"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Duration    float64            `bson:"duration" json:"duration"`
	Views       int64              `bson:"views" json:"views"`
	IsPublished bool               `bson:"isPublished" json:"isPublished"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
	Owner       *UserSummary       `bson:"owner,omitempty" json:"owner,omitempty"`
}

// VideoSummary 播放列表中的视频
type VideoSummary struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Title     string             `bson:"title" json:"title"`
	VideoFile string             `bson:"videoFile" json:"videoFile"`
	Thumbnail string             `bson:"thumbnail" json:"thumbnail"`
	Duration  float64            `bson:"duration" json:"duration"`
	Views     int64              `bson:"views" json:"views"`
	Owner     primitive.ObjectID `bson:"owner" json:"owner"`
}
