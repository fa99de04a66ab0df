package model

import (
	"time"

	"VidTube.com/pkg/constants"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Content   string             `bson:"content" json:"content"`
	Video     primitive.ObjectID `bson:"video" json:"video"`
	Owner     primitive.ObjectID `bson:"owner" json:"owner"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (c *Comment) OwnerID() primitive.ObjectID { return c.Owner }

// CommentWithOwner 带作者信息的评论
type CommentWithOwner struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Content   string             `bson:"content" json:"content"`
	Video     primitive.ObjectID `bson:"video" json:"video"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
	Owner     *UserSummary       `bson:"owner,omitempty" json:"owner,omitempty"`
}

type Tweet struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Content   string             `bson:"content" json:"content"`
	Owner     primitive.ObjectID `bson:"owner" json:"owner"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (t *Tweet) OwnerID() primitive.ObjectID { return t.Owner }

// TargetModel tags the collection a like points into.
type TargetModel string

const (
	TargetVideo   TargetModel = "Video"
	TargetComment TargetModel = "Comment"
	TargetTweet   TargetModel = "Tweet"
)

var targetCollections = map[TargetModel]string{
	TargetVideo:   constants.VideoCollection,
	TargetComment: constants.CommentCollection,
	TargetTweet:   constants.TweetCollection,
}

// Collection resolves the kind to its collection; ok is false for unknown kinds.
func (m TargetModel) Collection() (string, bool) {
	c, ok := targetCollections[m]
	return c, ok
}

type Like struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	LikedBy     primitive.ObjectID `bson:"likedBy" json:"likedBy"`
	Target      primitive.ObjectID `bson:"target" json:"target"`
	TargetModel TargetModel        `bson:"targetModel" json:"targetModel"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Liker 点赞用户
type Liker struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	LikedBy   *UserSummary       `bson:"likedBy,omitempty" json:"likedBy,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"likedAt"`
}

// LikedVideo 用户点赞过的视频
type LikedVideo struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Video     *VideoDetail       `bson:"target,omitempty" json:"video,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"likedAt"`
}
