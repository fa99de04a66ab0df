package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Username           string               `bson:"username" json:"username"`
	Email              string               `bson:"email" json:"email"`
	FullName           string               `bson:"fullName" json:"fullName"`
	Avatar             string               `bson:"avatar" json:"avatar"`
	AvatarPublicID     string               `bson:"avatarPublicId,omitempty" json:"-"`
	CoverImage         string               `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	CoverImagePublicID string               `bson:"coverImagePublicId,omitempty" json:"-"`
	Password           string               `bson:"password" json:"-"`
	WatchHistory       []primitive.ObjectID `bson:"watchHistory" json:"watchHistory"`
	CreatedAt          time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// UserSummary is the public face of a user embedded in joined rows.
type UserSummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Username string             `bson:"username" json:"username"`
	FullName string             `bson:"fullName" json:"fullName"`
	Avatar   string             `bson:"avatar" json:"avatar"`
}

// ChannelProfile 频道主页
type ChannelProfile struct {
	ID                        primitive.ObjectID `bson:"_id" json:"_id"`
	Username                  string             `bson:"username" json:"username"`
	FullName                  string             `bson:"fullName" json:"fullName"`
	Email                     string             `bson:"email" json:"email"`
	Avatar                    string             `bson:"avatar" json:"avatar"`
	CoverImage                string             `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	SubscribersCount          int64              `bson:"subscribersCount" json:"subscribersCount"`
	ChannelsSubscribedToCount int64              `bson:"channelsSubscribedToCount" json:"channelsSubscribedToCount"`
	IsSubscribed              bool               `bson:"isSubscribed" json:"isSubscribed"`
}

// HistoryOwner is exactly the owner projection shown in watch history.
type HistoryOwner struct {
	FullName string `bson:"fullName" json:"fullName"`
	Username string `bson:"username" json:"username"`
	Avatar   string `bson:"avatar" json:"avatar"`
}

// WatchedVideo 观看历史条目
type WatchedVideo struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	VideoFile   string             `bson:"videoFile" json:"videoFile"`
	Thumbnail   string             `bson:"thumbnail" json:"thumbnail"`
	Duration    float64            `bson:"duration" json:"duration"`
	Views       int64              `bson:"views" json:"views"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	Owner       *HistoryOwner      `bson:"owner,omitempty" json:"owner,omitempty"`
}
