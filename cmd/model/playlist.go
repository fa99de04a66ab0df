package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Playlist struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Owner       primitive.ObjectID   `bson:"owner" json:"owner"`
	Videos      []primitive.ObjectID `bson:"videos" json:"videos"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (p *Playlist) OwnerID() primitive.ObjectID { return p.Owner }

// PlaylistWithVideos 用户的播放列表, 视频已展开
type PlaylistWithVideos struct {
	ID          primitive.ObjectID   `bson:"_id" json:"_id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Owner       primitive.ObjectID   `bson:"owner" json:"owner"`
	VideoIDs    []primitive.ObjectID `bson:"videos" json:"-"`
	Videos      []VideoSummary       `bson:"videoDocs" json:"videos"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// PlaylistDetail 播放列表详情, 视频与创建者均已展开
type PlaylistDetail struct {
	ID          primitive.ObjectID   `bson:"_id" json:"_id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Owner       *UserSummary         `bson:"owner,omitempty" json:"owner,omitempty"`
	VideoIDs    []primitive.ObjectID `bson:"videos" json:"-"`
	Videos      []VideoSummary       `bson:"videoDocs" json:"videos"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}
