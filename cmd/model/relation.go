package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription 订阅关系, subscriber 订阅 channel
type Subscription struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Subscriber primitive.ObjectID `bson:"subscriber" json:"subscriber"`
	Channel    primitive.ObjectID `bson:"channel" json:"channel"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Subscriber 频道的订阅者
type Subscriber struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Subscriber *UserSummary       `bson:"subscriber,omitempty" json:"subscriber,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"subscribedAt"`
}

// SubscribedChannel 用户订阅的频道
type SubscribedChannel struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Channel   *UserSummary       `bson:"channel,omitempty" json:"channel,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"subscribedAt"`
}
