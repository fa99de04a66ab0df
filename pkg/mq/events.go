package mq

import (
	"time"

	"github.com/google/uuid"
)

// RelationEvent 关系变更事件 (点赞 / 订阅)
type RelationEvent struct {
	EventID     string `json:"event_id"`
	Kind        string `json:"kind"`         // like | subscription
	Actor       string `json:"actor"`        // 操作用户ID
	Target      string `json:"target"`       // 被点赞对象或被订阅频道
	TargetModel string `json:"target_model"` // Video | Comment | Tweet, 订阅为空
	Related     bool   `json:"related"`      // 切换后的状态
	Timestamp   int64  `json:"timestamp"`
}

func NewRelationEvent(kind, actor, target, targetModel string, related bool) *RelationEvent {
	return &RelationEvent{
		EventID:     uuid.NewString(),
		Kind:        kind,
		Actor:       actor,
		Target:      target,
		TargetModel: targetModel,
		Related:     related,
		Timestamp:   time.Now().UnixMilli(),
	}
}

const (
	RelationKindLike         = "like"
	RelationKindSubscription = "subscription"
)

// 常量定义
const (
	RelationEventExchange = "relation_events"
	RelationEventQueue    = "relation_event_queue"
)
