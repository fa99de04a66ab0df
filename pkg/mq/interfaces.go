package mq

import "context"

// RelationPublisher 关系事件生产者接口
type RelationPublisher interface {
	PublishRelationEvent(ctx context.Context, event *RelationEvent) error
}

// RelationEventHandler 关系事件消费者回调
type RelationEventHandler interface {
	HandleRelationEvent(ctx context.Context, event *RelationEvent) error
}

// 确保Producer实现RelationPublisher接口
var _ RelationPublisher = (*Producer)(nil)
