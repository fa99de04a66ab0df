package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/rabbitmq/amqp091-go"
)

type Consumer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func NewConsumer(rabbitmqURL string) (*Consumer, error) {
	conn, err := amqp091.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// 设置QoS，限制未确认消息数量
	err = ch.Qos(
		10,    // prefetch count
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to setup topology: %w", err)
	}

	return &Consumer{conn: conn, channel: ch}, nil
}

type disposition int

const (
	ack disposition = iota
	drop
	requeue
)

// dispatch 解析并处理一条消息, 返回确认方式
func dispatch(ctx context.Context, body []byte, handler RelationEventHandler) disposition {
	var event RelationEvent
	if err := json.Unmarshal(body, &event); err != nil {
		hlog.CtxErrorf(ctx, "Failed to unmarshal relation event: %v", err)
		return drop
	}
	if err := handler.HandleRelationEvent(ctx, &event); err != nil {
		hlog.CtxErrorf(ctx, "Failed to handle relation event %s: %v", event.EventID, err)
		return requeue
	}
	return ack
}

func (c *Consumer) ConsumeRelationEvents(ctx context.Context, handler RelationEventHandler) error {
	msgs, err := c.channel.Consume(
		RelationEventQueue,
		"",    // consumer
		false, // auto-ack (设置为false，手动确认)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				hlog.Info("Relation event consumer context cancelled")
				return
			case d, ok := <-msgs:
				if !ok {
					hlog.Info("Relation event consumer channel closed")
					return
				}
				switch dispatch(ctx, d.Body, handler) {
				case ack:
					d.Ack(false)
				case drop:
					d.Nack(false, false) // 拒绝消息，不重新入队
				case requeue:
					d.Nack(false, true) // 拒绝消息，重新入队
				}
			}
		}
	}()

	return nil
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
