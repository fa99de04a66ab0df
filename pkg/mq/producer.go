package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/rabbitmq/amqp091-go"
)

type Producer struct {
	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func NewProducer(rabbitmqURL string) (*Producer, error) {
	conn, err := amqp091.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	producer := &Producer{
		conn:    conn,
		channel: ch,
	}

	// 声明exchange和queue
	if err := setupTopology(ch); err != nil {
		producer.Close()
		return nil, fmt.Errorf("failed to setup topology: %w", err)
	}

	return producer, nil
}

// setupTopology 声明 topic 交换机, 队列按 kind 路由键绑定
func setupTopology(ch *amqp091.Channel) error {
	err := ch.ExchangeDeclare(
		RelationEventExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare relation event exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		RelationEventQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare relation event queue: %w", err)
	}

	err = ch.QueueBind(
		RelationEventQueue,
		"relation.#",
		RelationEventExchange,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to bind relation event queue: %w", err)
	}
	return nil
}

func routingKey(event *RelationEvent) string {
	return "relation." + event.Kind
}

// PublishRelationEvent amqp091 channel 不是并发安全的, 发布时加锁
func (p *Producer) PublishRelationEvent(ctx context.Context, event *RelationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal relation event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(
		ctx,
		RelationEventExchange,
		routingKey(event),
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    event.EventID,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish relation event: %w", err)
	}

	hlog.CtxDebugf(ctx, "Published relation event: %+v", event)
	return nil
}

func (p *Producer) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
