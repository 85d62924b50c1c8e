package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher публикует события в durable-очереди RabbitMQ; имя topic совпадает с именем очереди.
type Publisher struct {
	conn *amqp.Connection

	mu       sync.Mutex
	ch       *amqp.Channel
	declared map[string]bool
}

func NewPublisher(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, declared: make(map[string]bool)}, nil
}

func (p *Publisher) Publish(ctx context.Context, topic string, msgs ...domain.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared[topic] {
		if _, err := p.ch.QueueDeclare(
			topic,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,
		); err != nil {
			return fmt.Errorf("rabbitmq: declare %s: %w", topic, err)
		}
		p.declared[topic] = true
	}

	for _, m := range msgs {
		pub := amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			MessageId:    string(m.Key),
			Body:         m.Value,
		}
		if err := p.ch.PublishWithContext(ctx, "", topic, false, false, pub); err != nil {
			return fmt.Errorf("rabbitmq: publish to %s: %w", topic, err)
		}
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil {
		_ = p.conn.Close()
		return err
	}
	return p.conn.Close()
}
