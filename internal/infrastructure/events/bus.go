package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-rms-service/internal/config"
	"github.com/LavaJover/shvark-rms-service/internal/domain"
)

// Bus сериализует события RMS в JSON и отдаёт их транспорту (kafka или amqp).
type Bus struct {
	Port   domain.PublisherPort
	Topics config.EventsConfig
	Logger *slog.Logger
}

func NewBus(port domain.PublisherPort, topics config.EventsConfig, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{Port: port, Topics: topics, Logger: logger}
}

func (b *Bus) PublishPrice(ctx context.Context, event domain.PriceEvent) error {
	return b.publish(ctx, b.Topics.PriceTopic, event.RoomTypeID, event)
}

func (b *Bus) PublishPush(ctx context.Context, event domain.PushEvent) error {
	return b.publish(ctx, b.Topics.PushTopic, event.RoomTypeID, event)
}

func (b *Bus) PublishCycle(ctx context.Context, event domain.CycleEvent) error {
	return b.publish(ctx, b.Topics.CycleTopic, event.RunID, event)
}

func (b *Bus) publish(ctx context.Context, topic, key string, event any) error {
	if topic == "" {
		return fmt.Errorf("events: empty topic for %T", event)
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal %T: %w", event, err)
	}
	if err := b.Port.Publish(ctx, topic, domain.Message{Key: []byte(key), Value: value}); err != nil {
		return err
	}
	b.Logger.Debug("Event published", "topic", topic, "key", key)
	return nil
}

func (b *Bus) Close() error {
	return b.Port.Close()
}
