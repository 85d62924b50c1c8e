package publisher

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type DefaultKafkaSubscriber struct {
	brokers []string
	logger  *slog.Logger

	newReader  func(topic, groupID string) messageReader
	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewDefaultKafkaSubscriber(brokers []string, logger *slog.Logger) *DefaultKafkaSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	k := &DefaultKafkaSubscriber{
		brokers:    brokers,
		logger:     logger,
		minBackoff: 500 * time.Millisecond,
		maxBackoff: 30 * time.Second,
	}
	k.newReader = func(topic, groupID string) messageReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers: k.brokers,
			Topic:   topic,
			GroupID: groupID,
		})
	}
	return k
}

// Subscribe читает topic в группе groupID. Ошибки чтения логируются, чтение
// повторяется с экспоненциальной паузой; канал закрывается только при отмене ctx.
func (k *DefaultKafkaSubscriber) Subscribe(ctx context.Context, topic, groupID string) (<-chan domain.Message, error) {
	reader := k.newReader(topic, groupID)
	out := make(chan domain.Message)
	go func() {
		defer close(out)
		defer reader.Close()

		backoff := k.minBackoff
		for {
			m, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				k.logger.Error("Kafka read failed, retrying",
					"topic", topic,
					"backoff", backoff,
					"error", err)
				select {
				case <-time.After(backoff):
				case <-ctx.Done():
					return
				}
				backoff = min(backoff*2, k.maxBackoff)
				continue
			}
			backoff = k.minBackoff

			select {
			case out <- domain.Message{Key: m.Key, Value: m.Value}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
