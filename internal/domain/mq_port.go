package domain

import (
	"context"
	"time"
)

type Message struct {
	Key   []byte
	Value []byte
}

type PublisherPort interface {
	Publish(ctx context.Context, topic string, msgs ...Message) error
	Close() error
}

type PriceEvent struct {
	RoomTypeID    string      `json:"room_type_id"`
	Date          string      `json:"date"`
	PublishedRate float64     `json:"published_rate"`
	Floor         float64     `json:"floor"`
	Ceiling       float64     `json:"ceiling"`
	Source        PriceSource `json:"source"`
	CreatedAt     time.Time   `json:"created_at"`
}

type PushEvent struct {
	ChannelID         string     `json:"channel_id"`
	RoomTypeID        string     `json:"room_type_id"`
	Date              string     `json:"date"`
	PublishedRate     float64    `json:"published_rate"`
	GuestDisplayPrice float64    `json:"guest_display_price"`
	HotelNetPrice     float64    `json:"hotel_net_price"`
	Status            PushStatus `json:"status"`
	StatusCode        int        `json:"status_code"`
	PushedAt          time.Time  `json:"pushed_at"`
}

type CycleEvent struct {
	RunID        string    `json:"run_id"`
	Keys         int       `json:"keys"`
	Priced       int       `json:"priced"`
	Skipped      int       `json:"skipped"`
	Failed       int       `json:"failed"`
	PushFailures int       `json:"push_failures"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// EventPublisher - исходящие события RMS. Ошибки публикации не откатывают состояние.
type EventPublisher interface {
	PublishPrice(ctx context.Context, event PriceEvent) error
	PublishPush(ctx context.Context, event PushEvent) error
	PublishCycle(ctx context.Context, event CycleEvent) error
}

type NopEventPublisher struct{}

func (NopEventPublisher) PublishPrice(context.Context, PriceEvent) error { return nil }
func (NopEventPublisher) PublishPush(context.Context, PushEvent) error   { return nil }
func (NopEventPublisher) PublishCycle(context.Context, CycleEvent) error { return nil }
