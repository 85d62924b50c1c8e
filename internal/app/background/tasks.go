package background

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/usecase"
)

type MessageSubscriber interface {
	Subscribe(ctx context.Context, topic, groupID string) (<-chan domain.Message, error)
}

type BackgroundTasks struct {
	CycleUsecase  usecase.CycleUsecase
	IngestUsecase usecase.IngestUsecase
	Subscriber    MessageSubscriber
	CycleInterval time.Duration
	FeedTopic     string
	FeedGroupID   string
	Logger        *slog.Logger
}

func NewBackgroundTasks(
	cycleUC usecase.CycleUsecase,
	ingestUC usecase.IngestUsecase,
	subscriber MessageSubscriber,
	cycleInterval time.Duration,
	feedTopic, feedGroupID string,
	logger *slog.Logger,
) *BackgroundTasks {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackgroundTasks{
		CycleUsecase:  cycleUC,
		IngestUsecase: ingestUC,
		Subscriber:    subscriber,
		CycleInterval: cycleInterval,
		FeedTopic:     feedTopic,
		FeedGroupID:   feedGroupID,
		Logger:        logger,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	if bt.CycleInterval > 0 {
		go bt.startScheduledCycle(ctx)
	} else {
		bt.Logger.Info("Scheduled reprice cycle disabled")
	}
	if bt.Subscriber != nil && bt.FeedTopic != "" {
		go bt.startCompetitorFeed(ctx)
	}
}

func (bt *BackgroundTasks) startScheduledCycle(ctx context.Context) {
	ticker := time.NewTicker(bt.CycleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			summary, err := bt.CycleUsecase.RunCycle(ctx, domain.CycleRequest{Trigger: "schedule"})
			if err != nil {
				bt.Logger.Error("Scheduled cycle failed", "error", err)
				continue
			}
			if summary.Failed > 0 || len(summary.PushFailures) > 0 {
				bt.Logger.Warn("Scheduled cycle finished with errors",
					"run_id", summary.RunID,
					"failed", summary.Failed,
					"push_failures", len(summary.PushFailures))
			}
		}
	}
}

// competitorRateMessage - формат сообщений фида цен конкурентов.
type competitorRateMessage struct {
	CompetitorID string    `json:"competitor_id"`
	RoomLabel    string    `json:"room_label"`
	Date         string    `json:"date"`
	Rate         float64   `json:"rate"`
	Available    *bool     `json:"available,omitempty"`
	ObservedAt   time.Time `json:"observed_at"`
}

func decodeCompetitorRates(value []byte) ([]*domain.CompetitorRate, error) {
	var batch []competitorRateMessage
	if len(value) > 0 && value[0] == '[' {
		if err := json.Unmarshal(value, &batch); err != nil {
			return nil, err
		}
	} else {
		var single competitorRateMessage
		if err := json.Unmarshal(value, &single); err != nil {
			return nil, err
		}
		batch = append(batch, single)
	}

	rates := make([]*domain.CompetitorRate, 0, len(batch))
	for _, m := range batch {
		date, err := domain.ParseDate(m.Date)
		if err != nil {
			return nil, err
		}
		available := true
		if m.Available != nil {
			available = *m.Available
		}
		rates = append(rates, &domain.CompetitorRate{
			CompetitorID: m.CompetitorID,
			RoomLabel:    m.RoomLabel,
			Date:         date,
			Rate:         m.Rate,
			Available:    available,
			ObservedAt:   m.ObservedAt.UTC(),
		})
	}
	return rates, nil
}

func (bt *BackgroundTasks) startCompetitorFeed(ctx context.Context) {
	msgs, err := bt.Subscriber.Subscribe(ctx, bt.FeedTopic, bt.FeedGroupID)
	if err != nil {
		bt.Logger.Error("Competitor feed subscribe failed", "topic", bt.FeedTopic, "error", err)
		return
	}
	bt.consumeCompetitorFeed(ctx, msgs)
}

func (bt *BackgroundTasks) consumeCompetitorFeed(ctx context.Context, msgs <-chan domain.Message) {
	for msg := range msgs {
		rates, err := decodeCompetitorRates(msg.Value)
		if err != nil {
			bt.Logger.Warn("Competitor feed message dropped", "key", string(msg.Key), "error", err)
			continue
		}
		if _, err := bt.IngestUsecase.IngestCompetitorRates(ctx, rates); err != nil {
			bt.Logger.Error("Competitor feed ingest failed", "error", err)
		}
	}
}
