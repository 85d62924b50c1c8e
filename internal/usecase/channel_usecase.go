package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-rms-service/internal/usecase/channel"
	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ChannelUsecase interface {
	Push(ctx context.Context, channelID, roomTypeID string, date time.Time, publishedRate float64) (*domain.PushLogEntry, error)
	CheckParity(ctx context.Context, roomTypeID string, date time.Time, tolerance float64) (*domain.ParityFlag, error)
	// Preview считает цены каналов без пуша и без записи в журнал.
	Preview(ctx context.Context, roomTypeID string, date time.Time, publishedRate float64, channelIDs []string) ([]*domain.PushLogEntry, error)

	ActiveChannels(ctx context.Context, channelIDs []string) ([]*domain.ChannelRule, error)
	GetPushLog(ctx context.Context, filter domain.PushLogFilter) ([]*domain.PushLogEntry, error)
	GetPushStatistics(ctx context.Context, days int) (*domain.PushStats, error)
}

type DefaultChannelUsecase struct {
	ChannelRepo domain.ChannelRuleRepository
	PushRepo    domain.PushLogRepository
	PriceRepo   domain.PriceHistoryRepository
	Injector    channel.FailureInjector
	Publisher   domain.EventPublisher
	Clock       Clock
	Logger      *slog.Logger
	Metrics     *metrics.RMSMetrics

	newReference func() string
}

func NewDefaultChannelUsecase(
	channelRepo domain.ChannelRuleRepository,
	pushRepo domain.PushLogRepository,
	priceRepo domain.PriceHistoryRepository,
	injector channel.FailureInjector,
	publisher domain.EventPublisher,
	clock Clock,
	logger *slog.Logger,
	rmsMetrics *metrics.RMSMetrics,
) (*DefaultChannelUsecase, error) {
	idGenerator, err := nanoid.Standard(12)
	if err != nil {
		return nil, err
	}
	if injector == nil {
		injector = channel.NeverFail{}
	}
	if publisher == nil {
		publisher = domain.NopEventPublisher{}
	}
	return &DefaultChannelUsecase{
		ChannelRepo:  channelRepo,
		PushRepo:     pushRepo,
		PriceRepo:    priceRepo,
		Injector:     injector,
		Publisher:    publisher,
		Clock:        orSystem(clock),
		Logger:       orDefault(logger),
		Metrics:      rmsMetrics,
		newReference: idGenerator,
	}, nil
}

func (uc *DefaultChannelUsecase) Push(ctx context.Context, channelID, roomTypeID string, date time.Time, publishedRate float64) (*domain.PushLogEntry, error) {
	key := domain.Key{RoomTypeID: roomTypeID, Date: domain.DateOf(date), ChannelID: channelID}
	ctx, span := tracer.Start(ctx, "channel.Push", trace.WithAttributes(
		attribute.String("channel_id", channelID),
		attribute.String("room_type_id", roomTypeID),
	))
	defer span.End()

	rule, err := uc.ChannelRepo.GetChannelRule(ctx, channelID)
	if err != nil {
		return nil, domain.NewConfigurationError(key, err)
	}
	price, err := channel.Quote(publishedRate, rule)
	if err != nil {
		return nil, domain.NewConfigurationError(key, err)
	}

	entry := &domain.PushLogEntry{
		ID:                 uuid.New().String(),
		ChannelID:          rule.ChannelID,
		RoomTypeID:         roomTypeID,
		Date:               key.Date,
		PublishedRate:      price.PublishedRate,
		GuestDisplayPrice:  price.GuestDisplayPrice,
		HotelNetPrice:      price.HotelNetPrice,
		CommissionPct:      rule.CommissionPct,
		LoyaltyDiscountPct: rule.LoyaltyDiscountPct,
		Status:             domain.PushSuccess,
		StatusCode:         200,
		Message:            fmt.Sprintf("Rate updated successfully via %s", rule.DisplayName),
		Reference:          uc.newReference(),
		PushedAt:           uc.Clock(),
	}

	failure, failed := uc.Injector.Inject(key)
	if failed {
		entry.Status = domain.PushFailed
		entry.StatusCode = failure.StatusCode
		entry.Message = failure.Message
		entry.Reference = ""
	}

	if err := uc.PushRepo.AppendPush(ctx, entry); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("append push %s: %w", key, err)
	}
	uc.Metrics.RecordPush(entry.ChannelID, roomTypeID, string(entry.Status), strconv.Itoa(entry.StatusCode), entry.GuestDisplayPrice)
	if err := uc.Publisher.PublishPush(ctx, domain.PushEvent{
		ChannelID:         entry.ChannelID,
		RoomTypeID:        entry.RoomTypeID,
		Date:              entry.Date.Format(domain.DateLayout),
		PublishedRate:     entry.PublishedRate,
		GuestDisplayPrice: entry.GuestDisplayPrice,
		HotelNetPrice:     entry.HotelNetPrice,
		Status:            entry.Status,
		StatusCode:        entry.StatusCode,
		PushedAt:          entry.PushedAt,
	}); err != nil {
		uc.Logger.Warn("Failed to publish push event", "channel_id", channelID, "error", err)
	}

	if failed {
		pushErr := &domain.SimulatedChannelFailure{Key: key, StatusCode: failure.StatusCode, Message: failure.Message, EntryID: entry.ID}
		span.RecordError(pushErr)
		uc.Logger.Warn("Channel push failed",
			"key", key.String(),
			"status_code", failure.StatusCode,
			"message", failure.Message,
			"retryable", pushErr.Retryable())
		return entry, pushErr
	}
	return entry, nil
}

func (uc *DefaultChannelUsecase) CheckParity(ctx context.Context, roomTypeID string, date time.Time, tolerance float64) (*domain.ParityFlag, error) {
	current, err := uc.PriceRepo.GetCurrentPrice(ctx, roomTypeID, domain.DateOf(date))
	if err != nil {
		return nil, err
	}
	latest, err := uc.PushRepo.GetLatestPushes(ctx, roomTypeID, domain.DateOf(date), domain.PushSuccess)
	if err != nil {
		return nil, err
	}

	rules, err := uc.ChannelRepo.GetChannelRules(ctx)
	if err != nil {
		return nil, err
	}

	flag := channel.CheckParity(roomTypeID, date, current.PublishedRate, tolerance, latest, rules)
	for _, v := range flag.Channels {
		uc.Metrics.RecordParityViolation(v.ChannelID)
	}
	if flag.Violated() {
		uc.Logger.Warn("Rate parity violated",
			"room_type_id", roomTypeID,
			"date", flag.Date.Format(domain.DateLayout),
			"direct_price", flag.DirectPrice,
			"violations", len(flag.Channels))
	}
	return flag, nil
}

func (uc *DefaultChannelUsecase) Preview(ctx context.Context, roomTypeID string, date time.Time, publishedRate float64, channelIDs []string) ([]*domain.PushLogEntry, error) {
	rules, err := uc.ActiveChannels(ctx, channelIDs)
	if err != nil {
		return nil, err
	}
	prices, errs := channel.QuoteAll(publishedRate, rules)
	if len(errs) > 0 {
		return nil, domain.NewConfigurationError(domain.Key{RoomTypeID: roomTypeID, Date: domain.DateOf(date)}, errors.Join(errs...))
	}
	out := make([]*domain.PushLogEntry, 0, len(prices))
	for _, p := range prices {
		out = append(out, &domain.PushLogEntry{
			ChannelID:          p.ChannelID,
			RoomTypeID:         roomTypeID,
			Date:               domain.DateOf(date),
			PublishedRate:      p.PublishedRate,
			GuestDisplayPrice:  p.GuestDisplayPrice,
			HotelNetPrice:      p.HotelNetPrice,
			CommissionPct:      p.CommissionPct,
			LoyaltyDiscountPct: p.LoyaltyDiscountPct,
			Status:             domain.PushSimulated,
		})
	}
	return out, nil
}

// ActiveChannels возвращает активные каналы; пустой список означает все.
func (uc *DefaultChannelUsecase) ActiveChannels(ctx context.Context, channelIDs []string) ([]*domain.ChannelRule, error) {
	if len(channelIDs) > 0 {
		rules := make([]*domain.ChannelRule, 0, len(channelIDs))
		for _, id := range channelIDs {
			rule, err := uc.ChannelRepo.GetChannelRule(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("channel %s: %w", id, err)
			}
			rules = append(rules, rule)
		}
		return rules, nil
	}
	all, err := uc.ChannelRepo.GetChannelRules(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]*domain.ChannelRule, 0, len(all))
	for _, rule := range all {
		if rule.Active {
			active = append(active, rule)
		}
	}
	return active, nil
}

func (uc *DefaultChannelUsecase) GetPushLog(ctx context.Context, filter domain.PushLogFilter) ([]*domain.PushLogEntry, error) {
	return uc.PushRepo.GetPushLog(ctx, filter)
}

func (uc *DefaultChannelUsecase) GetPushStatistics(ctx context.Context, days int) (*domain.PushStats, error) {
	if days <= 0 {
		days = 7
	}
	since := uc.Clock().AddDate(0, 0, -days)
	entries, err := uc.PushRepo.GetPushesSince(ctx, since)
	if err != nil {
		return nil, err
	}
	return channel.Statistics(since, entries), nil
}
