package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/config"
	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/metrics"
	"github.com/jaevor/go-nanoid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type CycleUsecase interface {
	// RunCycle: forecast → price → push по всем ключам. Ошибка одного ключа не прерывает цикл.
	RunCycle(ctx context.Context, req domain.CycleRequest) (*domain.CycleSummary, error)
}

type DefaultCycleUsecase struct {
	RoomTypeRepo   domain.RoomTypeRepository
	PriceRepo      domain.PriceHistoryRepository
	PricingUsecase PricingUsecase
	ChannelUsecase ChannelUsecase
	RunLogger      domain.CycleRunLogger
	Publisher      domain.EventPublisher
	Config         config.CycleConfig
	Clock          Clock
	Logger         *slog.Logger
	Metrics        *metrics.RMSMetrics

	newRunID func() string
}

func NewDefaultCycleUsecase(
	roomTypeRepo domain.RoomTypeRepository,
	priceRepo domain.PriceHistoryRepository,
	pricingUsecase PricingUsecase,
	channelUsecase ChannelUsecase,
	runLogger domain.CycleRunLogger,
	publisher domain.EventPublisher,
	cfg config.CycleConfig,
	clock Clock,
	logger *slog.Logger,
	rmsMetrics *metrics.RMSMetrics,
) (*DefaultCycleUsecase, error) {
	idGenerator, err := nanoid.Standard(21)
	if err != nil {
		return nil, err
	}
	if publisher == nil {
		publisher = domain.NopEventPublisher{}
	}
	return &DefaultCycleUsecase{
		RoomTypeRepo:   roomTypeRepo,
		PriceRepo:      priceRepo,
		PricingUsecase: pricingUsecase,
		ChannelUsecase: channelUsecase,
		RunLogger:      runLogger,
		Publisher:      publisher,
		Config:         cfg,
		Clock:          orSystem(clock),
		Logger:         orDefault(logger),
		Metrics:        rmsMetrics,
		newRunID:       idGenerator,
	}, nil
}

type cycleKey struct {
	roomType *domain.RoomType
	date     time.Time
	err      error
}

type keyOutcome struct {
	result   domain.KeyResult
	failures []domain.PushFailure
}

func (uc *DefaultCycleUsecase) RunCycle(ctx context.Context, req domain.CycleRequest) (*domain.CycleSummary, error) {
	summary := &domain.CycleSummary{
		RunID:     uc.newRunID(),
		Trigger:   req.Trigger,
		StartedAt: uc.Clock(),
	}
	if summary.Trigger == "" {
		summary.Trigger = "manual"
	}

	ctx, span := tracer.Start(ctx, "cycle.Run", trace.WithAttributes(
		attribute.String("run_id", summary.RunID),
		attribute.String("trigger", summary.Trigger),
	))
	defer span.End()

	keys, err := uc.resolveKeys(ctx, req, summary.StartedAt)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	channels, err := uc.ChannelUsecase.ActiveChannels(ctx, req.ChannelIDs)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.Logger.Info("Reprice cycle started",
		"run_id", summary.RunID,
		"trigger", summary.Trigger,
		"keys", len(keys),
		"channels", len(channels),
		"force", req.Force)

	// ключи, до которых не дошла очередь из-за отмены, остаются canceled
	outcomes := make([]keyOutcome, len(keys))
	for i, k := range keys {
		outcomes[i].result = domain.KeyResult{RoomTypeID: k.roomType.ID, Date: k.date, Status: domain.KeyCanceled, ErrKind: domain.KindCanceled}
	}

	workers := uc.Config.Workers
	if workers <= 0 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i, k := range keys {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			outcomes[i] = uc.processKey(ctx, k, channels, req.Force)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		summary.Results = append(summary.Results, o.result)
		summary.PushFailures = append(summary.PushFailures, o.failures...)
	}
	summary.Tally()
	summary.FinishedAt = uc.Clock()

	uc.finish(ctx, summary)
	return summary, nil
}

func (uc *DefaultCycleUsecase) resolveKeys(ctx context.Context, req domain.CycleRequest, now time.Time) ([]cycleKey, error) {
	dates := req.Range
	if dates == nil {
		horizon := uc.Config.HorizonDays
		if horizon <= 0 {
			horizon = 30
		}
		today := domain.DateOf(now)
		dates = &domain.DateRange{From: today, To: today.AddDate(0, 0, horizon-1)}
	}

	var roomTypes []*domain.RoomType
	var missing []string
	if len(req.RoomTypeIDs) == 0 {
		all, err := uc.RoomTypeRepo.GetRoomTypes(ctx)
		if err != nil {
			return nil, err
		}
		roomTypes = all
	} else {
		for _, id := range req.RoomTypeIDs {
			rt, err := uc.RoomTypeRepo.GetRoomTypeByID(ctx, id)
			if errors.Is(err, domain.ErrRoomTypeNotFound) {
				missing = append(missing, id)
				continue
			}
			if err != nil {
				return nil, err
			}
			roomTypes = append(roomTypes, rt)
		}
	}

	var keys []cycleKey
	for _, rt := range roomTypes {
		for _, day := range dates.Days() {
			keys = append(keys, cycleKey{roomType: rt, date: day})
		}
	}
	// неизвестный тип номера - ошибка конфигурации для каждого его ключа
	for _, id := range missing {
		for _, day := range dates.Days() {
			keys = append(keys, cycleKey{roomType: &domain.RoomType{ID: id}, date: day, err: domain.ErrRoomTypeNotFound})
		}
	}
	return keys, nil
}

func (uc *DefaultCycleUsecase) processKey(ctx context.Context, k cycleKey, channels []*domain.ChannelRule, force bool) keyOutcome {
	key := domain.Key{RoomTypeID: k.roomType.ID, Date: k.date}
	out := keyOutcome{result: domain.KeyResult{RoomTypeID: key.RoomTypeID, Date: key.Date}}

	fail := func(err error) keyOutcome {
		out.result.Status = domain.KeyFailed
		out.result.ErrKind = domain.ErrorKindOf(err)
		out.result.Err = err.Error()
		uc.Metrics.RecordError("cycle", string(out.result.ErrKind))
		uc.Logger.Warn("Cycle key failed", "key", key.String(), "kind", out.result.ErrKind, "error", err)
		return out
	}

	if k.err != nil {
		return fail(domain.NewConfigurationError(key, k.err))
	}

	current, err := uc.PriceRepo.GetCurrentPrice(ctx, key.RoomTypeID, key.Date)
	switch {
	case err == nil && current.Source == domain.SourceManualOverride && !force:
		out.result.Status = domain.KeySkipped
		out.result.PublishedRate = current.PublishedRate
		out.result.Source = current.Source
		return out
	case err != nil && !errors.Is(err, domain.ErrNoCurrentPrice):
		return fail(err)
	}

	ev, err := uc.PricingUsecase.Evaluate(ctx, k.roomType, key.Date, nil)
	if err != nil {
		return fail(err)
	}
	out.result.Status = domain.KeyPriced
	out.result.PublishedRate = ev.Price.PublishedRate
	out.result.Source = ev.Price.Source
	out.result.Staleness = ev.Competitor.Staleness
	out.result.Confidence = ev.Forecast.Confidence

	for _, rule := range channels {
		if ctx.Err() != nil {
			break
		}
		_, err := uc.ChannelUsecase.Push(ctx, rule.ChannelID, key.RoomTypeID, key.Date, ev.Price.PublishedRate)
		if err == nil {
			out.result.Pushes++
			continue
		}
		// неудачный пуш не откатывает цену
		failure := domain.PushFailure{Key: domain.Key{RoomTypeID: key.RoomTypeID, Date: key.Date, ChannelID: rule.ChannelID}, Message: err.Error()}
		var chErr *domain.SimulatedChannelFailure
		if errors.As(err, &chErr) {
			failure.StatusCode = chErr.StatusCode
			failure.Message = chErr.Message
		}
		out.failures = append(out.failures, failure)
	}
	return out
}

func (uc *DefaultCycleUsecase) finish(ctx context.Context, summary *domain.CycleSummary) {
	// запись итога не должна зависеть от отмены цикла
	ctx = context.WithoutCancel(ctx)

	uc.Metrics.RecordCycle(summary.Trigger, summary.FinishedAt.Sub(summary.StartedAt), map[string]int{
		string(domain.KeyPriced):   summary.Priced,
		string(domain.KeySkipped):  summary.Skipped,
		string(domain.KeyFailed):   summary.Failed,
		string(domain.KeyCanceled): summary.Canceled,
	})

	if uc.RunLogger != nil {
		if err := uc.RunLogger.LogCycleRun(ctx, summary); err != nil {
			uc.Logger.Error("Failed to log cycle run", "run_id", summary.RunID, "error", err)
		}
	}
	if err := uc.Publisher.PublishCycle(ctx, domain.CycleEvent{
		RunID:        summary.RunID,
		Keys:         len(summary.Results),
		Priced:       summary.Priced,
		Skipped:      summary.Skipped,
		Failed:       summary.Failed,
		PushFailures: len(summary.PushFailures),
		StartedAt:    summary.StartedAt,
		FinishedAt:   summary.FinishedAt,
	}); err != nil {
		uc.Logger.Warn("Failed to publish cycle event", "run_id", summary.RunID, "error", err)
	}

	uc.Logger.Info("Reprice cycle finished",
		"run_id", summary.RunID,
		"priced", summary.Priced,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"canceled", summary.Canceled,
		"push_failures", len(summary.PushFailures),
		"duration", summary.FinishedAt.Sub(summary.StartedAt))
}
