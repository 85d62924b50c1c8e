package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-rms-service/internal/usecase/pricing"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type PricingUsecase interface {
	// Price пересчитывает ставку. overrides != nil означает dry-run с source=simulation.
	Price(ctx context.Context, roomTypeID string, date time.Time, overrides *domain.SimulationOverrides) (*domain.PriceHistory, error)
	Evaluate(ctx context.Context, rt *domain.RoomType, date time.Time, overrides *domain.SimulationOverrides) (*domain.Evaluation, error)
	OverridePrice(ctx context.Context, input OverridePriceInput) (*domain.PriceHistory, error)

	GetCurrentPrice(ctx context.Context, roomTypeID string, date time.Time) (*domain.PriceHistory, error)
	GetCurrentPrices(ctx context.Context, roomTypeID string, dates domain.DateRange) ([]*domain.PriceHistory, error)
	GetPriceHistory(ctx context.Context, roomTypeID string, date time.Time) ([]*domain.PriceHistory, error)
	GetPricingSummary(ctx context.Context, roomTypeID string, dates domain.DateRange) (*domain.PriceSummary, error)
}

type OverridePriceInput struct {
	RoomTypeID string
	Date       time.Time
	Rate       float64
	Actor      string
	Reason     string
}

type DefaultPricingUsecase struct {
	RoomTypeRepo      domain.RoomTypeRepository
	PriceRepo         domain.PriceHistoryRepository
	ForecastUsecase   ForecastUsecase
	CompetitorUsecase CompetitorUsecase
	Resolver          *pricing.Resolver
	Publisher         domain.EventPublisher
	Clock             Clock
	Logger            *slog.Logger
	Metrics           *metrics.RMSMetrics
}

func NewDefaultPricingUsecase(
	roomTypeRepo domain.RoomTypeRepository,
	priceRepo domain.PriceHistoryRepository,
	forecastUsecase ForecastUsecase,
	competitorUsecase CompetitorUsecase,
	resolver *pricing.Resolver,
	publisher domain.EventPublisher,
	clock Clock,
	logger *slog.Logger,
	rmsMetrics *metrics.RMSMetrics,
) *DefaultPricingUsecase {
	if publisher == nil {
		publisher = domain.NopEventPublisher{}
	}
	return &DefaultPricingUsecase{
		RoomTypeRepo:      roomTypeRepo,
		PriceRepo:         priceRepo,
		ForecastUsecase:   forecastUsecase,
		CompetitorUsecase: competitorUsecase,
		Resolver:          resolver,
		Publisher:         publisher,
		Clock:             orSystem(clock),
		Logger:            orDefault(logger),
		Metrics:           rmsMetrics,
	}
}

func (uc *DefaultPricingUsecase) Price(ctx context.Context, roomTypeID string, date time.Time, overrides *domain.SimulationOverrides) (*domain.PriceHistory, error) {
	rt, err := uc.RoomTypeRepo.GetRoomTypeByID(ctx, roomTypeID)
	if err != nil {
		return nil, err
	}
	ev, err := uc.Evaluate(ctx, rt, date, overrides)
	if err != nil {
		return nil, err
	}
	return ev.Price, nil
}

// Evaluate прогоняет forecast → competitor → формулу. Без overrides строка пишется в историю.
func (uc *DefaultPricingUsecase) Evaluate(ctx context.Context, rt *domain.RoomType, date time.Time, overrides *domain.SimulationOverrides) (*domain.Evaluation, error) {
	live := overrides == nil
	ctx, span := tracer.Start(ctx, "pricing.Evaluate", trace.WithAttributes(
		attribute.String("room_type_id", rt.ID),
		attribute.String("date", domain.DateOf(date).Format(domain.DateLayout)),
		attribute.Bool("dry_run", !live),
	))
	defer span.End()

	now := uc.Clock()
	if !live && overrides.AsOf != nil {
		now = *overrides.AsOf
	}
	target := domain.DateOf(date)

	fc, err := uc.ForecastUsecase.Evaluate(ctx, rt, target, now, overrides, live)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	idx, err := uc.CompetitorUsecase.Evaluate(ctx, rt, target, now)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	policy := uc.Resolver.Policy(rt)
	if !live && overrides.Coefficients != nil {
		policy.Coefficients = *overrides.Coefficients
	}

	quote, err := pricing.Compute(pricing.Inputs{
		RoomTypeID:       rt.ID,
		Date:             target,
		Now:              now,
		BaseRate:         rt.BaseRate,
		ForecastedDemand: fc.ForecastedDemand,
		CompetitorIndex:  overrides.ShockIndex(idx.Index),
		EventMultiplier:  fc.EventUplift,
		Policy:           policy,
	})
	if err != nil {
		span.RecordError(err)
		uc.Metrics.RecordError("price", string(domain.ErrorKindOf(err)))
		return nil, err
	}

	row := &domain.PriceHistory{
		ID:            uuid.New().String(),
		RoomTypeID:    rt.ID,
		Date:          target,
		PublishedRate: quote.PublishedRate,
		Floor:         quote.Floor,
		Ceiling:       quote.Ceiling,
		Coefficients:  quote.Coefficients,
		Components:    quote.Components,
		Source:        domain.SourceEngine,
		Actor:         "engine",
		CreatedAt:     now,
	}
	ev := &domain.Evaluation{RoomType: rt, Forecast: fc, Competitor: idx, Price: row}

	if !live {
		row.Source = domain.SourceSimulation
		row.Actor = "simulation"
		return ev, nil
	}

	if err := uc.commit(ctx, row); err != nil {
		span.RecordError(err)
		return nil, err
	}
	uc.Logger.Info("Rate published",
		"room_type_id", rt.ID,
		"date", target.Format(domain.DateLayout),
		"rate", row.PublishedRate,
		"raw", row.Components.RawRate,
		"clamped", row.Components.Clamped,
		"staleness", idx.Staleness,
		"confidence", fc.Confidence)
	return ev, nil
}

func (uc *DefaultPricingUsecase) OverridePrice(ctx context.Context, input OverridePriceInput) (*domain.PriceHistory, error) {
	rt, err := uc.RoomTypeRepo.GetRoomTypeByID(ctx, input.RoomTypeID)
	if err != nil {
		return nil, err
	}
	policy := uc.Resolver.Policy(rt)
	rate, err := pricing.ClampOverride(rt.ID, input.Date, input.Rate, policy)
	if err != nil {
		return nil, err
	}

	actor := input.Actor
	if actor == "" {
		actor = "manual"
	}
	row := &domain.PriceHistory{
		ID:            uuid.New().String(),
		RoomTypeID:    rt.ID,
		Date:          domain.DateOf(input.Date),
		PublishedRate: rate,
		Floor:         policy.Floor,
		Ceiling:       policy.Ceiling,
		Coefficients:  policy.Coefficients,
		Components:    domain.PriceComponents{BaseRate: rt.BaseRate, RawRate: input.Rate, Clamped: rate != input.Rate},
		Source:        domain.SourceManualOverride,
		Actor:         actor,
		Reason:        input.Reason,
		CreatedAt:     uc.Clock(),
	}
	if err := uc.commit(ctx, row); err != nil {
		return nil, err
	}
	uc.Logger.Info("Manual rate override",
		"room_type_id", rt.ID,
		"date", row.Date.Format(domain.DateLayout),
		"requested", input.Rate,
		"rate", rate,
		"actor", actor,
		"reason", input.Reason)
	return row, nil
}

func (uc *DefaultPricingUsecase) commit(ctx context.Context, row *domain.PriceHistory) error {
	if !row.Source.Committed() {
		return fmt.Errorf("refusing to commit %s row", row.Source)
	}
	if err := uc.PriceRepo.AppendPrice(ctx, row); err != nil {
		return fmt.Errorf("append price %s/%s: %w", row.RoomTypeID, row.Date.Format(domain.DateLayout), err)
	}
	uc.Metrics.RecordRate(row.RoomTypeID, string(row.Source), row.PublishedRate, row.Components.RawRate, row.Floor, row.Ceiling)

	if err := uc.Publisher.PublishPrice(ctx, domain.PriceEvent{
		RoomTypeID:    row.RoomTypeID,
		Date:          row.Date.Format(domain.DateLayout),
		PublishedRate: row.PublishedRate,
		Floor:         row.Floor,
		Ceiling:       row.Ceiling,
		Source:        row.Source,
		CreatedAt:     row.CreatedAt,
	}); err != nil {
		uc.Logger.Warn("Failed to publish price event", "room_type_id", row.RoomTypeID, "error", err)
	}
	return nil
}

func (uc *DefaultPricingUsecase) GetCurrentPrice(ctx context.Context, roomTypeID string, date time.Time) (*domain.PriceHistory, error) {
	return uc.PriceRepo.GetCurrentPrice(ctx, roomTypeID, domain.DateOf(date))
}

func (uc *DefaultPricingUsecase) GetCurrentPrices(ctx context.Context, roomTypeID string, dates domain.DateRange) ([]*domain.PriceHistory, error) {
	return uc.PriceRepo.GetCurrentPrices(ctx, roomTypeID, dates.From, dates.To)
}

func (uc *DefaultPricingUsecase) GetPriceHistory(ctx context.Context, roomTypeID string, date time.Time) ([]*domain.PriceHistory, error) {
	return uc.PriceRepo.GetPriceHistory(ctx, roomTypeID, domain.DateOf(date))
}

func (uc *DefaultPricingUsecase) GetPricingSummary(ctx context.Context, roomTypeID string, dates domain.DateRange) (*domain.PriceSummary, error) {
	rt, err := uc.RoomTypeRepo.GetRoomTypeByID(ctx, roomTypeID)
	if err != nil {
		return nil, err
	}
	rows, err := uc.PriceRepo.GetCurrentPrices(ctx, roomTypeID, dates.From, dates.To)
	if err != nil {
		return nil, err
	}
	return pricing.Summarize(rt, dates.From, dates.To, rows), nil
}
