package usecase

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/metrics"
)

type SimulationUsecase interface {
	// Simulate лениво отдаёт по одному дню. Ничего не сохраняется.
	Simulate(ctx context.Context, roomTypeID string, dates domain.DateRange, overrides domain.SimulationOverrides) iter.Seq2[*domain.SimulationStep, error]
}

type DefaultSimulationUsecase struct {
	RoomTypeRepo   domain.RoomTypeRepository
	PricingUsecase PricingUsecase
	ChannelUsecase ChannelUsecase
	Clock          Clock
	Logger         *slog.Logger
	Metrics        *metrics.RMSMetrics
}

func NewDefaultSimulationUsecase(
	roomTypeRepo domain.RoomTypeRepository,
	pricingUsecase PricingUsecase,
	channelUsecase ChannelUsecase,
	clock Clock,
	logger *slog.Logger,
	rmsMetrics *metrics.RMSMetrics,
) *DefaultSimulationUsecase {
	return &DefaultSimulationUsecase{
		RoomTypeRepo:   roomTypeRepo,
		PricingUsecase: pricingUsecase,
		ChannelUsecase: channelUsecase,
		Clock:          orSystem(clock),
		Logger:         orDefault(logger),
		Metrics:        rmsMetrics,
	}
}

func (uc *DefaultSimulationUsecase) Simulate(
	ctx context.Context,
	roomTypeID string,
	dates domain.DateRange,
	overrides domain.SimulationOverrides,
) iter.Seq2[*domain.SimulationStep, error] {
	// момент симуляции фиксируется один раз на все проходы последовательности
	if overrides.AsOf == nil {
		asOf := uc.Clock()
		overrides.AsOf = &asOf
	}

	return func(yield func(*domain.SimulationStep, error) bool) {
		rt, err := uc.RoomTypeRepo.GetRoomTypeByID(ctx, roomTypeID)
		if err != nil {
			yield(nil, err)
			return
		}

		from, to := domain.DateOf(dates.From), domain.DateOf(dates.To)
		for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			step, err := uc.step(ctx, rt, day, &overrides)
			if err != nil {
				uc.Logger.Debug("Simulation step failed", "room_type_id", rt.ID, "date", day.Format(domain.DateLayout), "error", err)
			} else {
				uc.Metrics.RecordSimulationStep(rt.ID)
			}
			if !yield(step, err) {
				return
			}
		}
	}
}

func (uc *DefaultSimulationUsecase) step(ctx context.Context, rt *domain.RoomType, day time.Time, overrides *domain.SimulationOverrides) (*domain.SimulationStep, error) {
	step := &domain.SimulationStep{RoomTypeID: rt.ID, Date: day}

	ev, err := uc.PricingUsecase.Evaluate(ctx, rt, day, overrides)
	if err != nil {
		return step, err
	}
	step.Forecast = ev.Forecast
	step.Competitor = ev.Competitor
	step.Price = ev.Price

	if overrides.Channels != nil {
		channels, err := uc.ChannelUsecase.Preview(ctx, rt.ID, day, ev.Price.PublishedRate, overrides.Channels)
		if err != nil {
			return step, err
		}
		step.Channels = channels
	}
	return step, nil
}
