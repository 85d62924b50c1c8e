package setup

import (
	"fmt"

	"github.com/LavaJover/shvark-rms-service/internal/usecase"
	"github.com/LavaJover/shvark-rms-service/internal/usecase/channel"
	"github.com/LavaJover/shvark-rms-service/internal/usecase/forecast"
	"github.com/LavaJover/shvark-rms-service/internal/usecase/pricing"
)

type UseCases struct {
	ForecastUsecase   usecase.ForecastUsecase
	CompetitorUsecase usecase.CompetitorUsecase
	PricingUsecase    usecase.PricingUsecase
	ChannelUsecase    usecase.ChannelUsecase
	SimulationUsecase usecase.SimulationUsecase
	CycleUsecase      usecase.CycleUsecase
	IngestUsecase     usecase.IngestUsecase
}

// InitializeUseCases собирает конвейер forecast → competitor → pricing → channel.
// clock == nil означает системное время; injector == nil - сбои по channel.failure_rate.
func InitializeUseCases(deps *Dependencies, clock usecase.Clock, injector channel.FailureInjector) (*UseCases, error) {
	cfg := deps.Config
	repos := deps.Repositories

	if injector == nil {
		injector = channel.NewRandomInjector(cfg.Channel.FailureRate, cfg.Channel.Seed)
	}

	forecastUsecase := usecase.NewDefaultForecastUsecase(
		repos.RoomTypeRepo,
		repos.BookingRepo,
		repos.EventRepo,
		repos.ForecastRepo,
		forecast.ParamsFromConfig(cfg.Forecast),
		clock,
		deps.Logger,
		deps.Metrics,
	)

	competitorUsecase := usecase.NewDefaultCompetitorUsecase(
		repos.RoomTypeRepo,
		repos.CompetitorRepo,
		cfg.Competitor,
		clock,
		deps.Logger,
		deps.Metrics,
	)

	pricingUsecase := usecase.NewDefaultPricingUsecase(
		repos.RoomTypeRepo,
		repos.PriceRepo,
		forecastUsecase,
		competitorUsecase,
		pricing.NewResolver(cfg.Pricing),
		deps.Events,
		clock,
		deps.Logger,
		deps.Metrics,
	)

	channelUsecase, err := usecase.NewDefaultChannelUsecase(
		repos.ChannelRepo,
		repos.PushRepo,
		repos.PriceRepo,
		injector,
		deps.Events,
		clock,
		deps.Logger,
		deps.Metrics,
	)
	if err != nil {
		return nil, fmt.Errorf("channel usecase: %w", err)
	}

	simulationUsecase := usecase.NewDefaultSimulationUsecase(
		repos.RoomTypeRepo,
		pricingUsecase,
		channelUsecase,
		clock,
		deps.Logger,
		deps.Metrics,
	)

	cycleUsecase, err := usecase.NewDefaultCycleUsecase(
		repos.RoomTypeRepo,
		repos.PriceRepo,
		pricingUsecase,
		channelUsecase,
		repos.CycleRunLogger,
		deps.Events,
		cfg.Cycle,
		clock,
		deps.Logger,
		deps.Metrics,
	)
	if err != nil {
		return nil, fmt.Errorf("cycle usecase: %w", err)
	}

	ingestUsecase := usecase.NewDefaultIngestUsecase(repos.CompetitorRepo, clock, deps.Logger)

	return &UseCases{
		ForecastUsecase:   forecastUsecase,
		CompetitorUsecase: competitorUsecase,
		PricingUsecase:    pricingUsecase,
		ChannelUsecase:    channelUsecase,
		SimulationUsecase: simulationUsecase,
		CycleUsecase:      cycleUsecase,
		IngestUsecase:     ingestUsecase,
	}, nil
}
