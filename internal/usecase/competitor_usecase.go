package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/config"
	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-rms-service/internal/usecase/competitor"
)

type CompetitorUsecase interface {
	CompetitorIndex(ctx context.Context, roomTypeID string, date time.Time) (*domain.CompetitorIndex, error)
	Evaluate(ctx context.Context, rt *domain.RoomType, date, now time.Time) (*domain.CompetitorIndex, error)
}

type DefaultCompetitorUsecase struct {
	RoomTypeRepo   domain.RoomTypeRepository
	CompetitorRepo domain.CompetitorRateRepository
	Config         config.CompetitorConfig
	Clock          Clock
	Logger         *slog.Logger
	Metrics        *metrics.RMSMetrics

	mu     sync.Mutex
	mapper *competitor.Mapper
}

func NewDefaultCompetitorUsecase(
	roomTypeRepo domain.RoomTypeRepository,
	competitorRepo domain.CompetitorRateRepository,
	cfg config.CompetitorConfig,
	clock Clock,
	logger *slog.Logger,
	rmsMetrics *metrics.RMSMetrics,
) *DefaultCompetitorUsecase {
	return &DefaultCompetitorUsecase{
		RoomTypeRepo:   roomTypeRepo,
		CompetitorRepo: competitorRepo,
		Config:         cfg,
		Clock:          orSystem(clock),
		Logger:         orDefault(logger),
		Metrics:        rmsMetrics,
	}
}

func (uc *DefaultCompetitorUsecase) CompetitorIndex(ctx context.Context, roomTypeID string, date time.Time) (*domain.CompetitorIndex, error) {
	rt, err := uc.RoomTypeRepo.GetRoomTypeByID(ctx, roomTypeID)
	if err != nil {
		return nil, err
	}
	return uc.Evaluate(ctx, rt, date, uc.Clock())
}

func (uc *DefaultCompetitorUsecase) Evaluate(ctx context.Context, rt *domain.RoomType, date, now time.Time) (*domain.CompetitorIndex, error) {
	mapper, err := uc.getMapper(ctx)
	if err != nil {
		return nil, err
	}
	observations, err := uc.CompetitorRepo.GetRatesForDate(ctx, domain.DateOf(date))
	if err != nil {
		return nil, fmt.Errorf("competitor rates for %s: %w", domain.DateOf(date).Format(domain.DateLayout), err)
	}

	idx, err := competitor.Compute(competitor.Input{
		RoomType:     rt,
		Date:         date,
		Now:          now,
		Observations: observations,
	}, mapper, competitor.ParamsFromConfig(uc.Config))
	if err != nil {
		return nil, err
	}

	if dqErr := competitor.DataQuality(idx); dqErr != nil {
		uc.Logger.Info("Competitor data incomplete",
			"room_type_id", rt.ID,
			"date", idx.Date.Format(domain.DateLayout),
			"staleness", idx.Staleness,
			"error", dqErr)
	}
	if idx.MappingMisses > 0 {
		uc.Logger.Warn("Competitor labels not mapped",
			"room_type_id", rt.ID,
			"date", idx.Date.Format(domain.DateLayout),
			"misses", idx.MappingMisses)
	}
	uc.Metrics.RecordCompetitorIndex(rt.ID, string(idx.Staleness), idx.MappingMisses)

	return idx, nil
}

// getMapper строит маппер при первом обращении и кэширует его.
func (uc *DefaultCompetitorUsecase) getMapper(ctx context.Context) (*competitor.Mapper, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.mapper != nil {
		return uc.mapper, nil
	}
	roomTypes, err := uc.RoomTypeRepo.GetRoomTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load room types for mapping: %w", err)
	}
	uc.mapper = competitor.NewDefaultMapper(uc.Config.Mappings, uc.Config.SimilarityThreshold, roomTypes, uc.Logger)
	return uc.mapper, nil
}
