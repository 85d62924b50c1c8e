package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-rms-service/internal/usecase/forecast"
	"github.com/google/uuid"
)

type ForecastUsecase interface {
	Forecast(ctx context.Context, roomTypeID string, date time.Time) (*domain.ForecastRecord, error)
	ForecastRange(ctx context.Context, roomTypeID string, dates domain.DateRange) ([]*domain.ForecastRecord, error)
	GetForecasts(ctx context.Context, roomTypeID string, dates domain.DateRange) ([]*domain.ForecastRecord, error)
	GetScenarios(ctx context.Context, roomTypeID string, date time.Time) ([]forecast.Scenario, error)
	GetBookingPatterns(ctx context.Context, roomTypeID string, days int) (*forecast.BookingPatterns, error)
	GetForecastAccuracy(ctx context.Context, roomTypeID string, date time.Time) (*forecast.AccuracyReport, error)

	// Evaluate считает прогноз на момент now; persist=false ничего не пишет.
	Evaluate(ctx context.Context, rt *domain.RoomType, date, now time.Time, overrides *domain.SimulationOverrides, persist bool) (*domain.ForecastRecord, error)
}

type DefaultForecastUsecase struct {
	RoomTypeRepo domain.RoomTypeRepository
	BookingRepo  domain.BookingRepository
	EventRepo    domain.EventRepository
	ForecastRepo domain.ForecastRepository
	Params       forecast.Params
	Clock        Clock
	Logger       *slog.Logger
	Metrics      *metrics.RMSMetrics
}

func NewDefaultForecastUsecase(
	roomTypeRepo domain.RoomTypeRepository,
	bookingRepo domain.BookingRepository,
	eventRepo domain.EventRepository,
	forecastRepo domain.ForecastRepository,
	params forecast.Params,
	clock Clock,
	logger *slog.Logger,
	rmsMetrics *metrics.RMSMetrics,
) *DefaultForecastUsecase {
	return &DefaultForecastUsecase{
		RoomTypeRepo: roomTypeRepo,
		BookingRepo:  bookingRepo,
		EventRepo:    eventRepo,
		ForecastRepo: forecastRepo,
		Params:       params,
		Clock:        orSystem(clock),
		Logger:       orDefault(logger),
		Metrics:      rmsMetrics,
	}
}

func (uc *DefaultForecastUsecase) Forecast(ctx context.Context, roomTypeID string, date time.Time) (*domain.ForecastRecord, error) {
	rt, err := uc.RoomTypeRepo.GetRoomTypeByID(ctx, roomTypeID)
	if err != nil {
		return nil, err
	}
	return uc.Evaluate(ctx, rt, date, uc.Clock(), nil, true)
}

func (uc *DefaultForecastUsecase) ForecastRange(ctx context.Context, roomTypeID string, dates domain.DateRange) ([]*domain.ForecastRecord, error) {
	rt, err := uc.RoomTypeRepo.GetRoomTypeByID(ctx, roomTypeID)
	if err != nil {
		return nil, err
	}
	now := uc.Clock()
	var out []*domain.ForecastRecord
	for _, day := range dates.Days() {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		rec, err := uc.Evaluate(ctx, rt, day, now, nil, true)
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (uc *DefaultForecastUsecase) GetForecasts(ctx context.Context, roomTypeID string, dates domain.DateRange) ([]*domain.ForecastRecord, error) {
	return uc.ForecastRepo.GetForecasts(ctx, roomTypeID, dates.From, dates.To)
}

func (uc *DefaultForecastUsecase) Evaluate(
	ctx context.Context,
	rt *domain.RoomType,
	date, now time.Time,
	overrides *domain.SimulationOverrides,
	persist bool,
) (*domain.ForecastRecord, error) {
	target := domain.DateOf(date)
	today := domain.DateOf(now)
	key := domain.Key{RoomTypeID: rt.ID, Date: target}

	// брони, покрывающие окно сравнения и целевую дату
	bookings, err := uc.BookingRepo.GetBookingsByRoomType(ctx, rt.ID, today.AddDate(0, 0, -uc.Params.LookbackDays), target)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: load bookings: %w", key, err)
	}
	events, err := uc.EventRepo.GetEventsBetween(ctx, target, target)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: load events: %w", key, err)
	}

	in := forecast.Input{
		RoomTypeID: rt.ID,
		Date:       target,
		Now:        now,
		Bookings:   bookings,
		Events:     events,
	}
	if overrides != nil {
		in.DemandMultiplier = overrides.DemandMultiplier
		in.DemandShift = overrides.DemandShift
		in.EventUplift = overrides.EventUplift
	}

	est := forecast.Prepare(in, uc.Params)
	fingerprint := est.Fingerprint()

	snapshots, err := uc.ForecastRepo.GetLatestSnapshots(ctx, rt.ID, target, uc.Params.SmoothingWindow+1)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: load snapshots: %w", key, err)
	}
	rec := est.Record(forecast.PriorsFor(snapshots, fingerprint, uc.Params.SmoothingWindow), uc.Params, now)

	if est.Model != domain.ForecastBucket {
		dqErr := &domain.DataQualityError{Key: key, Err: domain.ErrInsufficientHistory, Fallback: string(est.Model)}
		uc.Logger.Debug("Forecast fallback", "error", dqErr, "confidence", rec.Confidence)
	}

	if !persist {
		return rec, nil
	}

	if n := len(snapshots); n == 0 || snapshots[n-1].Fingerprint != fingerprint {
		if err := uc.ForecastRepo.AppendSnapshot(ctx, &domain.ForecastSnapshot{
			ID:          uuid.New().String(),
			RoomTypeID:  rt.ID,
			Date:        target,
			RawDemand:   est.Raw,
			Fingerprint: fingerprint,
			CreatedAt:   now,
		}); err != nil {
			return nil, fmt.Errorf("forecast %s: append snapshot: %w", key, err)
		}
	}
	if err := uc.ForecastRepo.UpsertForecast(ctx, rec); err != nil {
		return nil, fmt.Errorf("forecast %s: upsert: %w", key, err)
	}
	uc.Metrics.RecordForecast(rt.ID, string(rec.Model), rec.Confidence)

	return rec, nil
}

func (uc *DefaultForecastUsecase) GetScenarios(ctx context.Context, roomTypeID string, date time.Time) ([]forecast.Scenario, error) {
	rt, err := uc.RoomTypeRepo.GetRoomTypeByID(ctx, roomTypeID)
	if err != nil {
		return nil, err
	}
	rec, err := uc.ForecastRepo.GetForecast(ctx, roomTypeID, domain.DateOf(date))
	if errors.Is(err, domain.ErrForecastNotFound) {
		rec, err = uc.Evaluate(ctx, rt, date, uc.Clock(), nil, false)
	}
	if err != nil {
		return nil, err
	}
	return forecast.Scenarios(rec, rt), nil
}

func (uc *DefaultForecastUsecase) GetBookingPatterns(ctx context.Context, roomTypeID string, days int) (*forecast.BookingPatterns, error) {
	if days <= 0 {
		days = 30
	}
	to := uc.Clock()
	from := to.AddDate(0, 0, -days)
	bookings, err := uc.BookingRepo.GetBookingsCreatedBetween(ctx, roomTypeID, from, to)
	if err != nil {
		return nil, err
	}
	return forecast.AnalyzePatterns(roomTypeID, bookings, from, to), nil
}

// GetForecastAccuracy сверяет сохранённый прогноз прошедшей даты с бронями, занимающими эту ночь.
func (uc *DefaultForecastUsecase) GetForecastAccuracy(ctx context.Context, roomTypeID string, date time.Time) (*forecast.AccuracyReport, error) {
	day := domain.DateOf(date)
	if !day.Before(domain.DateOf(uc.Clock())) {
		return nil, fmt.Errorf("%w: %s", domain.ErrDateNotPast, day.Format(domain.DateLayout))
	}
	rt, err := uc.RoomTypeRepo.GetRoomTypeByID(ctx, roomTypeID)
	if err != nil {
		return nil, err
	}
	rec, err := uc.ForecastRepo.GetForecast(ctx, roomTypeID, day)
	if err != nil {
		return nil, err
	}
	bookings, err := uc.BookingRepo.GetBookingsByRoomType(ctx, roomTypeID, day, day)
	if err != nil {
		return nil, err
	}
	occupied := 0
	for _, b := range bookings {
		if b.Covers(day) {
			occupied++
		}
	}

	report := forecast.Accuracy(rec, occupied, rt.UnitCount)
	uc.Logger.Info("Forecast accuracy",
		"room_type_id", roomTypeID,
		"date", day.Format(domain.DateLayout),
		"predicted", report.PredictedDemand,
		"actual_occupancy", report.ActualOccupancy,
		"accuracy_score", report.AccuracyScore)
	return report, nil
}
