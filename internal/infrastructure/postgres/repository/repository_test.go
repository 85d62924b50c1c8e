package repository

import (
	"context"
	"testing"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/testdb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC)

func priceRow(source domain.PriceSource, rate float64, date time.Time) *domain.PriceHistory {
	return &domain.PriceHistory{
		ID:            uuid.New().String(),
		RoomTypeID:    "deluxe",
		Date:          date,
		PublishedRate: rate,
		Floor:         196,
		Ceiling:       420,
		Coefficients:  domain.Coefficients{Alpha: 0.3, Beta: 0.25, Gamma: 0.02, Delta: 1},
		Components:    domain.PriceComponents{BaseRate: 280, RawRate: rate},
		Source:        source,
		Actor:         string(source),
		CreatedAt:     time.Now().UTC(),
	}
}

func TestRoomTypeRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewDefaultRoomTypeRepository(testdb.New(t))

	require.NoError(t, repo.SaveRoomType(ctx, &domain.RoomType{ID: "suite", Name: "Suite", BaseRate: 900, Capacity: 2, UnitCount: 9}))
	require.NoError(t, repo.SaveRoomType(ctx, &domain.RoomType{ID: "deluxe", Name: "Deluxe", BaseRate: 280, Capacity: 2, UnitCount: 120}))
	// повторное сохранение обновляет запись
	require.NoError(t, repo.SaveRoomType(ctx, &domain.RoomType{ID: "deluxe", Name: "Deluxe", BaseRate: 300, Capacity: 2, UnitCount: 120}))

	all, err := repo.GetRoomTypes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "deluxe", all[0].ID)
	assert.Equal(t, 300.0, all[0].BaseRate)

	_, err = repo.GetRoomTypeByID(ctx, "penthouse")
	assert.ErrorIs(t, err, domain.ErrRoomTypeNotFound)

	require.NoError(t, repo.SaveInventoryUnit(ctx, &domain.InventoryUnit{ID: "deluxe-001", RoomTypeID: "deluxe", Status: domain.UnitAvailable}))
	require.NoError(t, repo.SaveInventoryUnit(ctx, &domain.InventoryUnit{ID: "deluxe-002", RoomTypeID: "deluxe", Status: domain.UnitOutOfService}))
	units, err := repo.GetInventoryUnits(ctx, "deluxe")
	require.NoError(t, err)
	assert.Len(t, units, 2)
}

func TestBookingRepository_StayOverlap(t *testing.T) {
	ctx := context.Background()
	repo := NewDefaultBookingRepository(testdb.New(t))

	created := day.AddDate(0, 0, -10)
	require.NoError(t, repo.CreateBookings(ctx, []*domain.Booking{
		{ID: "b1", RoomTypeID: "deluxe", CheckIn: day.AddDate(0, 0, -2), CheckOut: day, Rate: 280, Channel: "DIRECT", CreatedAt: created},
		{ID: "b2", RoomTypeID: "deluxe", CheckIn: day.AddDate(0, 0, -1), CheckOut: day.AddDate(0, 0, 2), Rate: 300, Channel: "EXPEDIA", CreatedAt: created},
		{ID: "b3", RoomTypeID: "deluxe", CheckIn: day.AddDate(0, 0, 3), CheckOut: day.AddDate(0, 0, 4), Rate: 290, Channel: "AGODA", CreatedAt: created},
		{ID: "b4", RoomTypeID: "suite", CheckIn: day, CheckOut: day.AddDate(0, 0, 1), Rate: 900, Channel: "DIRECT", CreatedAt: created},
	}))

	// выезд в day не пересекается с ночью day
	got, err := repo.GetBookingsByRoomType(ctx, "deluxe", day, day)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b2", got[0].ID)

	got, err = repo.GetBookingsCreatedBetween(ctx, "deluxe", created, created)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	assert.NoError(t, repo.CreateBookings(ctx, nil))
}

func TestPriceHistoryRepository_CurrentIsNewestCommitted(t *testing.T) {
	ctx := context.Background()
	repo := NewDefaultPriceHistoryRepository(testdb.New(t))

	_, err := repo.GetCurrentPrice(ctx, "deluxe", day)
	assert.ErrorIs(t, err, domain.ErrNoCurrentPrice)

	require.NoError(t, repo.AppendPrice(ctx, priceRow(domain.SourceEngine, 290, day)))
	require.NoError(t, repo.AppendPrice(ctx, priceRow(domain.SourceManualOverride, 310, day)))
	require.NoError(t, repo.AppendPrice(ctx, priceRow(domain.SourceEngine, 295.5, day)))
	require.NoError(t, repo.AppendPrice(ctx, priceRow(domain.SourceEngine, 270, day.AddDate(0, 0, 1))))

	assert.Error(t, repo.AppendPrice(ctx, priceRow(domain.SourceSimulation, 999, day)))

	current, err := repo.GetCurrentPrice(ctx, "deluxe", day.Add(15*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 295.5, current.PublishedRate)
	assert.Equal(t, domain.SourceEngine, current.Source)
	assert.Equal(t, 0.25, current.Coefficients.Beta)

	history, err := repo.GetPriceHistory(ctx, "deluxe", day)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []float64{290, 310, 295.5}, []float64{history[0].PublishedRate, history[1].PublishedRate, history[2].PublishedRate})

	prices, err := repo.GetCurrentPrices(ctx, "deluxe", day, day.AddDate(0, 0, 5))
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, 295.5, prices[0].PublishedRate)
	assert.Equal(t, 270.0, prices[1].PublishedRate)
}

func TestForecastRepository_UpsertAndSnapshots(t *testing.T) {
	ctx := context.Background()
	repo := NewDefaultForecastRepository(testdb.New(t))

	_, err := repo.GetForecast(ctx, "deluxe", day)
	assert.ErrorIs(t, err, domain.ErrForecastNotFound)

	rec := &domain.ForecastRecord{RoomTypeID: "deluxe", Date: day, ForecastedDemand: 0.8, Confidence: 0.5, Model: domain.ForecastBucket, GeneratedAt: time.Now().UTC()}
	require.NoError(t, repo.UpsertForecast(ctx, rec))
	rec.ForecastedDemand = 0.9
	require.NoError(t, repo.UpsertForecast(ctx, rec))

	got, err := repo.GetForecast(ctx, "deluxe", day)
	require.NoError(t, err)
	assert.Equal(t, 0.9, got.ForecastedDemand)

	all, err := repo.GetForecasts(ctx, "deluxe", day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, all, 1)

	for i, raw := range []float64{0.5, 0.6, 0.7, 0.8} {
		require.NoError(t, repo.AppendSnapshot(ctx, &domain.ForecastSnapshot{
			ID:         uuid.New().String(),
			RoomTypeID: "deluxe",
			Date:       day,
			RawDemand:  raw,
			CreatedAt:  day.Add(time.Duration(i) * time.Hour),
		}))
	}
	snaps, err := repo.GetLatestSnapshots(ctx, "deluxe", day, 3)
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, 0.6, snaps[0].RawDemand)
	assert.Equal(t, 0.8, snaps[2].RawDemand)
}

func TestChannelRepositories(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	rules := NewDefaultChannelRuleRepository(db)
	pushes := NewDefaultPushLogRepository(db)

	require.NoError(t, rules.SaveChannelRule(ctx, &domain.ChannelRule{ChannelID: "BOOKING_COM", DisplayName: "Booking.com", CommissionPct: 0.15, LoyaltyDiscountPct: 0.1, Active: true}))
	require.NoError(t, rules.SaveChannelRule(ctx, &domain.ChannelRule{ChannelID: "AIRBNB", DisplayName: "Airbnb", CommissionPct: 0.03, Active: false}))

	rule, err := rules.GetChannelRule(ctx, "AIRBNB")
	require.NoError(t, err)
	assert.False(t, rule.Active)
	_, err = rules.GetChannelRule(ctx, "NOPE")
	assert.ErrorIs(t, err, domain.ErrChannelNotFound)

	// повторное сохранение выключает канал и обновляет проценты
	require.NoError(t, rules.SaveChannelRule(ctx, &domain.ChannelRule{ChannelID: "BOOKING_COM", DisplayName: "Booking.com", CommissionPct: 0.17, LoyaltyDiscountPct: 0.1, Active: false}))
	rule, err = rules.GetChannelRule(ctx, "BOOKING_COM")
	require.NoError(t, err)
	assert.False(t, rule.Active)
	assert.Equal(t, 0.17, rule.CommissionPct)
	all, err := rules.GetChannelRules(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	now := time.Now().UTC()
	push := func(channelID string, status domain.PushStatus, guest float64, at time.Time) {
		require.NoError(t, pushes.AppendPush(ctx, &domain.PushLogEntry{
			ID:                uuid.New().String(),
			ChannelID:         channelID,
			RoomTypeID:        "deluxe",
			Date:              day,
			PublishedRate:     300,
			GuestDisplayPrice: guest,
			Status:            status,
			PushedAt:          at,
		}))
	}
	push("BOOKING_COM", domain.PushSuccess, 270, now.Add(-3*time.Hour))
	push("BOOKING_COM", domain.PushSuccess, 265, now.Add(-2*time.Hour))
	push("BOOKING_COM", domain.PushFailed, 260, now.Add(-1*time.Hour))
	push("EXPEDIA", domain.PushSuccess, 264, now.Add(-30*24*time.Hour))

	latest, err := pushes.GetLatestPushes(ctx, "deluxe", day, domain.PushSuccess)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "BOOKING_COM", latest[0].ChannelID)
	assert.Equal(t, 265.0, latest[0].GuestDisplayPrice)

	status := domain.PushFailed
	failed, err := pushes.GetPushLog(ctx, domain.PushLogFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, failed, 1)

	recent, err := pushes.GetPushLog(ctx, domain.PushLogFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "EXPEDIA", recent[0].ChannelID)
	assert.Equal(t, domain.PushFailed, recent[1].Status)

	since, err := pushes.GetPushesSince(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, since, 3)
}

func TestCompetitorAndEventRepositories(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	rates := NewDefaultCompetitorRateRepository(db)
	events := NewDefaultEventRepository(db)

	require.NoError(t, rates.CreateRates(ctx, []*domain.CompetitorRate{
		{ID: "r1", CompetitorID: "Palmview", RoomLabel: "Deluxe Room", Date: day, Rate: 300, Available: true, ObservedAt: day},
		{ID: "r2", CompetitorID: "Hotel Aster", RoomLabel: "Deluxe", Date: day, Rate: 310, Available: true, ObservedAt: day},
		{ID: "r3", CompetitorID: "Hotel Aster", RoomLabel: "Deluxe", Date: day.AddDate(0, 0, 1), Rate: 320, Available: true, ObservedAt: day},
	}))
	got, err := rates.GetRatesForDate(ctx, day)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, events.SaveEvent(ctx, &domain.EventMultiplier{ID: "e1", Label: "Expo", StartDate: day.AddDate(0, 0, 2), EndDate: day.AddDate(0, 0, 4), Multiplier: 1.4}))
	found, err := events.GetEventsBetween(ctx, day, day.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 1.4, found[0].Multiplier)

	none, err := events.GetEventsBetween(ctx, day.AddDate(0, 0, 5), day.AddDate(0, 0, 9))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCycleRunRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	runs := NewDefaultCycleRunRepository(db)
	runLogger := logger.NewPGCycleRunLogger(db)

	started := time.Now().UTC().Truncate(time.Second)
	for i, runID := range []string{"run-old", "run-new"} {
		summary := &domain.CycleSummary{
			RunID:      runID,
			Trigger:    "schedule",
			StartedAt:  started.Add(time.Duration(i) * time.Minute),
			FinishedAt: started.Add(time.Duration(i)*time.Minute + time.Second),
			Results: []domain.KeyResult{
				{RoomTypeID: "deluxe", Date: day, Status: domain.KeyPriced, PublishedRate: 294.59, Pushes: 3},
				{RoomTypeID: "ghost", Date: day, Status: domain.KeyFailed, ErrKind: domain.KindConfiguration, Err: "room type not found"},
			},
			PushFailures: []domain.PushFailure{{Key: domain.Key{RoomTypeID: "deluxe", Date: day, ChannelID: "EXPEDIA"}, StatusCode: 503, Message: "Service unavailable"}},
		}
		summary.Tally()
		require.NoError(t, runLogger.LogCycleRun(ctx, summary))
	}

	got, err := runs.GetCycleRun(ctx, "run-old")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Priced)
	assert.Equal(t, 1, got.Failed)
	require.Len(t, got.Results, 2)
	assert.Equal(t, domain.KindConfiguration, got.Results[1].ErrKind)
	require.Len(t, got.PushFailures, 1)
	assert.Equal(t, 503, got.PushFailures[0].StatusCode)

	recent, err := runs.GetRecentCycleRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "run-new", recent[0].RunID)

	_, err = runs.GetCycleRun(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrCycleRunNotFound)
}
