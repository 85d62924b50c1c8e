package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/app/seed"
	"github.com/LavaJover/shvark-rms-service/internal/app/setup"
	"github.com/LavaJover/shvark-rms-service/internal/config"
	rmshttp "github.com/LavaJover/shvark-rms-service/internal/delivery/http"
	"github.com/LavaJover/shvark-rms-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/testdb"
	"github.com/LavaJover/shvark-rms-service/internal/usecase"
	"github.com/LavaJover/shvark-rms-service/internal/usecase/channel"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func newTestRouter(t *testing.T) (*echo.Echo, *setup.UseCases) {
	t.Helper()
	cfg := config.Default()
	db := testdb.New(t)
	deps := setup.NewDependencies(cfg, db, nil, nil)
	clock := func() time.Time { return now }
	uc, err := setup.InitializeUseCases(deps, clock, channel.NeverFail{})
	require.NoError(t, err)

	repos := deps.Repositories
	seeder := seed.NewSeeder(repos.RoomTypeRepo, repos.BookingRepo, repos.CompetitorRepo, repos.EventRepo, repos.ChannelRepo, nil)
	require.NoError(t, seeder.Run(context.Background(), seed.Options{Now: now, Seed: 1, HistoryDays: 30, HorizonDays: 5}))

	h := handlers.NewDashboardHandler(uc.ForecastUsecase, uc.PricingUsecase, uc.ChannelUsecase, repos.CycleRunRepo, 1.0, clock)
	return rmshttp.NewRouter(h, nil, deps.Registry, nil), uc
}

func get(t *testing.T, e *echo.Echo, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := get(t, e, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = get(t, e, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_CurrentPrice(t *testing.T) {
	e, uc := newTestRouter(t)
	date := domain.DateOf(now).AddDate(0, 0, 2).Format(domain.DateLayout)

	rec := get(t, e, "/api/v1/room-types/deluxe/prices/"+date)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, e, "/api/v1/room-types/deluxe/prices/not-a-date")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, err := uc.PricingUsecase.OverridePrice(context.Background(), usecase.OverridePriceInput{
		RoomTypeID: "deluxe",
		Date:       domain.DateOf(now).AddDate(0, 0, 2),
		Rate:       315,
		Actor:      "rm",
	})
	require.NoError(t, err)

	rec = get(t, e, "/api/v1/room-types/deluxe/prices/"+date)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 315.0, body["published_rate"])
	assert.Equal(t, "manual_override", body["source"])

	rec = get(t, e, "/api/v1/room-types/deluxe/prices")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Items, 1)
}

func TestRouter_ForecastAccuracy(t *testing.T) {
	e, uc := newTestRouter(t)
	yesterday := domain.DateOf(now).AddDate(0, 0, -1)

	rec, err := uc.ForecastUsecase.Forecast(context.Background(), "deluxe", yesterday)
	require.NoError(t, err)

	res := get(t, e, "/api/v1/room-types/deluxe/forecasts/"+yesterday.Format(domain.DateLayout)+"/accuracy")
	require.Equal(t, http.StatusOK, res.Code)
	var body struct {
		PredictedDemand float64 `json:"predicted_demand"`
		UnitCount       int     `json:"unit_count"`
		AccuracyScore   float64 `json:"accuracy_score"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.InDelta(t, rec.ForecastedDemand, body.PredictedDemand, 1e-9)
	assert.Equal(t, 120, body.UnitCount)
	assert.GreaterOrEqual(t, body.AccuracyScore, 0.0)
	assert.LessOrEqual(t, body.AccuracyScore, 100.0)

	// сегодняшняя дата ещё не прошла
	res = get(t, e, "/api/v1/room-types/deluxe/forecasts/"+domain.DateOf(now).Format(domain.DateLayout)+"/accuracy")
	assert.Equal(t, http.StatusBadRequest, res.Code)

	// прогноз не сохранялся
	res = get(t, e, "/api/v1/room-types/deluxe/forecasts/"+yesterday.AddDate(0, 0, -1).Format(domain.DateLayout)+"/accuracy")
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestRouter_CycleRuns(t *testing.T) {
	e, uc := newTestRouter(t)

	summary, err := uc.CycleUsecase.RunCycle(context.Background(), domain.CycleRequest{
		RoomTypeIDs: []string{"deluxe"},
		Range:       &domain.DateRange{From: domain.DateOf(now), To: domain.DateOf(now).AddDate(0, 0, 1)},
		Trigger:     "test",
	})
	require.NoError(t, err)

	rec := get(t, e, "/api/v1/cycles")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, e, "/api/v1/cycles/"+summary.RunID)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, e, "/api/v1/cycles/unknown-run")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, e, "/api/v1/pushes?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, e, "/api/v1/room-types/penthouse/summary")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
