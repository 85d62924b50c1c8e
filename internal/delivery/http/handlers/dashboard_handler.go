package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/LavaJover/shvark-rms-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/usecase"
	"github.com/labstack/echo/v4"
)

const defaultRangeDays = 14

type CycleRunReader interface {
	GetCycleRun(ctx context.Context, runID string) (*domain.CycleSummary, error)
	GetRecentCycleRuns(ctx context.Context, limit int) ([]*domain.CycleSummary, error)
}

// DashboardHandler - read-only API для дашборда ревенью-менеджера.
type DashboardHandler struct {
	ForecastUsecase usecase.ForecastUsecase
	PricingUsecase  usecase.PricingUsecase
	ChannelUsecase  usecase.ChannelUsecase
	CycleRuns       CycleRunReader
	ParityTolerance float64
	Clock           usecase.Clock
}

func NewDashboardHandler(
	forecastUsecase usecase.ForecastUsecase,
	pricingUsecase usecase.PricingUsecase,
	channelUsecase usecase.ChannelUsecase,
	cycleRuns CycleRunReader,
	parityTolerance float64,
	clock usecase.Clock,
) *DashboardHandler {
	if clock == nil {
		clock = usecase.SystemClock
	}
	return &DashboardHandler{
		ForecastUsecase: forecastUsecase,
		PricingUsecase:  pricingUsecase,
		ChannelUsecase:  channelUsecase,
		CycleRuns:       cycleRuns,
		ParityTolerance: parityTolerance,
		Clock:           clock,
	}
}

func (h *DashboardHandler) Register(g *echo.Group) {
	g.GET("/room-types/:id/forecasts", h.GetForecasts)
	g.GET("/room-types/:id/forecasts/:date/scenarios", h.GetScenarios)
	g.GET("/room-types/:id/forecasts/:date/accuracy", h.GetForecastAccuracy)
	g.GET("/room-types/:id/patterns", h.GetBookingPatterns)
	g.GET("/room-types/:id/prices", h.GetCurrentPrices)
	g.GET("/room-types/:id/prices/:date", h.GetCurrentPrice)
	g.GET("/room-types/:id/prices/:date/history", h.GetPriceHistory)
	g.GET("/room-types/:id/summary", h.GetPricingSummary)
	g.GET("/room-types/:id/parity/:date", h.CheckParity)
	g.GET("/pushes", h.GetPushLog)
	g.GET("/pushes/stats", h.GetPushStatistics)
	g.GET("/cycles", h.GetCycleRuns)
	g.GET("/cycles/:run_id", h.GetCycleRun)
}

func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (h *DashboardHandler) GetForecasts(c echo.Context) error {
	dates, err := h.dateRange(c)
	if err != nil {
		return badRequest(c, err)
	}
	recs, err := h.ForecastUsecase.GetForecasts(c.Request().Context(), c.Param("id"), dates)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": response.FromForecasts(recs)})
}

func (h *DashboardHandler) GetScenarios(c echo.Context) error {
	date, err := domain.ParseDate(c.Param("date"))
	if err != nil {
		return badRequest(c, err)
	}
	scenarios, err := h.ForecastUsecase.GetScenarios(c.Request().Context(), c.Param("id"), date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": response.FromScenarios(scenarios)})
}

func (h *DashboardHandler) GetForecastAccuracy(c echo.Context) error {
	date, err := domain.ParseDate(c.Param("date"))
	if err != nil {
		return badRequest(c, err)
	}
	report, err := h.ForecastUsecase.GetForecastAccuracy(c.Request().Context(), c.Param("id"), date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, response.FromForecastAccuracy(report))
}

func (h *DashboardHandler) GetBookingPatterns(c echo.Context) error {
	days, err := intQuery(c, "days", 30)
	if err != nil {
		return badRequest(c, err)
	}
	patterns, err := h.ForecastUsecase.GetBookingPatterns(c.Request().Context(), c.Param("id"), days)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, response.FromBookingPatterns(patterns))
}

func (h *DashboardHandler) GetCurrentPrices(c echo.Context) error {
	dates, err := h.dateRange(c)
	if err != nil {
		return badRequest(c, err)
	}
	rows, err := h.PricingUsecase.GetCurrentPrices(c.Request().Context(), c.Param("id"), dates)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": response.FromPrices(rows)})
}

func (h *DashboardHandler) GetCurrentPrice(c echo.Context) error {
	date, err := domain.ParseDate(c.Param("date"))
	if err != nil {
		return badRequest(c, err)
	}
	row, err := h.PricingUsecase.GetCurrentPrice(c.Request().Context(), c.Param("id"), date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, response.FromPrice(row))
}

func (h *DashboardHandler) GetPriceHistory(c echo.Context) error {
	date, err := domain.ParseDate(c.Param("date"))
	if err != nil {
		return badRequest(c, err)
	}
	rows, err := h.PricingUsecase.GetPriceHistory(c.Request().Context(), c.Param("id"), date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": response.FromPrices(rows)})
}

func (h *DashboardHandler) GetPricingSummary(c echo.Context) error {
	dates, err := h.dateRange(c)
	if err != nil {
		return badRequest(c, err)
	}
	summary, err := h.PricingUsecase.GetPricingSummary(c.Request().Context(), c.Param("id"), dates)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, response.FromPriceSummary(summary))
}

func (h *DashboardHandler) CheckParity(c echo.Context) error {
	date, err := domain.ParseDate(c.Param("date"))
	if err != nil {
		return badRequest(c, err)
	}
	tolerance := h.ParityTolerance
	if raw := c.QueryParam("tolerance"); raw != "" {
		tolerance, err = strconv.ParseFloat(raw, 64)
		if err != nil || tolerance < 0 {
			return badRequest(c, errors.New("tolerance must be a non-negative number"))
		}
	}
	flag, err := h.ChannelUsecase.CheckParity(c.Request().Context(), c.Param("id"), date, tolerance)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, response.FromParityFlag(flag))
}

func (h *DashboardHandler) GetPushLog(c echo.Context) error {
	var filter domain.PushLogFilter
	if v := c.QueryParam("channel_id"); v != "" {
		filter.ChannelID = &v
	}
	if v := c.QueryParam("room_type_id"); v != "" {
		filter.RoomTypeID = &v
	}
	if v := c.QueryParam("date"); v != "" {
		date, err := domain.ParseDate(v)
		if err != nil {
			return badRequest(c, err)
		}
		filter.Date = &date
	}
	if v := c.QueryParam("status"); v != "" {
		status := domain.PushStatus(v)
		filter.Status = &status
	}
	limit, err := intQuery(c, "limit", 100)
	if err != nil {
		return badRequest(c, err)
	}
	filter.Limit = limit

	entries, err := h.ChannelUsecase.GetPushLog(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": response.FromPushes(entries)})
}

func (h *DashboardHandler) GetPushStatistics(c echo.Context) error {
	days, err := intQuery(c, "days", 7)
	if err != nil {
		return badRequest(c, err)
	}
	stats, err := h.ChannelUsecase.GetPushStatistics(c.Request().Context(), days)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, response.FromPushStats(stats))
}

func (h *DashboardHandler) GetCycleRuns(c echo.Context) error {
	limit, err := intQuery(c, "limit", 20)
	if err != nil {
		return badRequest(c, err)
	}
	runs, err := h.CycleRuns.GetRecentCycleRuns(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]response.CycleSummary, 0, len(runs))
	for _, run := range runs {
		items = append(items, response.FromCycleSummary(run, false))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *DashboardHandler) GetCycleRun(c echo.Context) error {
	run, err := h.CycleRuns.GetCycleRun(c.Request().Context(), c.Param("run_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, response.FromCycleSummary(run, true))
}

// dateRange читает from/to (YYYY-MM-DD), по умолчанию две недели от сегодня.
func (h *DashboardHandler) dateRange(c echo.Context) (domain.DateRange, error) {
	from := domain.DateOf(h.Clock())
	to := from.AddDate(0, 0, defaultRangeDays-1)
	var err error
	if v := c.QueryParam("from"); v != "" {
		if from, err = domain.ParseDate(v); err != nil {
			return domain.DateRange{}, err
		}
		if c.QueryParam("to") == "" {
			to = from.AddDate(0, 0, defaultRangeDays-1)
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if to, err = domain.ParseDate(v); err != nil {
			return domain.DateRange{}, err
		}
	}
	return domain.NewDateRange(from, to)
}

func intQuery(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return v, nil
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrRoomTypeNotFound),
		errors.Is(err, domain.ErrChannelNotFound),
		errors.Is(err, domain.ErrNoCurrentPrice),
		errors.Is(err, domain.ErrForecastNotFound),
		errors.Is(err, domain.ErrCycleRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDateNotPast):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	switch domain.ErrorKindOf(err) {
	case domain.KindConfiguration:
		return http.StatusUnprocessableEntity
	case domain.KindChannelFailure:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(c echo.Context, err error) error {
	return c.JSON(statusFor(err), response.ErrorResponse{Error: err.Error(), Kind: string(domain.ErrorKindOf(err))})
}
