package grpcapi

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/usecase"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type RevenueHandler struct {
	UnimplementedRevenueServiceServer
	cycleUsecase      usecase.CycleUsecase
	pricingUsecase    usecase.PricingUsecase
	channelUsecase    usecase.ChannelUsecase
	simulationUsecase usecase.SimulationUsecase
	parityTolerance   float64
	logger            *slog.Logger
}

func NewRevenueHandler(
	cycleUsecase usecase.CycleUsecase,
	pricingUsecase usecase.PricingUsecase,
	channelUsecase usecase.ChannelUsecase,
	simulationUsecase usecase.SimulationUsecase,
	parityTolerance float64,
	logger *slog.Logger,
) *RevenueHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RevenueHandler{
		cycleUsecase:      cycleUsecase,
		pricingUsecase:    pricingUsecase,
		channelUsecase:    channelUsecase,
		simulationUsecase: simulationUsecase,
		parityTolerance:   parityTolerance,
		logger:            logger,
	}
}

func (h *RevenueHandler) RunCycle(ctx context.Context, r *RunCycleRequest) (*CycleSummaryResponse, error) {
	req := domain.CycleRequest{
		RoomTypeIDs: r.RoomTypeIDs,
		ChannelIDs:  r.ChannelIDs,
		Force:       r.Force,
		Trigger:     "grpc",
	}
	if r.From != "" || r.To != "" {
		dates, err := parseRange(r.From, r.To)
		if err != nil {
			return nil, err
		}
		req.Range = &dates
	}

	summary, err := h.cycleUsecase.RunCycle(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &CycleSummaryResponse{Summary: response.FromCycleSummary(summary, true)}, nil
}

func (h *RevenueHandler) Price(ctx context.Context, r *PriceRequest) (*PriceResponse, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return nil, err
	}
	row, err := h.pricingUsecase.Price(ctx, r.RoomTypeID, date, nil)
	if err != nil {
		return nil, toStatus(err)
	}
	return &PriceResponse{Price: response.FromPrice(row)}, nil
}

func (h *RevenueHandler) OverridePrice(ctx context.Context, r *OverridePriceRequest) (*PriceResponse, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return nil, err
	}
	if r.Rate <= 0 {
		return nil, status.Error(codes.InvalidArgument, "rate must be positive")
	}
	row, err := h.pricingUsecase.OverridePrice(ctx, usecase.OverridePriceInput{
		RoomTypeID: r.RoomTypeID,
		Date:       date,
		Rate:       r.Rate,
		Actor:      r.Actor,
		Reason:     r.Reason,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &PriceResponse{Price: response.FromPrice(row)}, nil
}

// Push отправляет ставку в канал; без published_rate берётся текущая цена.
func (h *RevenueHandler) Push(ctx context.Context, r *PushRequest) (*PushResponse, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return nil, err
	}
	rate := r.PublishedRate
	if rate <= 0 {
		current, err := h.pricingUsecase.GetCurrentPrice(ctx, r.RoomTypeID, date)
		if err != nil {
			return nil, toStatus(err)
		}
		rate = current.PublishedRate
	}

	entry, err := h.channelUsecase.Push(ctx, r.ChannelID, r.RoomTypeID, date, rate)
	if err != nil {
		return nil, toStatus(err)
	}
	return &PushResponse{Push: response.FromPush(entry)}, nil
}

func (h *RevenueHandler) CheckParity(ctx context.Context, r *ParityRequest) (*ParityResponse, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return nil, err
	}
	tolerance := h.parityTolerance
	if r.Tolerance != nil {
		if *r.Tolerance < 0 {
			return nil, status.Error(codes.InvalidArgument, "tolerance must be non-negative")
		}
		tolerance = *r.Tolerance
	}
	flag, err := h.channelUsecase.CheckParity(ctx, r.RoomTypeID, date, tolerance)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ParityResponse{Parity: response.FromParityFlag(flag)}, nil
}

// Simulate стримит по шагу на день; ошибка дня уходит в шаг, отмена стрима останавливает расчёт.
func (h *RevenueHandler) Simulate(r *SimulateRequest, stream grpc.ServerStreamingServer[SimulationStep]) error {
	dates, err := parseRange(r.From, r.To)
	if err != nil {
		return err
	}
	ctx := stream.Context()

	for step, err := range h.simulationUsecase.Simulate(ctx, r.RoomTypeID, dates, r.Overrides()) {
		if step == nil {
			return toStatus(err)
		}
		if sendErr := stream.Send(fromSimulationStep(step, err)); sendErr != nil {
			h.logger.Debug("Simulation stream closed", "room_type_id", r.RoomTypeID, "error", sendErr)
			return sendErr
		}
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	d, err := domain.ParseDate(s)
	if err != nil {
		return d, status.Error(codes.InvalidArgument, err.Error())
	}
	return d, nil
}

func parseRange(from, to string) (domain.DateRange, error) {
	start, err := parseDate(from)
	if err != nil {
		return domain.DateRange{}, err
	}
	end := start
	if to != "" {
		if end, err = parseDate(to); err != nil {
			return domain.DateRange{}, err
		}
	}
	dates, err := domain.NewDateRange(start, end)
	if err != nil {
		return domain.DateRange{}, status.Error(codes.InvalidArgument, err.Error())
	}
	return dates, nil
}

// toStatus переводит доменные ошибки в коды gRPC.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, domain.ErrRoomTypeNotFound),
		errors.Is(err, domain.ErrChannelNotFound),
		errors.Is(err, domain.ErrNoCurrentPrice),
		errors.Is(err, domain.ErrForecastNotFound):
		return status.Error(codes.NotFound, err.Error())
	}
	switch domain.ErrorKindOf(err) {
	case domain.KindConfiguration:
		return status.Error(codes.FailedPrecondition, err.Error())
	case domain.KindChannelFailure:
		return status.Error(codes.Unavailable, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
