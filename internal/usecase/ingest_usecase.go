package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/google/uuid"
)

var ErrInvalidObservation = errors.New("invalid competitor observation")

type IngestUsecase interface {
	// IngestCompetitorRates сохраняет валидные наблюдения и возвращает их число.
	IngestCompetitorRates(ctx context.Context, rates []*domain.CompetitorRate) (int, error)
}

type DefaultIngestUsecase struct {
	Writer domain.CompetitorRateWriter
	Clock  Clock
	Logger *slog.Logger
}

func NewDefaultIngestUsecase(writer domain.CompetitorRateWriter, clock Clock, logger *slog.Logger) *DefaultIngestUsecase {
	return &DefaultIngestUsecase{Writer: writer, Clock: orSystem(clock), Logger: orDefault(logger)}
}

func validateObservation(r *domain.CompetitorRate) error {
	switch {
	case r.CompetitorID == "":
		return fmt.Errorf("%w: empty competitor id", ErrInvalidObservation)
	case r.RoomLabel == "":
		return fmt.Errorf("%w: empty room label", ErrInvalidObservation)
	case r.Date.IsZero():
		return fmt.Errorf("%w: missing stay date", ErrInvalidObservation)
	case r.Available && r.Rate <= 0:
		return fmt.Errorf("%w: non-positive rate %.2f", ErrInvalidObservation, r.Rate)
	}
	return nil
}

func (uc *DefaultIngestUsecase) IngestCompetitorRates(ctx context.Context, rates []*domain.CompetitorRate) (int, error) {
	accepted := make([]*domain.CompetitorRate, 0, len(rates))
	for _, r := range rates {
		if err := validateObservation(r); err != nil {
			uc.Logger.Warn("Competitor observation rejected", "competitor_id", r.CompetitorID, "label", r.RoomLabel, "error", err)
			continue
		}
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		if r.ObservedAt.IsZero() {
			r.ObservedAt = uc.Clock()
		}
		r.Date = domain.DateOf(r.Date)
		accepted = append(accepted, r)
	}
	if len(accepted) == 0 {
		return 0, nil
	}
	if err := uc.Writer.CreateRates(ctx, accepted); err != nil {
		return 0, fmt.Errorf("store competitor rates: %w", err)
	}
	uc.Logger.Info("Competitor rates ingested", "accepted", len(accepted), "rejected", len(rates)-len(accepted))
	return len(accepted), nil
}
