package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RoundCents округляет ставку до центов (half away from zero).
func RoundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

type PriceSource string

const (
	SourceEngine         PriceSource = "engine"
	SourceManualOverride PriceSource = "manual_override"
	SourceSimulation     PriceSource = "simulation"
)

func (s PriceSource) Committed() bool {
	return s == SourceEngine || s == SourceManualOverride
}

type Coefficients struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
	Delta float64 `json:"delta"`
}

// PriceComponents - разложение формулы на множители для аудита и дашборда.
type PriceComponents struct {
	BaseRate            float64 `json:"base_rate"`
	ForecastedDemand    float64 `json:"forecasted_demand"`
	BaselineDemand      float64 `json:"baseline_demand"`
	CompetitorIndex     float64 `json:"competitor_index"`
	EventMultiplier     float64 `json:"event_multiplier"`
	TimeToArrivalFactor float64 `json:"time_to_arrival_factor"`
	DemandFactor        float64 `json:"demand_factor"`
	CompetitorFactor    float64 `json:"competitor_factor"`
	EventFactor         float64 `json:"event_factor"`
	TimeFactor          float64 `json:"time_factor"`
	RawRate             float64 `json:"raw_rate"`
	Clamped             bool    `json:"clamped"`
}

type PriceHistory struct {
	ID            string
	RoomTypeID    string
	Date          time.Time
	PublishedRate float64
	Floor         float64
	Ceiling       float64
	Coefficients  Coefficients
	Components    PriceComponents
	Source        PriceSource
	Actor         string
	Reason        string
	CreatedAt     time.Time
}

type PriceSummary struct {
	RoomTypeID string
	From       time.Time
	To         time.Time
	BaseRate   float64
	AvgRate    float64
	MinRate    float64
	MaxRate    float64
	StdDev     float64
	Days       int
}

type PriceHistoryRepository interface {
	AppendPrice(ctx context.Context, row *PriceHistory) error
	// GetCurrentPrice returns the newest committed (non-simulation) row for the key.
	GetCurrentPrice(ctx context.Context, roomTypeID string, date time.Time) (*PriceHistory, error)
	GetPriceHistory(ctx context.Context, roomTypeID string, date time.Time) ([]*PriceHistory, error)
	GetCurrentPrices(ctx context.Context, roomTypeID string, from, to time.Time) ([]*PriceHistory, error)
}
