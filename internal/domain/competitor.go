package domain

import (
	"context"
	"time"
)

type CompetitorRate struct {
	ID           string
	CompetitorID string
	RoomLabel    string
	Date         time.Time
	Rate         float64
	Available    bool
	ObservedAt   time.Time
}

type Staleness string

const (
	StalenessFresh   Staleness = "fresh"
	StalenessStale   Staleness = "stale"
	StalenessMissing Staleness = "missing"
)

type CompetitorIndex struct {
	RoomTypeID       string
	Date             time.Time
	Index            float64
	Staleness        Staleness
	MedianRate       float64
	FreshCompetitors int
	StaleCompetitors int
	MappingMisses    int
}

type CompetitorRateRepository interface {
	GetRatesForDate(ctx context.Context, date time.Time) ([]*CompetitorRate, error)
}

// CompetitorRateWriter - вход для фида наблюдений конкурентов.
type CompetitorRateWriter interface {
	CreateRates(ctx context.Context, rates []*CompetitorRate) error
}
