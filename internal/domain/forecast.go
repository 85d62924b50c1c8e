package domain

import (
	"context"
	"time"
)

type ForecastModelKind string

const (
	ForecastBucket   ForecastModelKind = "dow_lead_bucket"
	ForecastGlobal   ForecastModelKind = "global_baseline"
	ForecastFallback ForecastModelKind = "fallback"
)

type ForecastRecord struct {
	RoomTypeID       string
	Date             time.Time
	ForecastedDemand float64
	RawDemand        float64
	PaceRatio        float64
	EventUplift      float64
	Confidence       float64
	Sample           int
	LeadDays         int
	Model            ForecastModelKind
	GeneratedAt      time.Time
}

// ForecastSnapshot хранит сырые значения прошлых генераций для сглаживания.
type ForecastSnapshot struct {
	ID          string
	RoomTypeID  string
	Date        time.Time
	RawDemand   float64
	Fingerprint string
	CreatedAt   time.Time
}

type ForecastRepository interface {
	UpsertForecast(ctx context.Context, record *ForecastRecord) error
	GetForecast(ctx context.Context, roomTypeID string, date time.Time) (*ForecastRecord, error)
	GetForecasts(ctx context.Context, roomTypeID string, from, to time.Time) ([]*ForecastRecord, error)

	// GetLatestSnapshots returns up to limit snapshots, oldest first.
	GetLatestSnapshots(ctx context.Context, roomTypeID string, date time.Time, limit int) ([]*ForecastSnapshot, error)
	AppendSnapshot(ctx context.Context, snapshot *ForecastSnapshot) error
}
