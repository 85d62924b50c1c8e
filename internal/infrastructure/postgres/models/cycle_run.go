package models

import (
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
)

type CycleRunModel struct {
	ID           string `gorm:"primaryKey"`
	TriggeredBy  string
	StartedAt    time.Time `gorm:"index"`
	FinishedAt   time.Time
	Priced       int
	Skipped      int
	Failed       int
	Canceled     int
	PushFailures int
	Results      []domain.KeyResult   `gorm:"serializer:json"`
	Failures     []domain.PushFailure `gorm:"serializer:json"`
}

func (CycleRunModel) TableName() string { return "cycle_runs" }
