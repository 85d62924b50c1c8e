package models

import "time"

type CompetitorRateModel struct {
	ID           string `gorm:"primaryKey"`
	CompetitorID string `gorm:"index"`
	RoomLabel    string
	Date         time.Time `gorm:"type:date;index"`
	Rate         float64
	Available    bool
	ObservedAt   time.Time
}

func (CompetitorRateModel) TableName() string { return "competitor_rates" }

type EventMultiplierModel struct {
	ID         string `gorm:"primaryKey"`
	Label      string
	StartDate  time.Time `gorm:"type:date;index"`
	EndDate    time.Time `gorm:"type:date;index"`
	Multiplier float64
}

func (EventMultiplierModel) TableName() string { return "event_multipliers" }
