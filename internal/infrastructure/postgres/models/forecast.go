package models

import "time"

// ForecastModel - одна строка на (room_type_id, date), перегенерация перезаписывает её.
type ForecastModel struct {
	RoomTypeID       string    `gorm:"primaryKey"`
	Date             time.Time `gorm:"primaryKey;type:date"`
	ForecastedDemand float64
	RawDemand        float64
	PaceRatio        float64
	EventUplift      float64
	Confidence       float64
	Sample           int
	LeadDays         int
	Model            string
	GeneratedAt      time.Time
}

func (ForecastModel) TableName() string { return "forecasts" }

type ForecastSnapshotModel struct {
	Seq         uint64    `gorm:"primaryKey;autoIncrement"`
	ID          string    `gorm:"type:uuid;uniqueIndex"`
	RoomTypeID  string    `gorm:"index:idx_snapshot_key"`
	Date        time.Time `gorm:"type:date;index:idx_snapshot_key"`
	RawDemand   float64
	Fingerprint string
	CreatedAt   time.Time
}

func (ForecastSnapshotModel) TableName() string { return "forecast_snapshots" }
