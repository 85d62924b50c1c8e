package models

import (
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
)

// PriceHistoryModel - append-only журнал. Текущая цена - строка с максимальным seq.
type PriceHistoryModel struct {
	Seq           uint64    `gorm:"primaryKey;autoIncrement"`
	ID            string    `gorm:"type:uuid;uniqueIndex"`
	RoomTypeID    string    `gorm:"index:idx_price_key"`
	Date          time.Time `gorm:"type:date;index:idx_price_key"`
	PublishedRate float64
	Floor         float64
	Ceiling       float64
	Coefficients  domain.Coefficients    `gorm:"serializer:json"`
	Components    domain.PriceComponents `gorm:"serializer:json"`
	Source        string                 `gorm:"index"`
	Actor         string
	Reason        string
	CreatedAt     time.Time
}

func (PriceHistoryModel) TableName() string { return "price_history" }
