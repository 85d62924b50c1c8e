package models

import "time"

type ChannelRuleModel struct {
	ChannelID          string `gorm:"primaryKey"`
	DisplayName        string
	CommissionPct      float64
	LoyaltyDiscountPct float64
	IsDirect           bool
	Active             bool
}

func (ChannelRuleModel) TableName() string { return "channel_rules" }

type PushLogModel struct {
	Seq                uint64    `gorm:"primaryKey;autoIncrement"`
	ID                 string    `gorm:"type:uuid;uniqueIndex"`
	ChannelID          string    `gorm:"index"`
	RoomTypeID         string    `gorm:"index:idx_push_key"`
	Date               time.Time `gorm:"type:date;index:idx_push_key"`
	PublishedRate      float64
	GuestDisplayPrice  float64
	HotelNetPrice      float64
	CommissionPct      float64
	LoyaltyDiscountPct float64
	Status             string `gorm:"index"`
	StatusCode         int
	Message            string
	Reference          string
	PushedAt           time.Time `gorm:"index"`
}

func (PushLogModel) TableName() string { return "push_log" }
