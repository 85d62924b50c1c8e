package models

import "time"

type BookingModel struct {
	ID         string    `gorm:"primaryKey"`
	RoomTypeID string    `gorm:"index:idx_booking_stay"`
	CheckIn    time.Time `gorm:"type:date;index:idx_booking_stay"`
	CheckOut   time.Time `gorm:"type:date"`
	Rate       float64
	Channel    string
	CreatedAt  time.Time `gorm:"index"`
}

func (BookingModel) TableName() string { return "bookings" }
