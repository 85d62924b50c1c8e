package domain

import (
	"context"
	"time"
)

type Booking struct {
	ID         string
	RoomTypeID string
	CheckIn    time.Time
	CheckOut   time.Time
	Rate       float64
	Channel    string
	CreatedAt  time.Time
}

// Covers сообщает, проживает ли гость в ночь на day (check_in <= day < check_out).
func (b *Booking) Covers(day time.Time) bool {
	day = DateOf(day)
	return !day.Before(DateOf(b.CheckIn)) && day.Before(DateOf(b.CheckOut))
}

// LeadDays is the number of days between booking creation and arrival.
func (b *Booking) LeadDays() int {
	return LeadDays(b.CreatedAt, b.CheckIn)
}

type BookingRepository interface {
	// GetBookingsByRoomType returns bookings for the room type with a stay overlapping [from, to].
	GetBookingsByRoomType(ctx context.Context, roomTypeID string, from, to time.Time) ([]*Booking, error)
	GetBookingsCreatedBetween(ctx context.Context, roomTypeID string, from, to time.Time) ([]*Booking, error)
}
