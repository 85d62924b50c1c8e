package repository

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultBookingRepository struct {
	DB *gorm.DB
}

func NewDefaultBookingRepository(db *gorm.DB) *DefaultBookingRepository {
	return &DefaultBookingRepository{DB: db}
}

// GetBookingsByRoomType возвращает брони, чьё проживание пересекается с [from, to].
func (r *DefaultBookingRepository) GetBookingsByRoomType(ctx context.Context, roomTypeID string, from, to time.Time) ([]*domain.Booking, error) {
	var rows []models.BookingModel
	err := r.DB.WithContext(ctx).
		Where("room_type_id = ?", roomTypeID).
		Where("check_in <= ? AND check_out > ?", domain.DateOf(to), domain.DateOf(from)).
		Order("check_in, created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainBookings(rows), nil
}

func (r *DefaultBookingRepository) GetBookingsCreatedBetween(ctx context.Context, roomTypeID string, from, to time.Time) ([]*domain.Booking, error) {
	var rows []models.BookingModel
	err := r.DB.WithContext(ctx).
		Where("room_type_id = ?", roomTypeID).
		Where("created_at >= ? AND created_at <= ?", from.UTC(), to.UTC()).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainBookings(rows), nil
}

func (r *DefaultBookingRepository) CreateBookings(ctx context.Context, bookings []*domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	rows := make([]*models.BookingModel, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, mappers.ToGORMBooking(b))
	}
	return r.DB.WithContext(ctx).CreateInBatches(rows, 500).Error
}

func toDomainBookings(rows []models.BookingModel) []*domain.Booking {
	bookings := make([]*domain.Booking, 0, len(rows))
	for i := range rows {
		bookings = append(bookings, mappers.ToDomainBooking(&rows[i]))
	}
	return bookings
}
