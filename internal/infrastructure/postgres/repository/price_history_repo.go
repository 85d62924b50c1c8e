package repository

import (
	"context"
	"errors"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

// committedSources - строки, которые могут быть текущей ценой.
var committedSources = []string{string(domain.SourceEngine), string(domain.SourceManualOverride)}

type DefaultPriceHistoryRepository struct {
	DB *gorm.DB
}

func NewDefaultPriceHistoryRepository(db *gorm.DB) *DefaultPriceHistoryRepository {
	return &DefaultPriceHistoryRepository{DB: db}
}

// AppendPrice только добавляет строки; история никогда не переписывается.
func (r *DefaultPriceHistoryRepository) AppendPrice(ctx context.Context, row *domain.PriceHistory) error {
	if !row.Source.Committed() {
		return errors.New("price history accepts only committed sources")
	}
	return r.DB.WithContext(ctx).Create(mappers.ToGORMPriceHistory(row)).Error
}

func (r *DefaultPriceHistoryRepository) GetCurrentPrice(ctx context.Context, roomTypeID string, date time.Time) (*domain.PriceHistory, error) {
	var row models.PriceHistoryModel
	err := r.DB.WithContext(ctx).
		Where("room_type_id = ? AND date = ? AND source IN ?", roomTypeID, domain.DateOf(date), committedSources).
		Order("seq DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNoCurrentPrice
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainPriceHistory(&row), nil
}

func (r *DefaultPriceHistoryRepository) GetPriceHistory(ctx context.Context, roomTypeID string, date time.Time) ([]*domain.PriceHistory, error) {
	var rows []models.PriceHistoryModel
	err := r.DB.WithContext(ctx).
		Where("room_type_id = ? AND date = ?", roomTypeID, domain.DateOf(date)).
		Order("seq").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainPrices(rows), nil
}

// GetCurrentPrices - текущая цена на каждую дату диапазона, где она есть.
func (r *DefaultPriceHistoryRepository) GetCurrentPrices(ctx context.Context, roomTypeID string, from, to time.Time) ([]*domain.PriceHistory, error) {
	latest := r.DB.Model(&models.PriceHistoryModel{}).
		Select("MAX(seq)").
		Where("room_type_id = ? AND date BETWEEN ? AND ? AND source IN ?", roomTypeID, domain.DateOf(from), domain.DateOf(to), committedSources).
		Group("date")

	var rows []models.PriceHistoryModel
	err := r.DB.WithContext(ctx).
		Where("seq IN (?)", latest).
		Order("date").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainPrices(rows), nil
}

func toDomainPrices(rows []models.PriceHistoryModel) []*domain.PriceHistory {
	out := make([]*domain.PriceHistory, 0, len(rows))
	for i := range rows {
		out = append(out, mappers.ToDomainPriceHistory(&rows[i]))
	}
	return out
}
