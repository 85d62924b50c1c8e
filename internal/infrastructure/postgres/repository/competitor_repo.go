package repository

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultCompetitorRateRepository struct {
	DB *gorm.DB
}

func NewDefaultCompetitorRateRepository(db *gorm.DB) *DefaultCompetitorRateRepository {
	return &DefaultCompetitorRateRepository{DB: db}
}

func (r *DefaultCompetitorRateRepository) GetRatesForDate(ctx context.Context, date time.Time) ([]*domain.CompetitorRate, error) {
	var rows []models.CompetitorRateModel
	err := r.DB.WithContext(ctx).
		Where("date = ?", domain.DateOf(date)).
		Order("competitor_id, observed_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	rates := make([]*domain.CompetitorRate, 0, len(rows))
	for i := range rows {
		rates = append(rates, mappers.ToDomainCompetitorRate(&rows[i]))
	}
	return rates, nil
}

func (r *DefaultCompetitorRateRepository) CreateRates(ctx context.Context, rates []*domain.CompetitorRate) error {
	if len(rates) == 0 {
		return nil
	}
	rows := make([]*models.CompetitorRateModel, 0, len(rates))
	for _, rate := range rates {
		rows = append(rows, mappers.ToGORMCompetitorRate(rate))
	}
	return r.DB.WithContext(ctx).CreateInBatches(rows, 500).Error
}

type DefaultEventRepository struct {
	DB *gorm.DB
}

func NewDefaultEventRepository(db *gorm.DB) *DefaultEventRepository {
	return &DefaultEventRepository{DB: db}
}

// GetEventsBetween возвращает события, пересекающиеся с [from, to].
func (r *DefaultEventRepository) GetEventsBetween(ctx context.Context, from, to time.Time) ([]*domain.EventMultiplier, error) {
	var rows []models.EventMultiplierModel
	err := r.DB.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ?", domain.DateOf(to), domain.DateOf(from)).
		Order("start_date, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	events := make([]*domain.EventMultiplier, 0, len(rows))
	for i := range rows {
		events = append(events, mappers.ToDomainEvent(&rows[i]))
	}
	return events, nil
}

func (r *DefaultEventRepository) SaveEvent(ctx context.Context, event *domain.EventMultiplier) error {
	return r.DB.WithContext(ctx).Save(mappers.ToGORMEvent(event)).Error
}
