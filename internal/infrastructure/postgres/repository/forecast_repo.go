package repository

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultForecastRepository struct {
	DB *gorm.DB
}

func NewDefaultForecastRepository(db *gorm.DB) *DefaultForecastRepository {
	return &DefaultForecastRepository{DB: db}
}

func (r *DefaultForecastRepository) UpsertForecast(ctx context.Context, record *domain.ForecastRecord) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_type_id"}, {Name: "date"}},
		UpdateAll: true,
	}).Create(mappers.ToGORMForecast(record)).Error
}

func (r *DefaultForecastRepository) GetForecast(ctx context.Context, roomTypeID string, date time.Time) (*domain.ForecastRecord, error) {
	var row models.ForecastModel
	err := r.DB.WithContext(ctx).
		Where("room_type_id = ? AND date = ?", roomTypeID, domain.DateOf(date)).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrForecastNotFound
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainForecast(&row), nil
}

func (r *DefaultForecastRepository) GetForecasts(ctx context.Context, roomTypeID string, from, to time.Time) ([]*domain.ForecastRecord, error) {
	var rows []models.ForecastModel
	err := r.DB.WithContext(ctx).
		Where("room_type_id = ? AND date BETWEEN ? AND ?", roomTypeID, domain.DateOf(from), domain.DateOf(to)).
		Order("date").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	records := make([]*domain.ForecastRecord, 0, len(rows))
	for i := range rows {
		records = append(records, mappers.ToDomainForecast(&rows[i]))
	}
	return records, nil
}

// GetLatestSnapshots отдаёт до limit последних снимков, от старых к новым.
func (r *DefaultForecastRepository) GetLatestSnapshots(ctx context.Context, roomTypeID string, date time.Time, limit int) ([]*domain.ForecastSnapshot, error) {
	var rows []models.ForecastSnapshotModel
	q := r.DB.WithContext(ctx).
		Where("room_type_id = ? AND date = ?", roomTypeID, domain.DateOf(date)).
		Order("seq DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	slices.Reverse(rows)

	snapshots := make([]*domain.ForecastSnapshot, 0, len(rows))
	for i := range rows {
		snapshots = append(snapshots, mappers.ToDomainSnapshot(&rows[i]))
	}
	return snapshots, nil
}

func (r *DefaultForecastRepository) AppendSnapshot(ctx context.Context, snapshot *domain.ForecastSnapshot) error {
	return r.DB.WithContext(ctx).Create(mappers.ToGORMSnapshot(snapshot)).Error
}
