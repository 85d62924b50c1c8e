package repository

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultCycleRunRepository struct {
	DB *gorm.DB
}

func NewDefaultCycleRunRepository(db *gorm.DB) *DefaultCycleRunRepository {
	return &DefaultCycleRunRepository{DB: db}
}

func (r *DefaultCycleRunRepository) GetCycleRun(ctx context.Context, runID string) (*domain.CycleSummary, error) {
	var row models.CycleRunModel
	err := r.DB.WithContext(ctx).First(&row, "id = ?", runID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCycleRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainCycleRun(&row), nil
}

func (r *DefaultCycleRunRepository) GetRecentCycleRuns(ctx context.Context, limit int) ([]*domain.CycleSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []models.CycleRunModel
	if err := r.DB.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.CycleSummary, 0, len(rows))
	for i := range rows {
		out = append(out, mappers.ToDomainCycleRun(&rows[i]))
	}
	return out, nil
}
