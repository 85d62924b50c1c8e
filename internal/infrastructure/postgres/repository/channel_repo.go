package repository

import (
	"context"
	"errors"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultChannelRuleRepository struct {
	DB *gorm.DB
}

func NewDefaultChannelRuleRepository(db *gorm.DB) *DefaultChannelRuleRepository {
	return &DefaultChannelRuleRepository{DB: db}
}

func (r *DefaultChannelRuleRepository) GetChannelRules(ctx context.Context) ([]*domain.ChannelRule, error) {
	var rows []models.ChannelRuleModel
	if err := r.DB.WithContext(ctx).Order("channel_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	rules := make([]*domain.ChannelRule, 0, len(rows))
	for i := range rows {
		rules = append(rules, mappers.ToDomainChannelRule(&rows[i]))
	}
	return rules, nil
}

func (r *DefaultChannelRuleRepository) GetChannelRule(ctx context.Context, channelID string) (*domain.ChannelRule, error) {
	var row models.ChannelRuleModel
	err := r.DB.WithContext(ctx).First(&row, "channel_id = ?", channelID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrChannelNotFound
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainChannelRule(&row), nil
}

func (r *DefaultChannelRuleRepository) SaveChannelRule(ctx context.Context, rule *domain.ChannelRule) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "channel_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"display_name", "commission_pct", "loyalty_discount_pct", "is_direct", "active",
			}),
		}).
		Create(mappers.ToGORMChannelRule(rule)).Error
}

type DefaultPushLogRepository struct {
	DB *gorm.DB
}

func NewDefaultPushLogRepository(db *gorm.DB) *DefaultPushLogRepository {
	return &DefaultPushLogRepository{DB: db}
}

func (r *DefaultPushLogRepository) AppendPush(ctx context.Context, entry *domain.PushLogEntry) error {
	return r.DB.WithContext(ctx).Create(mappers.ToGORMPushLog(entry)).Error
}

// GetLatestPushes - последний пуш каждого канала по ключу с заданным статусом.
func (r *DefaultPushLogRepository) GetLatestPushes(ctx context.Context, roomTypeID string, date time.Time, status domain.PushStatus) ([]*domain.PushLogEntry, error) {
	latest := r.DB.Model(&models.PushLogModel{}).
		Select("MAX(seq)").
		Where("room_type_id = ? AND date = ? AND status = ?", roomTypeID, domain.DateOf(date), string(status)).
		Group("channel_id")

	var rows []models.PushLogModel
	err := r.DB.WithContext(ctx).
		Where("seq IN (?)", latest).
		Order("channel_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainPushes(rows), nil
}

func (r *DefaultPushLogRepository) GetPushLog(ctx context.Context, filter domain.PushLogFilter) ([]*domain.PushLogEntry, error) {
	query := r.DB.WithContext(ctx).Model(&models.PushLogModel{})
	if filter.ChannelID != nil {
		query = query.Where("channel_id = ?", *filter.ChannelID)
	}
	if filter.RoomTypeID != nil {
		query = query.Where("room_type_id = ?", *filter.RoomTypeID)
	}
	if filter.Date != nil {
		query = query.Where("date = ?", domain.DateOf(*filter.Date))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	var rows []models.PushLogModel
	if err := query.Order("seq DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainPushes(rows), nil
}

func (r *DefaultPushLogRepository) GetPushesSince(ctx context.Context, since time.Time) ([]*domain.PushLogEntry, error) {
	var rows []models.PushLogModel
	err := r.DB.WithContext(ctx).
		Where("pushed_at >= ?", since.UTC()).
		Order("seq").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainPushes(rows), nil
}

func toDomainPushes(rows []models.PushLogModel) []*domain.PushLogEntry {
	out := make([]*domain.PushLogEntry, 0, len(rows))
	for i := range rows {
		out = append(out, mappers.ToDomainPushLog(&rows[i]))
	}
	return out
}
