package repository

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultRoomTypeRepository struct {
	DB *gorm.DB
}

func NewDefaultRoomTypeRepository(db *gorm.DB) *DefaultRoomTypeRepository {
	return &DefaultRoomTypeRepository{DB: db}
}

func (r *DefaultRoomTypeRepository) GetRoomTypes(ctx context.Context) ([]*domain.RoomType, error) {
	var rows []models.RoomTypeModel
	if err := r.DB.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	roomTypes := make([]*domain.RoomType, 0, len(rows))
	for i := range rows {
		roomTypes = append(roomTypes, mappers.ToDomainRoomType(&rows[i]))
	}
	return roomTypes, nil
}

func (r *DefaultRoomTypeRepository) GetRoomTypeByID(ctx context.Context, roomTypeID string) (*domain.RoomType, error) {
	var row models.RoomTypeModel
	err := r.DB.WithContext(ctx).First(&row, "id = ?", roomTypeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRoomTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainRoomType(&row), nil
}

func (r *DefaultRoomTypeRepository) GetInventoryUnits(ctx context.Context, roomTypeID string) ([]*domain.InventoryUnit, error) {
	var rows []models.InventoryUnitModel
	if err := r.DB.WithContext(ctx).Where("room_type_id = ?", roomTypeID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	units := make([]*domain.InventoryUnit, 0, len(rows))
	for i := range rows {
		units = append(units, mappers.ToDomainInventoryUnit(&rows[i]))
	}
	return units, nil
}

// SaveRoomType создаёт или обновляет тип номера (используется сидером и тестами).
func (r *DefaultRoomTypeRepository) SaveRoomType(ctx context.Context, rt *domain.RoomType) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(mappers.ToGORMRoomType(rt)).Error
}

func (r *DefaultRoomTypeRepository) SaveInventoryUnit(ctx context.Context, unit *domain.InventoryUnit) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&models.InventoryUnitModel{
		ID:         unit.ID,
		RoomTypeID: unit.RoomTypeID,
		Status:     string(unit.Status),
	}).Error
}
