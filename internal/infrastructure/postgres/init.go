package postgres

import (
	"log"

	"github.com/LavaJover/shvark-rms-service/internal/config"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AllModels - таблицы сервиса в порядке создания.
func AllModels() []any {
	return []any{
		&models.RoomTypeModel{},
		&models.InventoryUnitModel{},
		&models.BookingModel{},
		&models.CompetitorRateModel{},
		&models.EventMultiplierModel{},
		&models.ForecastModel{},
		&models.ForecastSnapshotModel{},
		&models.PriceHistoryModel{},
		&models.ChannelRuleModel{},
		&models.PushLogModel{},
		&models.CycleRunModel{},
	}
}

func MustInitDB(cfg *config.RMSConfig) *gorm.DB {
	dsn := cfg.RMSDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	// основной путь - SQL-миграции, AutoMigrate для локального запуска
	if cfg.RMSDB.AutoMigrate {
		if err := db.AutoMigrate(AllModels()...); err != nil {
			log.Fatalf("failed to automigrate: %v\n", err.Error())
		}
	}

	return db
}
