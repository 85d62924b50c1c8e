// Package testdb поднимает in-memory sqlite с той же схемой, что и postgres.
package testdb

import (
	"fmt"
	"strings"
	"testing"

	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New открывает отдельную базу на тест и закрывает её в t.Cleanup.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	// одно соединение, иначе in-memory база видна не всем запросам
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(postgres.AllModels()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}
