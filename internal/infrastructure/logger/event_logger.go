package logger

import (
	"context"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/mappers"
	"gorm.io/gorm"
)

// PGCycleRunLogger пишет итог каждого цикла в cycle_runs.
type PGCycleRunLogger struct {
	db *gorm.DB
}

func NewPGCycleRunLogger(db *gorm.DB) *PGCycleRunLogger {
	return &PGCycleRunLogger{db: db}
}

func (l *PGCycleRunLogger) LogCycleRun(ctx context.Context, summary *domain.CycleSummary) error {
	return l.db.WithContext(ctx).Create(mappers.ToGORMCycleRun(summary)).Error
}
