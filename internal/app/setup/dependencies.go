package setup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-rms-service/internal/config"
	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/events"
	publisher "github.com/LavaJover/shvark-rms-service/internal/infrastructure/kafka"
	rmslogger "github.com/LavaJover/shvark-rms-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/rabbitmq"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config       *config.RMSConfig
	DB           *gorm.DB
	Logger       *slog.Logger
	Registry     *prometheus.Registry
	Metrics      *metrics.RMSMetrics
	Events       domain.EventPublisher
	Subscriber   *publisher.DefaultKafkaSubscriber
	Repositories *Repositories

	closers []func() error
}

type Repositories struct {
	RoomTypeRepo   *repository.DefaultRoomTypeRepository
	BookingRepo    *repository.DefaultBookingRepository
	CompetitorRepo *repository.DefaultCompetitorRateRepository
	EventRepo      *repository.DefaultEventRepository
	ForecastRepo   domain.ForecastRepository
	PriceRepo      domain.PriceHistoryRepository
	ChannelRepo    *repository.DefaultChannelRuleRepository
	PushRepo       domain.PushLogRepository
	CycleRunRepo   *repository.DefaultCycleRunRepository
	CycleRunLogger domain.CycleRunLogger
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		RoomTypeRepo:   repository.NewDefaultRoomTypeRepository(db),
		BookingRepo:    repository.NewDefaultBookingRepository(db),
		CompetitorRepo: repository.NewDefaultCompetitorRateRepository(db),
		EventRepo:      repository.NewDefaultEventRepository(db),
		ForecastRepo:   repository.NewDefaultForecastRepository(db),
		PriceRepo:      repository.NewDefaultPriceHistoryRepository(db),
		ChannelRepo:    repository.NewDefaultChannelRuleRepository(db),
		PushRepo:       repository.NewDefaultPushLogRepository(db),
		CycleRunRepo:   repository.NewDefaultCycleRunRepository(db),
		CycleRunLogger: rmslogger.NewPGCycleRunLogger(db),
	}
}

// NewDependencies собирает зависимости вокруг уже открытой БД (используется тестами и CLI).
func NewDependencies(cfg *config.RMSConfig, db *gorm.DB, logger *slog.Logger, eventPublisher domain.EventPublisher) *Dependencies {
	if logger == nil {
		logger = slog.Default()
	}
	if eventPublisher == nil {
		eventPublisher = domain.NopEventPublisher{}
	}
	registry := prometheus.NewRegistry()
	return &Dependencies{
		Config:       cfg,
		DB:           db,
		Logger:       logger,
		Registry:     registry,
		Metrics:      metrics.NewRMSMetrics(registry),
		Events:       eventPublisher,
		Repositories: NewRepositories(db),
	}
}

func InitializeDependencies(ctx context.Context, cfg *config.RMSConfig) (*Dependencies, error) {
	logger, err := rmslogger.Setup(cfg.LogConfig)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	db := postgres.MustInitDB(cfg)

	port, err := initEventPort(cfg)
	if err != nil {
		return nil, fmt.Errorf("event publisher: %w", err)
	}

	var bus domain.EventPublisher = domain.NopEventPublisher{}
	deps := NewDependencies(cfg, db, logger, nil)
	if port != nil {
		eventBus := events.NewBus(port, cfg.EventsConfig, logger)
		bus = eventBus
		deps.closers = append(deps.closers, eventBus.Close)
	}
	deps.Events = bus

	if cfg.EventsConfig.Driver == "kafka" && cfg.EventsConfig.CompetitorFeedTopic != "" {
		deps.Subscriber = publisher.NewDefaultKafkaSubscriber(kafkaBrokers(cfg), logger)
	}

	logger.Info("Dependencies initialized",
		"env", cfg.Env,
		"events_driver", cfg.EventsConfig.Driver,
		"competitor_feed", cfg.EventsConfig.CompetitorFeedTopic)
	return deps, nil
}

func kafkaBrokers(cfg *config.RMSConfig) []string {
	return []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
}

func initEventPort(cfg *config.RMSConfig) (domain.PublisherPort, error) {
	switch cfg.EventsConfig.Driver {
	case "kafka":
		return publisher.NewDefaultKafkaPublisher(kafkaBrokers(cfg)), nil
	case "amqp":
		p, err := rabbitmq.NewPublisher(cfg.RabbitService.URL)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, nil
}

func (d *Dependencies) Close() error {
	var firstErr error
	for _, closeFn := range d.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if sqlDB, err := d.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
