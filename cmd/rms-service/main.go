package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/app/background"
	"github.com/LavaJover/shvark-rms-service/internal/app/setup"
	"github.com/LavaJover/shvark-rms-service/internal/config"
	"github.com/LavaJover/shvark-rms-service/internal/delivery/grpcapi"
	rmshttp "github.com/LavaJover/shvark-rms-service/internal/delivery/http"
	"github.com/LavaJover/shvark-rms-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-rms-service/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/tracing"
	"github.com/joho/godotenv"
	"google.golang.org/grpc"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setup.InitializeDependencies(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init dependencies: %v", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			deps.Logger.Error("Failed to close dependencies", "error", err)
		}
	}()
	logger := deps.Logger

	if err := migrate.RunMigrations(deps.DB, cfg.RMSDB.MigrationsPath); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, "rms-service")
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	}

	useCases, err := setup.InitializeUseCases(deps, nil, nil)
	if err != nil {
		log.Fatalf("failed to init usecases: %v", err)
	}

	// Creating gRPC server
	grpcServer := grpc.NewServer()
	revenueHandler := grpcapi.NewRevenueHandler(
		useCases.CycleUsecase,
		useCases.PricingUsecase,
		useCases.ChannelUsecase,
		useCases.SimulationUsecase,
		cfg.Channel.ParityTolerance,
		logger,
	)
	grpcapi.RegisterRevenueServiceServer(grpcServer, revenueHandler)

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%s", cfg.GRPCServer.Host, cfg.GRPCServer.Port))
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	// Dashboard API
	rdb, err := middleware.NewRedisClient(ctx, cfg.RedisCache)
	if err != nil {
		logger.Warn("Response cache disabled", "error", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}
	dashboardHandler := handlers.NewDashboardHandler(
		useCases.ForecastUsecase,
		useCases.PricingUsecase,
		useCases.ChannelUsecase,
		deps.Repositories.CycleRunRepo,
		cfg.Channel.ParityTolerance,
		nil,
	)
	router := rmshttp.NewRouter(dashboardHandler, middleware.NewRedisCache(cfg.RedisCache, rdb, logger), deps.Registry, logger)

	// Плановый цикл и фид конкурентов
	var subscriber background.MessageSubscriber
	if deps.Subscriber != nil {
		subscriber = deps.Subscriber
	}
	tasks := background.NewBackgroundTasks(
		useCases.CycleUsecase,
		useCases.IngestUsecase,
		subscriber,
		cfg.Cycle.Interval,
		cfg.EventsConfig.CompetitorFeedTopic,
		cfg.EventsConfig.ConsumerGroup,
		logger,
	)
	tasks.StartAll(ctx)

	go func() {
		logger.Info("gRPC server started", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server stopped", "error", err)
			stop()
		}
	}()

	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
		logger.Info("HTTP server started", "addr", addr)
		if err := router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := router.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("Tracing shutdown failed", "error", err)
		}
	}
}
