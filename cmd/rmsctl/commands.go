package main

import (
	"fmt"
	"strconv"

	"github.com/LavaJover/shvark-rms-service/internal/app/seed"
	"github.com/LavaJover/shvark-rms-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-rms-service/internal/usecase"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, path, err := openDB(cmd)
			if err != nil {
				return err
			}
			return migrate.RunMigrations(db, path)
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last N migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			db, path, err := openDB(cmd)
			if err != nil {
				return err
			}
			return migrate.RollbackMigrations(db, path, steps)
		},
	}
	down.Flags().Int("steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}

// openDB открывает только БД: миграциям не нужны шина событий и usecase-ы.
func openDB(cmd *cobra.Command) (*gorm.DB, string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}
	db, err := gorm.Open(postgres.Open(cfg.RMSDB.Dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, "", fmt.Errorf("open database: %w", err)
	}
	return db, cfg.RMSDB.MigrationsPath, nil
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo room types, channels, competitor rates and bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			seedValue, _ := cmd.Flags().GetUint64("seed")
			history, _ := cmd.Flags().GetInt("history")
			horizon, _ := cmd.Flags().GetInt("horizon")
			skipBookings, _ := cmd.Flags().GetBool("skip-bookings")

			repos := a.deps.Repositories
			seeder := seed.NewSeeder(repos.RoomTypeRepo, repos.BookingRepo, repos.CompetitorRepo, repos.EventRepo, repos.ChannelRepo, a.deps.Logger)
			return seeder.Run(cmd.Context(), seed.Options{
				Seed:         seedValue,
				HistoryDays:  history,
				HorizonDays:  horizon,
				SkipBookings: skipBookings,
			})
		},
	}
	cmd.Flags().Uint64("seed", 42, "random seed")
	cmd.Flags().Int("history", 90, "days of booking history")
	cmd.Flags().Int("horizon", 30, "days of future competitor rates")
	cmd.Flags().Bool("skip-bookings", false, "do not generate bookings")
	return cmd
}

func cycleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Run one reprice cycle: forecast, price and push",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			roomTypes, _ := cmd.Flags().GetStringSlice("room-type")
			channels, _ := cmd.Flags().GetStringSlice("channel")
			force, _ := cmd.Flags().GetBool("force")
			verbose, _ := cmd.Flags().GetBool("results")

			req := domain.CycleRequest{
				RoomTypeIDs: roomTypes,
				ChannelIDs:  channels,
				Force:       force,
				Trigger:     "cli",
			}
			if cmd.Flags().Changed("from") || cmd.Flags().Changed("to") {
				dates, err := dateRangeFlags(cmd, a.deps.Config.Cycle.HorizonDays)
				if err != nil {
					return err
				}
				req.Range = &dates
			}

			ctx, cancel := withTimeout(cmd)
			defer cancel()
			summary, err := a.useCases.CycleUsecase.RunCycle(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(cmd, response.FromCycleSummary(summary, verbose))
		},
	}
	cmd.Flags().StringSlice("room-type", nil, "room types to reprice (default all)")
	cmd.Flags().StringSlice("channel", nil, "channels to push to (default all active)")
	cmd.Flags().String("from", "", "first stay date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "last stay date (YYYY-MM-DD)")
	cmd.Flags().Bool("force", false, "reprice keys with a manual override")
	cmd.Flags().Bool("results", false, "print per-key results")
	cmd.Flags().Duration("timeout", 0, "cancel the cycle after this duration")
	return cmd
}

func priceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "price ROOM_TYPE DATE",
		Short: "Recompute and publish the rate for one key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := domain.ParseDate(args[1])
			if err != nil {
				return err
			}
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			row, err := a.useCases.PricingUsecase.Price(cmd.Context(), args[0], date, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd, response.FromPrice(row))
		},
	}
}

func overrideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "override ROOM_TYPE DATE RATE",
		Short: "Publish a manual rate, clamped to the room's bounds",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := domain.ParseDate(args[1])
			if err != nil {
				return err
			}
			rate, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid rate %q: %w", args[2], err)
			}
			actor, _ := cmd.Flags().GetString("actor")
			reason, _ := cmd.Flags().GetString("reason")

			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			row, err := a.useCases.PricingUsecase.OverridePrice(cmd.Context(), usecase.OverridePriceInput{
				RoomTypeID: args[0],
				Date:       date,
				Rate:       rate,
				Actor:      actor,
				Reason:     reason,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, response.FromPrice(row))
		},
	}
	cmd.Flags().String("actor", "cli", "who made the override")
	cmd.Flags().String("reason", "", "free-text reason")
	return cmd
}

type simulationStep struct {
	Date       string                    `json:"date"`
	Forecast   *response.Forecast        `json:"forecast,omitempty"`
	Competitor *response.CompetitorIndex `json:"competitor,omitempty"`
	Price      *response.Price           `json:"price,omitempty"`
	Channels   []response.Push           `json:"channels,omitempty"`
	Error      string                    `json:"error,omitempty"`
}

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate ROOM_TYPE",
		Short: "Dry-run the pricing pipeline over a date range without saving anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			dates, err := dateRangeFlags(cmd, 14)
			if err != nil {
				return err
			}
			demand, _ := cmd.Flags().GetFloat64("demand")
			shift, _ := cmd.Flags().GetFloat64("demand-shift")
			shock, _ := cmd.Flags().GetFloat64("competitor-shock")
			channels, _ := cmd.Flags().GetStringSlice("channel")
			preview, _ := cmd.Flags().GetBool("channels")

			overrides := domain.SimulationOverrides{
				DemandMultiplier: demand,
				DemandShift:      shift,
				CompetitorShock:  shock,
			}
			if preview || len(channels) > 0 {
				overrides.Channels = append([]string{}, channels...)
			}
			if cmd.Flags().Changed("event-uplift") {
				uplift, _ := cmd.Flags().GetFloat64("event-uplift")
				overrides.EventUplift = &uplift
			}

			ctx, cancel := withTimeout(cmd)
			defer cancel()

			var steps []simulationStep
			for step, stepErr := range a.useCases.SimulationUsecase.Simulate(ctx, args[0], dates, overrides) {
				if step == nil {
					return stepErr
				}
				out := simulationStep{Date: step.Date.Format(domain.DateLayout)}
				if stepErr != nil {
					out.Error = stepErr.Error()
				}
				if step.Forecast != nil {
					f := response.FromForecast(step.Forecast)
					out.Forecast = &f
				}
				out.Competitor = response.FromCompetitorIndex(step.Competitor)
				if step.Price != nil {
					p := response.FromPrice(step.Price)
					out.Price = &p
				}
				if step.Channels != nil {
					out.Channels = response.FromPushes(step.Channels)
				}
				steps = append(steps, out)
			}
			return printJSON(cmd, steps)
		},
	}
	cmd.Flags().String("from", "", "first stay date (YYYY-MM-DD, default today)")
	cmd.Flags().String("to", "", "last stay date (YYYY-MM-DD, default from+13)")
	cmd.Flags().Float64("demand", 0, "demand multiplier (0 keeps the forecast)")
	cmd.Flags().Float64("demand-shift", 0, "additive demand shift")
	cmd.Flags().Float64("competitor-shock", 0, "competitor index multiplier (0 keeps the index)")
	cmd.Flags().Float64("event-uplift", 0, "force the event uplift for every day")
	cmd.Flags().StringSlice("channel", nil, "preview prices for these channels")
	cmd.Flags().Bool("channels", false, "preview prices for all active channels")
	cmd.Flags().Duration("timeout", 0, "stop the simulation after this duration")
	return cmd
}

func parityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parity ROOM_TYPE DATE",
		Short: "Compare channel guest prices against the direct rate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := domain.ParseDate(args[1])
			if err != nil {
				return err
			}
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			tolerance := a.deps.Config.Channel.ParityTolerance
			if cmd.Flags().Changed("tolerance") {
				tolerance, _ = cmd.Flags().GetFloat64("tolerance")
			}
			flag, err := a.useCases.ChannelUsecase.CheckParity(cmd.Context(), args[0], date, tolerance)
			if err != nil {
				return err
			}
			return printJSON(cmd, response.FromParityFlag(flag))
		},
	}
	cmd.Flags().Float64("tolerance", 0, "allowed absolute difference (default from config)")
	return cmd
}

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs [RUN_ID]",
		Short: "Show recent reprice cycle runs, or one run with its results",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			runs := a.deps.Repositories.CycleRunRepo
			if len(args) == 1 {
				summary, err := runs.GetCycleRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, response.FromCycleSummary(summary, true))
			}
			limit, _ := cmd.Flags().GetInt("limit")
			summaries, err := runs.GetRecentCycleRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := make([]response.CycleSummary, 0, len(summaries))
			for _, s := range summaries {
				out = append(out, response.FromCycleSummary(s, false))
			}
			return printJSON(cmd, out)
		},
	}
	cmd.Flags().Int("limit", 20, "number of runs to list")
	return cmd
}
