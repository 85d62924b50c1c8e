package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/app/setup"
	"github.com/LavaJover/shvark-rms-service/internal/config"
	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/spf13/cobra"
)

type app struct {
	deps     *setup.Dependencies
	useCases *setup.UseCases
}

func loadConfig(cmd *cobra.Command) (*config.RMSConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("RMS_CONFIG_PATH")
	}
	if path == "" {
		return nil, fmt.Errorf("config path is required: pass --config or set RMS_CONFIG_PATH")
	}
	return config.Load(path)
}

func bootstrap(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	deps, err := setup.InitializeDependencies(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	useCases, err := setup.InitializeUseCases(deps, nil, nil)
	if err != nil {
		_ = deps.Close()
		return nil, err
	}
	return &app{deps: deps, useCases: useCases}, nil
}

func (a *app) Close() {
	if err := a.deps.Close(); err != nil {
		a.deps.Logger.Warn("Failed to close dependencies", "error", err)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// dateRangeFlags читает --from/--to; пустой --from означает сегодня, пустой --to равен --from + days-1.
func dateRangeFlags(cmd *cobra.Command, days int) (domain.DateRange, error) {
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")

	from := domain.DateOf(time.Now())
	if fromStr != "" {
		parsed, err := domain.ParseDate(fromStr)
		if err != nil {
			return domain.DateRange{}, err
		}
		from = parsed
	}
	to := from.AddDate(0, 0, days-1)
	if toStr != "" {
		parsed, err := domain.ParseDate(toStr)
		if err != nil {
			return domain.DateRange{}, err
		}
		to = parsed
	}
	return domain.NewDateRange(from, to)
}

func withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), timeout)
}
