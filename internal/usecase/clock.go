package usecase

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
)

// Clock - единственный источник "сейчас" для usecase-слоя.
type Clock func() time.Time

func SystemClock() time.Time { return time.Now().UTC() }

var tracer = otel.Tracer("github.com/LavaJover/shvark-rms-service/internal/usecase")

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func orSystem(clock Clock) Clock {
	if clock == nil {
		return SystemClock
	}
	return clock
}
