package domain

import (
	"context"
	"time"
)

type EventMultiplier struct {
	ID         string
	Label      string
	StartDate  time.Time
	EndDate    time.Time
	Multiplier float64
}

func (e *EventMultiplier) Covers(day time.Time) bool {
	day = DateOf(day)
	return !day.Before(DateOf(e.StartDate)) && !day.After(DateOf(e.EndDate))
}

// EventUplift returns the strongest demand uplift (multiplier-1) among events
// covering day, capped at maxUplift. Zero means no event.
func EventUplift(events []*EventMultiplier, day time.Time, maxUplift float64) float64 {
	uplift := 0.0
	for _, e := range events {
		if !e.Covers(day) {
			continue
		}
		if u := e.Multiplier - 1; u > uplift {
			uplift = u
		}
	}
	if maxUplift > 0 && uplift > maxUplift {
		uplift = maxUplift
	}
	return uplift
}

type EventRepository interface {
	GetEventsBetween(ctx context.Context, from, to time.Time) ([]*EventMultiplier, error)
}
