package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// DateOf приводит момент времени к календарному дню (00:00 UTC).
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// DaysBetween returns whole days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

// LeadDays is the lead time from now to the stay date, never negative.
func LeadDays(now, stay time.Time) int {
	if d := DaysBetween(now, stay); d > 0 {
		return d
	}
	return 0
}

type DateRange struct {
	From time.Time
	To   time.Time
}

func NewDateRange(from, to time.Time) (DateRange, error) {
	from, to = DateOf(from), DateOf(to)
	if to.Before(from) {
		return DateRange{}, fmt.Errorf("date range end %s before start %s", to.Format(DateLayout), from.Format(DateLayout))
	}
	return DateRange{From: from, To: to}, nil
}

func (r DateRange) Days() []time.Time {
	var days []time.Time
	for d := DateOf(r.From); !d.After(DateOf(r.To)); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func (r DateRange) Contains(d time.Time) bool {
	d = DateOf(d)
	return !d.Before(DateOf(r.From)) && !d.After(DateOf(r.To))
}
