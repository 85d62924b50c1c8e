package domain

import (
	"context"
	"time"
)

type CycleRequest struct {
	RoomTypeIDs []string
	Range       *DateRange
	ChannelIDs  []string
	// Force пересчитывает и ключи с ручным переопределением.
	Force   bool
	Trigger string
}

type KeyStatus string

const (
	KeyPriced   KeyStatus = "priced"
	KeySkipped  KeyStatus = "skipped"
	KeyFailed   KeyStatus = "failed"
	KeyCanceled KeyStatus = "canceled"
)

type KeyResult struct {
	RoomTypeID    string
	Date          time.Time
	Status        KeyStatus
	PublishedRate float64
	Source        PriceSource
	Staleness     Staleness
	Confidence    float64
	ErrKind       ErrorKind
	Err           string
	Pushes        int
}

type PushFailure struct {
	Key        Key
	StatusCode int
	Message    string
}

type CycleSummary struct {
	RunID        string
	Trigger      string
	StartedAt    time.Time
	FinishedAt   time.Time
	Results      []KeyResult
	PushFailures []PushFailure
	Priced       int
	Skipped      int
	Failed       int
	Canceled     int
}

func (s *CycleSummary) Tally() {
	s.Priced, s.Skipped, s.Failed, s.Canceled = 0, 0, 0, 0
	for _, r := range s.Results {
		switch r.Status {
		case KeyPriced:
			s.Priced++
		case KeySkipped:
			s.Skipped++
		case KeyFailed:
			s.Failed++
		case KeyCanceled:
			s.Canceled++
		}
	}
}

type CycleRunLogger interface {
	LogCycleRun(ctx context.Context, summary *CycleSummary) error
}
