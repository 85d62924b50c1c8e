package domain

import (
	"context"
	"time"
)

const DirectChannelID = "DIRECT"

type ChannelRule struct {
	ChannelID          string
	DisplayName        string
	CommissionPct      float64
	LoyaltyDiscountPct float64
	IsDirect           bool
	Active             bool
}

type PushStatus string

const (
	PushSuccess   PushStatus = "success"
	PushFailed    PushStatus = "failed"
	PushSimulated PushStatus = "simulated"
)

type PushLogEntry struct {
	ID                 string
	ChannelID          string
	RoomTypeID         string
	Date               time.Time
	PublishedRate      float64
	GuestDisplayPrice  float64
	HotelNetPrice      float64
	CommissionPct      float64
	LoyaltyDiscountPct float64
	Status             PushStatus
	StatusCode         int
	Message            string
	Reference          string
	PushedAt           time.Time
}

type ParityViolation struct {
	ChannelID         string
	GuestDisplayPrice float64
	Difference        float64
	PushedAt          time.Time
}

// ParityFlag - вычисляемый результат проверки паритета, не сохраняется.
type ParityFlag struct {
	RoomTypeID  string
	Date        time.Time
	DirectPrice float64
	Tolerance   float64
	Checked     int
	Channels    []ParityViolation
}

func (f *ParityFlag) Violated() bool {
	return len(f.Channels) > 0
}

type PushCounter struct {
	Total   int
	Success int
	Failed  int
}

type PushStats struct {
	Since       time.Time
	Total       int
	Success     int
	Failed      int
	SuccessRate float64
	ByChannel   map[string]*PushCounter
	ByRoomType  map[string]*PushCounter
	ByDay       map[string]*PushCounter
}

type ChannelRuleRepository interface {
	GetChannelRules(ctx context.Context) ([]*ChannelRule, error)
	GetChannelRule(ctx context.Context, channelID string) (*ChannelRule, error)
}

type PushLogRepository interface {
	AppendPush(ctx context.Context, entry *PushLogEntry) error
	// GetLatestPushes returns the newest entry per channel for the key with the given status.
	GetLatestPushes(ctx context.Context, roomTypeID string, date time.Time, status PushStatus) ([]*PushLogEntry, error)
	GetPushLog(ctx context.Context, filter PushLogFilter) ([]*PushLogEntry, error)
	GetPushesSince(ctx context.Context, since time.Time) ([]*PushLogEntry, error)
}

type PushLogFilter struct {
	ChannelID  *string
	RoomTypeID *string
	Date       *time.Time
	Status     *PushStatus
	Limit      int
}
