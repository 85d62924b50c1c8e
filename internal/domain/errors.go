package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrRoomTypeNotFound    = errors.New("room type not found")
	ErrChannelNotFound     = errors.New("channel rule not found")
	ErrNoCurrentPrice      = errors.New("no current price")
	ErrForecastNotFound    = errors.New("forecast not found")
	ErrCycleRunNotFound    = errors.New("cycle run not found")
	ErrDateNotPast         = errors.New("date is not in the past")
	ErrMissingBaseRate     = errors.New("missing base rate")
	ErrMissingFloorCeiling = errors.New("missing floor or ceiling")
	ErrFloorAboveCeiling   = errors.New("floor above ceiling")
	ErrInvalidCoefficient  = errors.New("invalid coefficient")
	ErrInvalidChannelRule  = errors.New("invalid channel rule")
	ErrInsufficientHistory = errors.New("insufficient booking history")
	ErrNoCompetitorData    = errors.New("no competitor data")
)

type ErrorKind string

const (
	KindNone           ErrorKind = ""
	KindConfiguration  ErrorKind = "configuration"
	KindDataQuality    ErrorKind = "data_quality"
	KindChannelFailure ErrorKind = "channel_failure"
	KindCanceled       ErrorKind = "canceled"
	KindInternal       ErrorKind = "internal"
)

// Key адресует ошибку конкретной паре (тип номера, дата[, канал]).
type Key struct {
	RoomTypeID string
	Date       time.Time
	ChannelID  string
}

func (k Key) String() string {
	s := fmt.Sprintf("%s/%s", k.RoomTypeID, k.Date.Format(DateLayout))
	if k.ChannelID != "" {
		s += "/" + k.ChannelID
	}
	return s
}

// ConfigurationError is fatal for its key but never for a batch.
type ConfigurationError struct {
	Key Key
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for %s: %v", e.Key, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// DataQualityError is recovered locally through a documented fallback.
type DataQualityError struct {
	Key      Key
	Err      error
	Fallback string
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("data quality issue for %s: %v (fallback: %s)", e.Key, e.Err, e.Fallback)
}

func (e *DataQualityError) Unwrap() error { return e.Err }

// SimulatedChannelFailure is retryable; the push attempt is already logged.
type SimulatedChannelFailure struct {
	Key        Key
	StatusCode int
	Message    string
	EntryID    string
}

func (e *SimulatedChannelFailure) Error() string {
	return fmt.Sprintf("channel push failed for %s: %d %s", e.Key, e.StatusCode, e.Message)
}

func (e *SimulatedChannelFailure) Retryable() bool { return true }

func NewConfigurationError(key Key, err error) error {
	return &ConfigurationError{Key: key, Err: err}
}

func ErrorKindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var cfgErr *ConfigurationError
	var dqErr *DataQualityError
	var chErr *SimulatedChannelFailure
	switch {
	case errors.As(err, &cfgErr):
		return KindConfiguration
	case errors.As(err, &dqErr):
		return KindDataQuality
	case errors.As(err, &chErr):
		return KindChannelFailure
	case errors.Is(err, ErrRoomTypeNotFound), errors.Is(err, ErrChannelNotFound):
		return KindConfiguration
	}
	return KindInternal
}

func IsRetryable(err error) bool {
	var chErr *SimulatedChannelFailure
	return errors.As(err, &chErr)
}
