package competitor

import (
	"fmt"
	"sort"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/config"
	"github.com/LavaJover/shvark-rms-service/internal/domain"
)

type Params struct {
	FreshnessWindow time.Duration
	MinCompetitors  int
}

func DefaultParams() Params {
	return Params{FreshnessWindow: 48 * time.Hour, MinCompetitors: 2}
}

func ParamsFromConfig(cfg config.CompetitorConfig) Params {
	return Params{FreshnessWindow: cfg.FreshnessWindow, MinCompetitors: cfg.MinCompetitors}
}

type Input struct {
	RoomType     *domain.RoomType
	Date         time.Time
	Now          time.Time
	Observations []*domain.CompetitorRate
}

// Compute считает индекс конкурентов для пары (тип номера, дата).
// Ошибка возвращается только при отсутствии базовой ставки.
func Compute(in Input, mapper *Mapper, p Params) (*domain.CompetitorIndex, error) {
	date := domain.DateOf(in.Date)
	key := domain.Key{Date: date}
	if in.RoomType != nil {
		key.RoomTypeID = in.RoomType.ID
	}
	if in.RoomType == nil || in.RoomType.BaseRate <= 0 {
		return nil, domain.NewConfigurationError(key, domain.ErrMissingBaseRate)
	}

	result := &domain.CompetitorIndex{
		RoomTypeID: in.RoomType.ID,
		Date:       date,
		Index:      1.0,
		Staleness:  domain.StalenessMissing,
	}

	// последнее наблюдение каждого конкурента
	latest := make(map[string]*domain.CompetitorRate)
	for _, obs := range in.Observations {
		if !domain.DateOf(obs.Date).Equal(date) || obs.ObservedAt.After(in.Now) {
			continue
		}
		match, ok := mapper.Map(obs.CompetitorID, obs.RoomLabel)
		if !ok {
			result.MappingMisses++
			continue
		}
		if match.RoomTypeID != in.RoomType.ID {
			continue
		}
		if prev, ok := latest[obs.CompetitorID]; !ok || obs.ObservedAt.After(prev.ObservedAt) {
			latest[obs.CompetitorID] = obs
		}
	}

	var rates []float64
	for _, obs := range latest {
		if !obs.Available || obs.Rate <= 0 {
			continue
		}
		if in.Now.Sub(obs.ObservedAt) > p.FreshnessWindow {
			result.StaleCompetitors++
			continue
		}
		rates = append(rates, obs.Rate)
	}
	result.FreshCompetitors = len(rates)

	if len(rates) == 0 {
		return result, nil
	}

	result.MedianRate = Median(rates)
	result.Index = result.MedianRate / in.RoomType.BaseRate
	if len(rates) < p.MinCompetitors {
		result.Staleness = domain.StalenessStale
	} else {
		result.Staleness = domain.StalenessFresh
	}
	return result, nil
}

// DataQuality переводит неполные данные конкурентов в DataQualityError для логов.
func DataQuality(idx *domain.CompetitorIndex) error {
	key := domain.Key{RoomTypeID: idx.RoomTypeID, Date: idx.Date}
	switch idx.Staleness {
	case domain.StalenessMissing:
		return &domain.DataQualityError{Key: key, Err: domain.ErrNoCompetitorData, Fallback: "neutral index 1.0"}
	case domain.StalenessStale:
		return &domain.DataQualityError{
			Key:      key,
			Err:      fmt.Errorf("%w: only %d fresh competitors", domain.ErrNoCompetitorData, idx.FreshCompetitors),
			Fallback: "index from available competitors",
		}
	}
	return nil
}

func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
