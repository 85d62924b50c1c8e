package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/config"
	"github.com/LavaJover/shvark-rms-service/internal/domain"
)

type Params struct {
	PaceWindowDays       int
	LookbackDays         int
	SmoothingWindow      int
	SmoothingAlpha       float64
	EventWeight          float64
	MinConfidence        float64
	FullConfidenceSample int
	LeadDecay            float64
	MaxLeadDays          int
	BaselineDemand       float64
	MaxEventUplift       float64
}

func DefaultParams() Params {
	return Params{
		PaceWindowDays:       14,
		LookbackDays:         90,
		SmoothingWindow:      5,
		SmoothingAlpha:       0.3,
		EventWeight:          1.0,
		MinConfidence:        0.3,
		FullConfidenceSample: 20,
		LeadDecay:            0.5,
		MaxLeadDays:          365,
		BaselineDemand:       1.0,
		MaxEventUplift:       0.5,
	}
}

func ParamsFromConfig(cfg config.ForecastConfig) Params {
	return Params{
		PaceWindowDays:       cfg.PaceWindowDays,
		LookbackDays:         cfg.LookbackDays,
		SmoothingWindow:      cfg.SmoothingWindow,
		SmoothingAlpha:       cfg.SmoothingAlpha,
		EventWeight:          cfg.EventWeight,
		MinConfidence:        cfg.MinConfidence,
		FullConfidenceSample: cfg.FullConfidenceSample,
		LeadDecay:            cfg.LeadDecay,
		MaxLeadDays:          cfg.MaxLeadDays,
		BaselineDemand:       cfg.BaselineDemand,
		MaxEventUplift:       cfg.MaxEventUplift,
	}
}

// Input - всё, от чего зависит прогноз. Никаких обращений к часам и БД.
type Input struct {
	RoomTypeID string
	Date       time.Time
	Now        time.Time
	Bookings   []*domain.Booking
	Events     []*domain.EventMultiplier

	// Модификаторы симуляции: нулевые значения означают "без изменений".
	DemandMultiplier float64
	DemandShift      float64
	EventUplift      *float64
}

// Estimate is the unsmoothed forecast for a key.
type Estimate struct {
	RoomTypeID string
	Date       time.Time
	AsOf       time.Time
	LeadDays   int
	Current    int
	Baseline   float64
	PaceRatio  float64
	Uplift     float64
	Raw        float64
	Sample     int
	Model      domain.ForecastModelKind
}

// Fingerprint identifies the inputs of a generation: as-of day and raw ratio.
func (e *Estimate) Fingerprint() string {
	return fmt.Sprintf("%s|%.9f", e.AsOf.Format(domain.DateLayout), e.Raw)
}

func Prepare(in Input, p Params) *Estimate {
	today := domain.DateOf(in.Now)
	target := domain.DateOf(in.Date)
	lead := domain.LeadDays(in.Now, target)
	window := time.Duration(maxInt(p.PaceWindowDays, 1)) * 24 * time.Hour
	dayOffset := in.Now.Sub(today)

	current := countPace(in.Bookings, target, in.Now, window)

	// Сопоставимые даты: прошлые дни с тем же днём недели и тем же горизонтом бронирования.
	var bucketSum, bucketDays, globalSum, globalDays int
	for back := 1; back <= p.LookbackDays; back++ {
		day := today.AddDate(0, 0, -back)
		asOf := day.AddDate(0, 0, -lead).Add(dayOffset)
		pace := countPace(in.Bookings, day, asOf, window)
		globalSum += pace
		globalDays++
		if day.Weekday() == target.Weekday() {
			bucketSum += pace
			bucketDays++
		}
	}

	est := &Estimate{
		RoomTypeID: in.RoomTypeID,
		Date:       target,
		AsOf:       today,
		LeadDays:   lead,
		Current:    current,
	}

	switch {
	case bucketSum > 0:
		est.Baseline = float64(bucketSum) / float64(bucketDays)
		est.PaceRatio = float64(current) / est.Baseline
		est.Sample = bucketSum
		est.Model = domain.ForecastBucket
	case globalSum > 0:
		est.Baseline = float64(globalSum) / float64(globalDays)
		est.PaceRatio = float64(current) / est.Baseline
		est.Sample = globalSum
		est.Model = domain.ForecastGlobal
	default:
		est.PaceRatio = p.BaselineDemand
		est.Model = domain.ForecastFallback
	}

	if in.EventUplift != nil {
		est.Uplift = math.Max(*in.EventUplift, 0)
	} else {
		est.Uplift = domain.EventUplift(in.Events, target, p.MaxEventUplift)
	}

	raw := est.PaceRatio + p.EventWeight*est.Uplift
	if in.DemandMultiplier != 0 {
		raw *= in.DemandMultiplier
	}
	raw += in.DemandShift
	if raw < 0 || math.IsNaN(raw) {
		raw = 0
	}
	est.Raw = raw

	return est
}

// Record smooths the estimate over priors (oldest first) and scores confidence.
func (e *Estimate) Record(priors []float64, p Params, generatedAt time.Time) *domain.ForecastRecord {
	demand := Smooth(priors, e.Raw, p.SmoothingAlpha)
	if demand < 0 {
		demand = 0
	}

	return &domain.ForecastRecord{
		RoomTypeID:       e.RoomTypeID,
		Date:             e.Date,
		ForecastedDemand: demand,
		RawDemand:        e.Raw,
		PaceRatio:        e.PaceRatio,
		EventUplift:      e.Uplift,
		Confidence:       e.Confidence(p),
		Sample:           e.Sample,
		LeadDays:         e.LeadDays,
		Model:            e.Model,
		GeneratedAt:      generatedAt,
	}
}

func (e *Estimate) Confidence(p Params) float64 {
	if e.Model != domain.ForecastBucket {
		return p.MinConfidence
	}

	sampleFactor := 1.0
	if p.FullConfidenceSample > 0 {
		sampleFactor = math.Min(1, float64(e.Sample)/float64(p.FullConfidenceSample))
	}

	leadFactor := 1.0
	if p.MaxLeadDays > 0 {
		lead := math.Min(float64(e.LeadDays), float64(p.MaxLeadDays))
		leadFactor = 1 - p.LeadDecay*lead/float64(p.MaxLeadDays)
	}

	return clamp(sampleFactor*leadFactor, p.MinConfidence, 1)
}

// Compute is Prepare followed by Record with the priors given.
func Compute(in Input, priors []float64, p Params) *domain.ForecastRecord {
	return Prepare(in, p).Record(priors, p, in.Now)
}

// Smooth folds priors and then current with simple exponential smoothing.
func Smooth(priors []float64, current, alpha float64) float64 {
	if len(priors) == 0 {
		return current
	}
	s := priors[0]
	for _, v := range priors[1:] {
		s = alpha*v + (1-alpha)*s
	}
	return alpha*current + (1-alpha)*s
}

// PriorsFor drops a newest snapshot produced by identical inputs and keeps the last k raw values.
func PriorsFor(snapshots []*domain.ForecastSnapshot, fingerprint string, k int) []float64 {
	if n := len(snapshots); n > 0 && snapshots[n-1].Fingerprint == fingerprint {
		snapshots = snapshots[:n-1]
	}
	if k <= 0 {
		return nil
	}
	if len(snapshots) > k {
		snapshots = snapshots[len(snapshots)-k:]
	}
	priors := make([]float64, 0, len(snapshots))
	for _, s := range snapshots {
		priors = append(priors, s.RawDemand)
	}
	return priors
}

func countPace(bookings []*domain.Booking, stay, asOf time.Time, window time.Duration) int {
	from := asOf.Add(-window)
	count := 0
	for _, b := range bookings {
		if !b.Covers(stay) {
			continue
		}
		if b.CreatedAt.After(from) && !b.CreatedAt.After(asOf) {
			count++
		}
	}
	return count
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
