package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/config"
	"github.com/LavaJover/shvark-rms-service/internal/domain"
)

type LeadTimePolicy string

const (
	// FarDiscount: чем дальше заезд, тем больше скидка γ.
	FarDiscount  LeadTimePolicy = "far_discount"
	NearDiscount LeadTimePolicy = "near_discount"
)

type Policy struct {
	Coefficients   domain.Coefficients
	BaselineDemand float64
	LeadTimePolicy LeadTimePolicy
	MaxLeadDays    int
	Floor          float64
	Ceiling        float64
}

// Inputs - всё, что нужно формуле. Время передаётся явно.
type Inputs struct {
	RoomTypeID       string
	Date             time.Time
	Now              time.Time
	BaseRate         float64
	ForecastedDemand float64
	CompetitorIndex  float64
	EventMultiplier  float64
	Policy           Policy
}

type Quote struct {
	PublishedRate float64
	Floor         float64
	Ceiling       float64
	Coefficients  domain.Coefficients
	Components    domain.PriceComponents
}

// TimeToArrivalFactor нормирует горизонт бронирования в [0,1] согласно политике.
func TimeToArrivalFactor(now, date time.Time, policy LeadTimePolicy, maxLeadDays int) float64 {
	if maxLeadDays <= 0 {
		maxLeadDays = 365
	}
	lead := float64(domain.LeadDays(now, date))
	far := math.Min(lead/float64(maxLeadDays), 1)
	if policy == NearDiscount {
		return 1 - far
	}
	return far
}

func ValidateCoefficients(c domain.Coefficients) error {
	for name, v := range map[string]float64{"alpha": c.Alpha, "beta": c.Beta, "gamma": c.Gamma, "delta": c.Delta} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", domain.ErrInvalidCoefficient, name)
		}
	}
	switch {
	case c.Alpha < 0:
		return fmt.Errorf("%w: alpha %v < 0", domain.ErrInvalidCoefficient, c.Alpha)
	case c.Beta < 0 || c.Beta > 1:
		return fmt.Errorf("%w: beta %v outside [0,1]", domain.ErrInvalidCoefficient, c.Beta)
	case c.Gamma < 0 || c.Gamma >= 1:
		return fmt.Errorf("%w: gamma %v outside [0,1)", domain.ErrInvalidCoefficient, c.Gamma)
	case c.Delta < 0:
		return fmt.Errorf("%w: delta %v < 0", domain.ErrInvalidCoefficient, c.Delta)
	}
	return nil
}

func validateBounds(baseRate, floor, ceiling float64) error {
	switch {
	case baseRate <= 0 || math.IsNaN(baseRate) || math.IsInf(baseRate, 0):
		return domain.ErrMissingBaseRate
	case floor <= 0 || ceiling <= 0 || math.IsNaN(floor) || math.IsNaN(ceiling):
		return domain.ErrMissingFloorCeiling
	case floor > ceiling:
		return fmt.Errorf("%w: floor %.2f > ceiling %.2f", domain.ErrFloorAboveCeiling, floor, ceiling)
	}
	return nil
}

// Compute применяет формулу цены. Ограничение floor/ceiling выполняется последним.
func Compute(in Inputs) (*Quote, error) {
	key := domain.Key{RoomTypeID: in.RoomTypeID, Date: domain.DateOf(in.Date)}
	p := in.Policy

	if err := validateBounds(in.BaseRate, p.Floor, p.Ceiling); err != nil {
		return nil, domain.NewConfigurationError(key, err)
	}
	if err := ValidateCoefficients(p.Coefficients); err != nil {
		return nil, domain.NewConfigurationError(key, err)
	}

	c := p.Coefficients
	demand := math.Max(in.ForecastedDemand, 0)
	timeFactor := TimeToArrivalFactor(in.Now, in.Date, p.LeadTimePolicy, p.MaxLeadDays)

	comp := domain.PriceComponents{
		BaseRate:            in.BaseRate,
		ForecastedDemand:    demand,
		BaselineDemand:      p.BaselineDemand,
		CompetitorIndex:     in.CompetitorIndex,
		EventMultiplier:     in.EventMultiplier,
		TimeToArrivalFactor: timeFactor,
		DemandFactor:        1 + c.Alpha*(demand-p.BaselineDemand),
		CompetitorFactor:    1 + c.Beta*(in.CompetitorIndex-1),
		EventFactor:         1 + c.Delta*in.EventMultiplier,
		TimeFactor:          1 - c.Gamma*timeFactor,
	}
	comp.RawRate = in.BaseRate * comp.DemandFactor * comp.CompetitorFactor * comp.EventFactor * comp.TimeFactor

	clamped := Clamp(comp.RawRate, p.Floor, p.Ceiling)
	comp.Clamped = clamped != comp.RawRate
	published := roundWithin(clamped, p.Floor, p.Ceiling)

	return &Quote{
		PublishedRate: published,
		Floor:         p.Floor,
		Ceiling:       p.Ceiling,
		Coefficients:  c,
		Components:    comp,
	}, nil
}

// ClampOverride проверяет границы и ограничивает ручную ставку.
func ClampOverride(roomTypeID string, date time.Time, rate float64, p Policy) (float64, error) {
	key := domain.Key{RoomTypeID: roomTypeID, Date: domain.DateOf(date)}
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("override rate must be positive, got %v", rate)
	}
	if p.Floor <= 0 || p.Ceiling <= 0 {
		return 0, domain.NewConfigurationError(key, domain.ErrMissingFloorCeiling)
	}
	if p.Floor > p.Ceiling {
		return 0, domain.NewConfigurationError(key, fmt.Errorf("%w: floor %.2f > ceiling %.2f", domain.ErrFloorAboveCeiling, p.Floor, p.Ceiling))
	}
	return roundWithin(Clamp(rate, p.Floor, p.Ceiling), p.Floor, p.Ceiling), nil
}

// roundWithin публикует ставку в центах; если округление выводит за границы
// (границы не кратны центу), остаётся неокруглённое значение.
func roundWithin(v, floor, ceiling float64) float64 {
	if r := domain.RoundCents(v); r >= floor && r <= ceiling {
		return r
	}
	return v
}

func Clamp(v, floor, ceiling float64) float64 {
	if v < floor {
		return floor
	}
	if v > ceiling {
		return ceiling
	}
	return v
}

// ============= ПОЛИТИКА ИЗ КОНФИГУРАЦИИ =============

// Resolver собирает Policy для типа номера: room_policies переопределяют глобальные значения.
type Resolver struct {
	cfg config.PricingConfig
}

func NewResolver(cfg config.PricingConfig) *Resolver {
	return &Resolver{cfg: cfg}
}

func (r *Resolver) Policy(rt *domain.RoomType) Policy {
	p := Policy{
		Coefficients:   toDomain(r.cfg.Coefficients),
		BaselineDemand: r.cfg.BaselineDemand,
		LeadTimePolicy: LeadTimePolicy(r.cfg.LeadTimePolicy),
		MaxLeadDays:    r.cfg.MaxLeadDays,
		Floor:          domain.RoundCents(rt.BaseRate * r.cfg.FloorPct),
		Ceiling:        domain.RoundCents(rt.BaseRate * r.cfg.CeilingPct),
	}
	if policy, ok := r.cfg.RoomPolicies[rt.ID]; ok {
		if policy.Floor > 0 {
			p.Floor = policy.Floor
		}
		if policy.Ceiling > 0 {
			p.Ceiling = policy.Ceiling
		}
		if policy.Coefficients != nil {
			p.Coefficients = toDomain(*policy.Coefficients)
		}
	}
	return p
}

func toDomain(c config.Coefficients) domain.Coefficients {
	return domain.Coefficients{Alpha: c.Alpha, Beta: c.Beta, Gamma: c.Gamma, Delta: c.Delta}
}

// Summarize считает статистику опубликованных ставок за период.
func Summarize(rt *domain.RoomType, from, to time.Time, rows []*domain.PriceHistory) *domain.PriceSummary {
	s := &domain.PriceSummary{RoomTypeID: rt.ID, From: from, To: to, BaseRate: rt.BaseRate, Days: len(rows)}
	if len(rows) == 0 {
		return s
	}
	s.MinRate, s.MaxRate = rows[0].PublishedRate, rows[0].PublishedRate
	var sum float64
	for _, row := range rows {
		sum += row.PublishedRate
		s.MinRate = math.Min(s.MinRate, row.PublishedRate)
		s.MaxRate = math.Max(s.MaxRate, row.PublishedRate)
	}
	s.AvgRate = sum / float64(len(rows))
	var variance float64
	for _, row := range rows {
		variance += (row.PublishedRate - s.AvgRate) * (row.PublishedRate - s.AvgRate)
	}
	s.StdDev = math.Sqrt(variance / float64(len(rows)))
	return s
}
