package pricing

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/config"
	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	// 10 дней до заезда при горизонте 20 дней дают time_to_arrival_factor = 0.5
	stay = time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
)

func scenarioInputs() Inputs {
	return Inputs{
		RoomTypeID:       "DLX",
		Date:             stay,
		Now:              now,
		BaseRate:         280,
		ForecastedDemand: 1.3,
		CompetitorIndex:  0.9,
		EventMultiplier:  0,
		Policy: Policy{
			Coefficients:   domain.Coefficients{Alpha: 0.3, Beta: 0.25, Gamma: 0.02, Delta: 1.0},
			BaselineDemand: 1.0,
			LeadTimePolicy: FarDiscount,
			MaxLeadDays:    20,
			Floor:          200,
			Ceiling:        400,
		},
	}
}

func TestCompute_ReferenceScenario(t *testing.T) {
	q, err := Compute(scenarioInputs())
	require.NoError(t, err)

	c := q.Components
	assert.InDelta(t, 0.5, c.TimeToArrivalFactor, 1e-12)
	assert.InDelta(t, 1.09, c.DemandFactor, 1e-12)
	assert.InDelta(t, 0.975, c.CompetitorFactor, 1e-12)
	assert.InDelta(t, 1.0, c.EventFactor, 1e-12)
	assert.InDelta(t, 0.99, c.TimeFactor, 1e-12)
	// 280 * 1.09 * 0.975 * 1 * 0.99
	assert.InDelta(t, 294.5943, c.RawRate, 1e-9)
	// публикуется в центах
	assert.Equal(t, 294.59, q.PublishedRate)
	assert.False(t, c.Clamped)
	assert.Equal(t, 200.0, q.Floor)
	assert.Equal(t, 400.0, q.Ceiling)
}

func TestCompute_ClampedToCeiling(t *testing.T) {
	in := scenarioInputs()
	in.Policy.Ceiling = 280

	q, err := Compute(in)
	require.NoError(t, err)
	assert.Equal(t, 280.0, q.PublishedRate)
	assert.True(t, q.Components.Clamped)
	assert.InDelta(t, 294.5943, q.Components.RawRate, 1e-9)
}

func TestCompute_ClampedToFloor(t *testing.T) {
	in := scenarioInputs()
	in.ForecastedDemand = 0
	in.CompetitorIndex = 0.2
	in.Policy.Floor = 250

	q, err := Compute(in)
	require.NoError(t, err)
	assert.Equal(t, 250.0, q.PublishedRate)
	assert.True(t, q.Components.Clamped)
}

func TestCompute_BoundsHoldForAllInputs(t *testing.T) {
	in := scenarioInputs()
	for _, demand := range []float64{-1, 0, 0.5, 1, 2, 10} {
		for _, index := range []float64{0, 0.5, 1, 1.5, 4} {
			for _, event := range []float64{0, 0.2, 0.5} {
				in.ForecastedDemand, in.CompetitorIndex, in.EventMultiplier = demand, index, event
				q, err := Compute(in)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, q.PublishedRate, in.Policy.Floor)
				assert.LessOrEqual(t, q.PublishedRate, in.Policy.Ceiling)
				assert.Equal(t, domain.RoundCents(q.PublishedRate), q.PublishedRate)
			}
		}
	}
}

func TestCompute_BoundsNotInCentsStayBinding(t *testing.T) {
	in := scenarioInputs()
	in.Policy.Floor, in.Policy.Ceiling = 200.001, 200.004

	q, err := Compute(in)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, q.PublishedRate, in.Policy.Floor)
	assert.LessOrEqual(t, q.PublishedRate, in.Policy.Ceiling)
}

func TestCompute_Monotonicity(t *testing.T) {
	in := scenarioInputs()
	in.Policy.Floor, in.Policy.Ceiling = 1, 10000

	prev := math.Inf(-1)
	for _, demand := range []float64{0.2, 0.8, 1.0, 1.3, 2.0} {
		in.ForecastedDemand = demand
		q, err := Compute(in)
		require.NoError(t, err)
		assert.Greater(t, q.Components.RawRate, prev)
		prev = q.Components.RawRate
	}

	in = scenarioInputs()
	base, err := Compute(in)
	require.NoError(t, err)
	in.CompetitorIndex = 1.0
	atOne, err := Compute(in)
	require.NoError(t, err)
	in.CompetitorIndex = 0.8
	below, err := Compute(in)
	require.NoError(t, err)
	assert.Less(t, below.Components.RawRate, base.Components.RawRate)
	assert.Less(t, base.Components.RawRate, atOne.Components.RawRate)
}

func TestCompute_NeutralCompetitorIndexLeavesPriceUnchanged(t *testing.T) {
	in := scenarioInputs()
	in.CompetitorIndex = 1.0
	q, err := Compute(in)
	require.NoError(t, err)
	assert.Equal(t, 1.0, q.Components.CompetitorFactor)
}

func TestCompute_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Inputs)
		want   error
	}{
		{"missing base rate", func(in *Inputs) { in.BaseRate = 0 }, domain.ErrMissingBaseRate},
		{"missing floor", func(in *Inputs) { in.Policy.Floor = 0 }, domain.ErrMissingFloorCeiling},
		{"missing ceiling", func(in *Inputs) { in.Policy.Ceiling = 0 }, domain.ErrMissingFloorCeiling},
		{"floor above ceiling", func(in *Inputs) { in.Policy.Floor = 500 }, domain.ErrFloorAboveCeiling},
		{"negative alpha", func(in *Inputs) { in.Policy.Coefficients.Alpha = -0.1 }, domain.ErrInvalidCoefficient},
		{"beta above one", func(in *Inputs) { in.Policy.Coefficients.Beta = 1.5 }, domain.ErrInvalidCoefficient},
		{"gamma equal one", func(in *Inputs) { in.Policy.Coefficients.Gamma = 1 }, domain.ErrInvalidCoefficient},
		{"negative delta", func(in *Inputs) { in.Policy.Coefficients.Delta = -1 }, domain.ErrInvalidCoefficient},
		{"nan alpha", func(in *Inputs) { in.Policy.Coefficients.Alpha = math.NaN() }, domain.ErrInvalidCoefficient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := scenarioInputs()
			tt.modify(&in)
			q, err := Compute(in)
			assert.Nil(t, q)
			var cfgErr *domain.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, "DLX", cfgErr.Key.RoomTypeID)
			assert.Equal(t, domain.KindConfiguration, domain.ErrorKindOf(err))
		})
	}
}

func TestTimeToArrivalFactor(t *testing.T) {
	far := now.AddDate(0, 0, 400)
	assert.Equal(t, 1.0, TimeToArrivalFactor(now, far, FarDiscount, 365))
	assert.Equal(t, 0.0, TimeToArrivalFactor(now, far, NearDiscount, 365))
	assert.Equal(t, 0.0, TimeToArrivalFactor(now, now, FarDiscount, 365))
	assert.Equal(t, 1.0, TimeToArrivalFactor(now, now, NearDiscount, 365))
	// прошедшие даты дают нулевой горизонт
	assert.Equal(t, 0.0, TimeToArrivalFactor(now, now.AddDate(0, 0, -3), FarDiscount, 365))
}

func TestClampOverride(t *testing.T) {
	p := scenarioInputs().Policy

	rate, err := ClampOverride("DLX", stay, 450, p)
	require.NoError(t, err)
	assert.Equal(t, 400.0, rate)

	rate, err = ClampOverride("DLX", stay, 310, p)
	require.NoError(t, err)
	assert.Equal(t, 310.0, rate)

	rate, err = ClampOverride("DLX", stay, 310.456, p)
	require.NoError(t, err)
	assert.Equal(t, 310.46, rate)

	_, err = ClampOverride("DLX", stay, -5, p)
	assert.Error(t, err)

	p.Floor = 0
	_, err = ClampOverride("DLX", stay, 310, p)
	assert.ErrorIs(t, err, domain.ErrMissingFloorCeiling)
}

func TestResolver_Policy(t *testing.T) {
	cfg := config.Default().Pricing
	cfg.RoomPolicies = map[string]config.RoomPolicy{
		"STE": {Floor: 300, Ceiling: 900, Coefficients: &config.Coefficients{Alpha: 0.5, Beta: 0.1, Gamma: 0, Delta: 0.5}},
	}
	r := NewResolver(cfg)

	std := r.Policy(&domain.RoomType{ID: "STD", BaseRate: 200})
	assert.InDelta(t, 140.0, std.Floor, 1e-9)
	assert.InDelta(t, 300.0, std.Ceiling, 1e-9)
	assert.Equal(t, domain.Coefficients{Alpha: 0.3, Beta: 0.25, Gamma: 0.02, Delta: 1.0}, std.Coefficients)
	assert.Equal(t, FarDiscount, std.LeadTimePolicy)

	ste := r.Policy(&domain.RoomType{ID: "STE", BaseRate: 450})
	assert.Equal(t, 300.0, ste.Floor)
	assert.Equal(t, 900.0, ste.Ceiling)
	assert.Equal(t, 0.5, ste.Coefficients.Alpha)
}

func TestSummarize(t *testing.T) {
	rt := &domain.RoomType{ID: "STD", BaseRate: 200}
	rows := []*domain.PriceHistory{{PublishedRate: 180}, {PublishedRate: 200}, {PublishedRate: 220}}
	s := Summarize(rt, now, stay, rows)
	assert.Equal(t, 3, s.Days)
	assert.InDelta(t, 200.0, s.AvgRate, 1e-9)
	assert.Equal(t, 180.0, s.MinRate)
	assert.Equal(t, 220.0, s.MaxRate)
	assert.InDelta(t, math.Sqrt(800.0/3), s.StdDev, 1e-9)

	empty := Summarize(rt, now, stay, nil)
	assert.Zero(t, empty.Days)
}
