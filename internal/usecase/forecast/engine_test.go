package forecast

import (
	"fmt"
	"testing"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// воскресенье, 14 дней до заезда
	target = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
)

func stayBooking(id string, day, createdAt time.Time) *domain.Booking {
	return &domain.Booking{
		ID:         id,
		RoomTypeID: "DLX",
		CheckIn:    day,
		CheckOut:   day.AddDate(0, 0, 1),
		Rate:       280,
		Channel:    "DIRECT",
		CreatedAt:  createdAt,
	}
}

// history: по perDay броней на каждое прошлое воскресенье, созданных за 15 дней до заезда,
// плюс current броней на target внутри текущего окна.
func history(perDay, current int, weekday time.Weekday) []*domain.Booking {
	var out []*domain.Booking
	today := domain.DateOf(now)
	for back := 1; back <= 90; back++ {
		day := today.AddDate(0, 0, -back)
		if day.Weekday() != weekday {
			continue
		}
		for i := 0; i < perDay; i++ {
			out = append(out, stayBooking(fmt.Sprintf("h-%d-%d", back, i), day, day.AddDate(0, 0, -15)))
		}
	}
	for i := 0; i < current; i++ {
		out = append(out, stayBooking(fmt.Sprintf("c-%d", i), target, now.Add(-time.Duration(i+1)*time.Hour)))
	}
	return out
}

func sundays() int {
	n := 0
	today := domain.DateOf(now)
	for back := 1; back <= 90; back++ {
		if today.AddDate(0, 0, -back).Weekday() == time.Sunday {
			n++
		}
	}
	return n
}

func TestPrepare_PaceRatioFromWeekdayBucket(t *testing.T) {
	in := Input{RoomTypeID: "DLX", Date: target, Now: now, Bookings: history(2, 3, time.Sunday)}
	est := Prepare(in, DefaultParams())

	assert.Equal(t, domain.ForecastBucket, est.Model)
	assert.Equal(t, 14, est.LeadDays)
	assert.Equal(t, 3, est.Current)
	assert.InDelta(t, 2.0, est.Baseline, 1e-9)
	assert.InDelta(t, 1.5, est.PaceRatio, 1e-9)
	assert.InDelta(t, 1.5, est.Raw, 1e-9)
	assert.Equal(t, 2*sundays(), est.Sample)

	conf := est.Confidence(DefaultParams())
	assert.InDelta(t, 1-0.5*14.0/365.0, conf, 1e-9)
}

func TestCompute_IsIdempotent(t *testing.T) {
	in := Input{RoomTypeID: "DLX", Date: target, Now: now, Bookings: history(2, 3, time.Sunday)}
	priors := []float64{1.1, 1.2}

	first := Compute(in, priors, DefaultParams())
	second := Compute(in, priors, DefaultParams())
	assert.Equal(t, first, second)
}

func TestCompute_FallbackWithoutHistory(t *testing.T) {
	p := DefaultParams()
	rec := Compute(Input{RoomTypeID: "DLX", Date: target, Now: now}, nil, p)

	assert.Equal(t, domain.ForecastFallback, rec.Model)
	assert.Equal(t, p.MinConfidence, rec.Confidence)
	assert.Greater(t, rec.Confidence, 0.0)
	assert.InDelta(t, p.BaselineDemand, rec.ForecastedDemand, 1e-9)
}

func TestCompute_GlobalBaselineWhenBucketEmpty(t *testing.T) {
	// история только по средам, target - воскресенье
	in := Input{RoomTypeID: "DLX", Date: target, Now: now, Bookings: history(3, 1, time.Wednesday)}
	rec := Compute(in, nil, DefaultParams())

	assert.Equal(t, domain.ForecastGlobal, rec.Model)
	assert.Equal(t, DefaultParams().MinConfidence, rec.Confidence)
	assert.Greater(t, rec.ForecastedDemand, 0.0)
}

func TestCompute_MinConfidenceParameterised(t *testing.T) {
	for _, floor := range []float64{0.1, 0.3, 0.5} {
		p := DefaultParams()
		p.MinConfidence = floor
		rec := Compute(Input{RoomTypeID: "DLX", Date: target, Now: now}, nil, p)
		assert.Equal(t, floor, rec.Confidence)
	}
}

func TestConfidence_DecreasesWithLeadAndSample(t *testing.T) {
	p := DefaultParams()
	near := &Estimate{Model: domain.ForecastBucket, Sample: 40, LeadDays: 3}
	far := &Estimate{Model: domain.ForecastBucket, Sample: 40, LeadDays: 200}
	sparse := &Estimate{Model: domain.ForecastBucket, Sample: 4, LeadDays: 3}

	assert.Greater(t, near.Confidence(p), far.Confidence(p))
	assert.Greater(t, near.Confidence(p), sparse.Confidence(p))
	assert.GreaterOrEqual(t, sparse.Confidence(p), p.MinConfidence)
	assert.LessOrEqual(t, near.Confidence(p), 1.0)
}

func TestCompute_EventBlend(t *testing.T) {
	events := []*domain.EventMultiplier{
		{Label: "Jazz Festival", StartDate: target.AddDate(0, 0, -1), EndDate: target.AddDate(0, 0, 1), Multiplier: 1.3},
		{Label: "Elsewhere", StartDate: target.AddDate(0, 0, 5), EndDate: target.AddDate(0, 0, 6), Multiplier: 1.5},
	}
	in := Input{RoomTypeID: "DLX", Date: target, Now: now, Bookings: history(2, 2, time.Sunday), Events: events}
	rec := Compute(in, nil, DefaultParams())
	assert.InDelta(t, 0.3, rec.EventUplift, 1e-9)
	assert.InDelta(t, 1.3, rec.ForecastedDemand, 1e-9)

	off := 0.0
	in.EventUplift = &off
	rec = Compute(in, nil, DefaultParams())
	assert.Zero(t, rec.EventUplift)
	assert.InDelta(t, 1.0, rec.ForecastedDemand, 1e-9)
}

func TestCompute_NegativeDemandClampedToZero(t *testing.T) {
	in := Input{RoomTypeID: "DLX", Date: target, Now: now, DemandShift: -5}
	rec := Compute(in, []float64{0.2}, DefaultParams())
	assert.Zero(t, rec.RawDemand)
	assert.GreaterOrEqual(t, rec.ForecastedDemand, 0.0)
}

func TestCompute_DemandMultiplier(t *testing.T) {
	in := Input{RoomTypeID: "DLX", Date: target, Now: now, Bookings: history(2, 3, time.Sunday), DemandMultiplier: 2}
	rec := Compute(in, nil, DefaultParams())
	assert.InDelta(t, 3.0, rec.ForecastedDemand, 1e-9)
}

func TestSmooth(t *testing.T) {
	assert.Equal(t, 3.0, Smooth(nil, 3, 0.5))
	assert.InDelta(t, 2.25, Smooth([]float64{1, 2}, 3, 0.5), 1e-12)
	assert.InDelta(t, 3.0, Smooth([]float64{1, 2}, 3, 1), 1e-12)
}

func TestPriorsFor(t *testing.T) {
	snaps := []*domain.ForecastSnapshot{
		{RawDemand: 1.0, Fingerprint: "a"},
		{RawDemand: 1.1, Fingerprint: "b"},
		{RawDemand: 1.2, Fingerprint: "c"},
	}

	assert.Equal(t, []float64{1.0, 1.1}, PriorsFor(snaps, "c", 5))
	assert.Equal(t, []float64{1.0, 1.1, 1.2}, PriorsFor(snaps, "d", 5))
	assert.Equal(t, []float64{1.1, 1.2}, PriorsFor(snaps, "d", 2))
	assert.Nil(t, PriorsFor(snaps, "d", 0))
}

func TestFingerprint_StableForSameInputs(t *testing.T) {
	in := Input{RoomTypeID: "DLX", Date: target, Now: now, Bookings: history(2, 3, time.Sunday)}
	a := Prepare(in, DefaultParams()).Fingerprint()
	in.Now = now.Add(3 * time.Hour)
	b := Prepare(in, DefaultParams()).Fingerprint()
	require.Equal(t, a, b)

	in.Bookings = append(in.Bookings, stayBooking("extra", target, in.Now.Add(-time.Minute)))
	assert.NotEqual(t, a, Prepare(in, DefaultParams()).Fingerprint())
}

func TestScenarios(t *testing.T) {
	rec := &domain.ForecastRecord{ForecastedDemand: 1.0}
	rt := &domain.RoomType{ID: "DLX", BaseRate: 100, UnitCount: 10}

	out := Scenarios(rec, rt)
	require.Len(t, out, 3)
	assert.Equal(t, "low", out[0].Name)
	assert.InDelta(t, 0.8, out[0].Demand, 1e-9)
	assert.InDelta(t, -200, out[0].RevenueDiff, 1e-9)
	assert.InDelta(t, -20, out[0].ImpactPct, 1e-9)
	assert.Zero(t, out[1].RevenueDiff)
	assert.InDelta(t, 30, out[2].ImpactPct, 1e-9)

	var total float64
	for _, s := range out {
		total += s.Probability
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestAccuracy(t *testing.T) {
	day := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		demand    float64
		bookings  int
		units     int
		occupancy float64
		absErr    float64
		pctErr    float64
		score     float64
	}{
		{"close forecast", 0.8, 60, 100, 0.6, 0.2, 33.333333, 66.666667},
		{"exact forecast", 0.5, 10, 20, 0.5, 0, 0, 100},
		{"no inventory counts as one unit", 1.0, 1, 0, 1.0, 0, 0, 100},
		{"empty night floors the denominator", 0.8, 0, 50, 0, 0.8, 8000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &domain.ForecastRecord{RoomTypeID: "DLX", Date: day.Add(5 * time.Hour), ForecastedDemand: tt.demand}
			r := Accuracy(rec, tt.bookings, tt.units)
			assert.Equal(t, day, r.Date)
			assert.InDelta(t, tt.occupancy, r.ActualOccupancy, 1e-9)
			assert.InDelta(t, tt.absErr, r.AbsoluteError, 1e-9)
			assert.InDelta(t, tt.pctErr, r.PercentageError, 1e-5)
			assert.InDelta(t, tt.score, r.AccuracyScore, 1e-5)
		})
	}
}

func TestAnalyzePatterns(t *testing.T) {
	from := now.AddDate(0, 0, -30)
	bookings := []*domain.Booking{
		{Channel: "DIRECT", Rate: 200, CheckIn: now, CreatedAt: now},
		{Channel: "BOOKING_COM", Rate: 300, CheckIn: now.AddDate(0, 0, 5), CreatedAt: now},
		{Channel: "BOOKING_COM", Rate: 250, CheckIn: now.AddDate(0, 0, 40), CreatedAt: now.AddDate(0, 0, -1)},
	}

	p := AnalyzePatterns("DLX", bookings, from, now)
	assert.Equal(t, 3, p.TotalBookings)
	assert.Equal(t, 1, p.LeadTimeBuckets["same_day"])
	assert.Equal(t, 1, p.LeadTimeBuckets["1-7_days"])
	assert.Equal(t, 1, p.LeadTimeBuckets["31+_days"])
	assert.Equal(t, 2, p.ChannelMix["BOOKING_COM"])
	assert.InDelta(t, 250, p.AvgRate, 1e-9)
	assert.InDelta(t, 1.5, p.AvgDailyBookings, 1e-9)
	assert.Equal(t, VelocityInsufficient, p.Velocity)

	empty := AnalyzePatterns("DLX", nil, from, now)
	assert.Zero(t, empty.TotalBookings)
}
