package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
)

type Scenario struct {
	Name            string
	Demand          float64
	Probability     float64
	Description     string
	BaseRevenue     float64
	ScenarioRevenue float64
	RevenueDiff     float64
	ImpactPct       float64
}

var scenarioTable = []struct {
	name        string
	factor      float64
	probability float64
	description string
}{
	{"low", 0.8, 0.2, "Market downturn, increased competition"},
	{"base", 1.0, 0.6, "Expected market conditions"},
	{"high", 1.3, 0.2, "Strong market, limited competition"},
}

// Scenarios раскладывает прогноз на низкий/базовый/высокий сценарии с оценкой выручки.
func Scenarios(record *domain.ForecastRecord, roomType *domain.RoomType) []Scenario {
	base := record.ForecastedDemand
	baseRevenue := base * float64(roomType.UnitCount) * roomType.BaseRate

	out := make([]Scenario, 0, len(scenarioTable))
	for _, row := range scenarioTable {
		demand := base * row.factor
		revenue := demand * float64(roomType.UnitCount) * roomType.BaseRate
		out = append(out, Scenario{
			Name:            row.name,
			Demand:          demand,
			Probability:     row.probability,
			Description:     row.description,
			BaseRevenue:     baseRevenue,
			ScenarioRevenue: revenue,
			RevenueDiff:     revenue - baseRevenue,
			ImpactPct:       (revenue - baseRevenue) / math.Max(baseRevenue, 1) * 100,
		})
	}
	return out
}

// AccuracyReport сравнивает прогноз прошедшей даты с фактической загрузкой.
type AccuracyReport struct {
	RoomTypeID      string
	Date            time.Time
	PredictedDemand float64
	ActualBookings  int
	UnitCount       int
	ActualOccupancy float64
	AbsoluteError   float64
	PercentageError float64
	AccuracyScore   float64
	GeneratedAt     time.Time
}

// Accuracy: occupancy = bookings / max(units, 1), ошибка в процентах считается
// от max(occupancy, 0.01), score = max(0, 100 - error%).
func Accuracy(record *domain.ForecastRecord, actualBookings, unitCount int) *AccuracyReport {
	occupancy := float64(actualBookings) / float64(max(unitCount, 1))
	absErr := math.Abs(record.ForecastedDemand - occupancy)
	pctErr := absErr / math.Max(occupancy, 0.01) * 100
	return &AccuracyReport{
		RoomTypeID:      record.RoomTypeID,
		Date:            domain.DateOf(record.Date),
		PredictedDemand: record.ForecastedDemand,
		ActualBookings:  actualBookings,
		UnitCount:       unitCount,
		ActualOccupancy: occupancy,
		AbsoluteError:   absErr,
		PercentageError: pctErr,
		AccuracyScore:   math.Max(0, 100-pctErr),
		GeneratedAt:     record.GeneratedAt,
	}
}

type VelocityTrend string

const (
	VelocityInsufficient VelocityTrend = "insufficient_data"
	VelocityAccelerating VelocityTrend = "accelerating"
	VelocityDecelerating VelocityTrend = "decelerating"
	VelocityStable       VelocityTrend = "stable"
)

type BookingPatterns struct {
	RoomTypeID       string
	From             time.Time
	To               time.Time
	TotalBookings    int
	AvgLeadTime      float64
	LeadTimeBuckets  map[string]int
	ChannelMix       map[string]int
	AvgRate          float64
	RateStdDev       float64
	AvgDailyBookings float64
	Velocity         VelocityTrend
}

func AnalyzePatterns(roomTypeID string, bookings []*domain.Booking, from, to time.Time) *BookingPatterns {
	p := &BookingPatterns{
		RoomTypeID:      roomTypeID,
		From:            from,
		To:              to,
		TotalBookings:   len(bookings),
		LeadTimeBuckets: map[string]int{"same_day": 0, "1-7_days": 0, "8-30_days": 0, "31+_days": 0},
		ChannelMix:      map[string]int{},
		Velocity:        VelocityInsufficient,
	}
	if len(bookings) == 0 {
		return p
	}

	var leadSum, rateSum float64
	perDay := map[time.Time]int{}
	for _, b := range bookings {
		lead := b.LeadDays()
		leadSum += float64(lead)
		switch {
		case lead == 0:
			p.LeadTimeBuckets["same_day"]++
		case lead <= 7:
			p.LeadTimeBuckets["1-7_days"]++
		case lead <= 30:
			p.LeadTimeBuckets["8-30_days"]++
		default:
			p.LeadTimeBuckets["31+_days"]++
		}
		p.ChannelMix[b.Channel]++
		rateSum += b.Rate
		perDay[domain.DateOf(b.CreatedAt)]++
	}

	n := float64(len(bookings))
	p.AvgLeadTime = leadSum / n
	p.AvgRate = rateSum / n

	var variance float64
	for _, b := range bookings {
		variance += (b.Rate - p.AvgRate) * (b.Rate - p.AvgRate)
	}
	p.RateStdDev = math.Sqrt(variance / n)

	days := make([]time.Time, 0, len(perDay))
	for d := range perDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	p.AvgDailyBookings = n / float64(len(days))
	p.Velocity = velocityTrend(days, perDay)

	return p
}

// velocityTrend сравнивает среднюю дневную загрузку последних 7 активных дней с первыми 7.
func velocityTrend(days []time.Time, perDay map[time.Time]int) VelocityTrend {
	if len(days) < 7 {
		return VelocityInsufficient
	}
	avg := func(ds []time.Time) float64 {
		sum := 0
		for _, d := range ds {
			sum += perDay[d]
		}
		return float64(sum) / float64(len(ds))
	}
	earlier := avg(days[:7])
	recent := avg(days[len(days)-7:])
	switch {
	case recent > earlier*1.1:
		return VelocityAccelerating
	case recent < earlier*0.9:
		return VelocityDecelerating
	}
	return VelocityStable
}
