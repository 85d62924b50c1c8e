package response

import (
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/usecase/forecast"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type Forecast struct {
	RoomTypeID       string    `json:"room_type_id"`
	Date             string    `json:"date"`
	ForecastedDemand float64   `json:"forecasted_demand"`
	RawDemand        float64   `json:"raw_demand"`
	PaceRatio        float64   `json:"pace_ratio"`
	EventUplift      float64   `json:"event_uplift"`
	Confidence       float64   `json:"confidence"`
	Sample           int       `json:"sample"`
	LeadDays         int       `json:"lead_days"`
	Model            string    `json:"model"`
	GeneratedAt      time.Time `json:"generated_at"`
}

func FromForecast(rec *domain.ForecastRecord) Forecast {
	return Forecast{
		RoomTypeID:       rec.RoomTypeID,
		Date:             rec.Date.Format(domain.DateLayout),
		ForecastedDemand: rec.ForecastedDemand,
		RawDemand:        rec.RawDemand,
		PaceRatio:        rec.PaceRatio,
		EventUplift:      rec.EventUplift,
		Confidence:       rec.Confidence,
		Sample:           rec.Sample,
		LeadDays:         rec.LeadDays,
		Model:            string(rec.Model),
		GeneratedAt:      rec.GeneratedAt,
	}
}

func FromForecasts(recs []*domain.ForecastRecord) []Forecast {
	out := make([]Forecast, 0, len(recs))
	for _, rec := range recs {
		out = append(out, FromForecast(rec))
	}
	return out
}

type CompetitorIndex struct {
	Index            float64 `json:"index"`
	Staleness        string  `json:"staleness"`
	MedianRate       float64 `json:"median_rate"`
	FreshCompetitors int     `json:"fresh_competitors"`
	StaleCompetitors int     `json:"stale_competitors"`
	MappingMisses    int     `json:"mapping_misses"`
}

func FromCompetitorIndex(idx *domain.CompetitorIndex) *CompetitorIndex {
	if idx == nil {
		return nil
	}
	return &CompetitorIndex{
		Index:            idx.Index,
		Staleness:        string(idx.Staleness),
		MedianRate:       idx.MedianRate,
		FreshCompetitors: idx.FreshCompetitors,
		StaleCompetitors: idx.StaleCompetitors,
		MappingMisses:    idx.MappingMisses,
	}
}

type Price struct {
	ID            string                 `json:"id,omitempty"`
	RoomTypeID    string                 `json:"room_type_id"`
	Date          string                 `json:"date"`
	PublishedRate float64                `json:"published_rate"`
	Floor         float64                `json:"floor"`
	Ceiling       float64                `json:"ceiling"`
	Coefficients  domain.Coefficients    `json:"coefficients"`
	Components    domain.PriceComponents `json:"components"`
	Source        string                 `json:"source"`
	Actor         string                 `json:"actor,omitempty"`
	Reason        string                 `json:"reason,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

func FromPrice(row *domain.PriceHistory) Price {
	return Price{
		ID:            row.ID,
		RoomTypeID:    row.RoomTypeID,
		Date:          row.Date.Format(domain.DateLayout),
		PublishedRate: row.PublishedRate,
		Floor:         row.Floor,
		Ceiling:       row.Ceiling,
		Coefficients:  row.Coefficients,
		Components:    row.Components,
		Source:        string(row.Source),
		Actor:         row.Actor,
		Reason:        row.Reason,
		CreatedAt:     row.CreatedAt,
	}
}

func FromPrices(rows []*domain.PriceHistory) []Price {
	out := make([]Price, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromPrice(row))
	}
	return out
}

type PriceSummary struct {
	RoomTypeID string  `json:"room_type_id"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	BaseRate   float64 `json:"base_rate"`
	AvgRate    float64 `json:"avg_rate"`
	MinRate    float64 `json:"min_rate"`
	MaxRate    float64 `json:"max_rate"`
	StdDev     float64 `json:"std_dev"`
	Days       int     `json:"days"`
}

func FromPriceSummary(s *domain.PriceSummary) PriceSummary {
	return PriceSummary{
		RoomTypeID: s.RoomTypeID,
		From:       s.From.Format(domain.DateLayout),
		To:         s.To.Format(domain.DateLayout),
		BaseRate:   s.BaseRate,
		AvgRate:    s.AvgRate,
		MinRate:    s.MinRate,
		MaxRate:    s.MaxRate,
		StdDev:     s.StdDev,
		Days:       s.Days,
	}
}

type Push struct {
	ID                 string    `json:"id,omitempty"`
	ChannelID          string    `json:"channel_id"`
	RoomTypeID         string    `json:"room_type_id"`
	Date               string    `json:"date"`
	PublishedRate      float64   `json:"published_rate"`
	GuestDisplayPrice  float64   `json:"guest_display_price"`
	HotelNetPrice      float64   `json:"hotel_net_price"`
	CommissionPct      float64   `json:"commission_pct"`
	LoyaltyDiscountPct float64   `json:"loyalty_discount_pct"`
	Status             string    `json:"status"`
	StatusCode         int       `json:"status_code,omitempty"`
	Message            string    `json:"message,omitempty"`
	Reference          string    `json:"reference,omitempty"`
	PushedAt           time.Time `json:"pushed_at,omitzero"`
}

func FromPush(e *domain.PushLogEntry) Push {
	return Push{
		ID:                 e.ID,
		ChannelID:          e.ChannelID,
		RoomTypeID:         e.RoomTypeID,
		Date:               e.Date.Format(domain.DateLayout),
		PublishedRate:      e.PublishedRate,
		GuestDisplayPrice:  e.GuestDisplayPrice,
		HotelNetPrice:      e.HotelNetPrice,
		CommissionPct:      e.CommissionPct,
		LoyaltyDiscountPct: e.LoyaltyDiscountPct,
		Status:             string(e.Status),
		StatusCode:         e.StatusCode,
		Message:            e.Message,
		Reference:          e.Reference,
		PushedAt:           e.PushedAt,
	}
}

func FromPushes(entries []*domain.PushLogEntry) []Push {
	out := make([]Push, 0, len(entries))
	for _, e := range entries {
		out = append(out, FromPush(e))
	}
	return out
}

type PushCounter struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

type PushStats struct {
	Since       time.Time              `json:"since"`
	Total       int                    `json:"total"`
	Success     int                    `json:"success"`
	Failed      int                    `json:"failed"`
	SuccessRate float64                `json:"success_rate"`
	ByChannel   map[string]PushCounter `json:"by_channel"`
	ByRoomType  map[string]PushCounter `json:"by_room_type"`
	ByDay       map[string]PushCounter `json:"by_day"`
}

func counters(in map[string]*domain.PushCounter) map[string]PushCounter {
	out := make(map[string]PushCounter, len(in))
	for k, c := range in {
		out[k] = PushCounter{Total: c.Total, Success: c.Success, Failed: c.Failed}
	}
	return out
}

func FromPushStats(s *domain.PushStats) PushStats {
	return PushStats{
		Since:       s.Since,
		Total:       s.Total,
		Success:     s.Success,
		Failed:      s.Failed,
		SuccessRate: s.SuccessRate,
		ByChannel:   counters(s.ByChannel),
		ByRoomType:  counters(s.ByRoomType),
		ByDay:       counters(s.ByDay),
	}
}

type ParityViolation struct {
	ChannelID         string    `json:"channel_id"`
	GuestDisplayPrice float64   `json:"guest_display_price"`
	Difference        float64   `json:"difference"`
	PushedAt          time.Time `json:"pushed_at"`
}

type ParityFlag struct {
	RoomTypeID  string            `json:"room_type_id"`
	Date        string            `json:"date"`
	DirectPrice float64           `json:"direct_price"`
	Tolerance   float64           `json:"tolerance"`
	Checked     int               `json:"checked"`
	Violated    bool              `json:"violated"`
	Channels    []ParityViolation `json:"channels"`
}

func FromParityFlag(f *domain.ParityFlag) ParityFlag {
	out := ParityFlag{
		RoomTypeID:  f.RoomTypeID,
		Date:        f.Date.Format(domain.DateLayout),
		DirectPrice: f.DirectPrice,
		Tolerance:   f.Tolerance,
		Checked:     f.Checked,
		Violated:    f.Violated(),
		Channels:    make([]ParityViolation, 0, len(f.Channels)),
	}
	for _, v := range f.Channels {
		out.Channels = append(out.Channels, ParityViolation(v))
	}
	return out
}

type Scenario struct {
	Name            string  `json:"name"`
	Demand          float64 `json:"demand"`
	Probability     float64 `json:"probability"`
	Description     string  `json:"description"`
	BaseRevenue     float64 `json:"base_revenue"`
	ScenarioRevenue float64 `json:"scenario_revenue"`
	RevenueDiff     float64 `json:"revenue_diff"`
	ImpactPct       float64 `json:"impact_pct"`
}

func FromScenarios(scenarios []forecast.Scenario) []Scenario {
	out := make([]Scenario, 0, len(scenarios))
	for _, s := range scenarios {
		out = append(out, Scenario(s))
	}
	return out
}

type ForecastAccuracy struct {
	RoomTypeID      string    `json:"room_type_id"`
	Date            string    `json:"date"`
	PredictedDemand float64   `json:"predicted_demand"`
	ActualBookings  int       `json:"actual_bookings"`
	UnitCount       int       `json:"unit_count"`
	ActualOccupancy float64   `json:"actual_occupancy"`
	AbsoluteError   float64   `json:"absolute_error"`
	PercentageError float64   `json:"percentage_error"`
	AccuracyScore   float64   `json:"accuracy_score"`
	GeneratedAt     time.Time `json:"generated_at"`
}

func FromForecastAccuracy(r *forecast.AccuracyReport) ForecastAccuracy {
	return ForecastAccuracy{
		RoomTypeID:      r.RoomTypeID,
		Date:            r.Date.Format(domain.DateLayout),
		PredictedDemand: r.PredictedDemand,
		ActualBookings:  r.ActualBookings,
		UnitCount:       r.UnitCount,
		ActualOccupancy: r.ActualOccupancy,
		AbsoluteError:   r.AbsoluteError,
		PercentageError: r.PercentageError,
		AccuracyScore:   r.AccuracyScore,
		GeneratedAt:     r.GeneratedAt,
	}
}

type BookingPatterns struct {
	RoomTypeID       string         `json:"room_type_id"`
	From             time.Time      `json:"from"`
	To               time.Time      `json:"to"`
	TotalBookings    int            `json:"total_bookings"`
	AvgLeadTime      float64        `json:"avg_lead_time"`
	LeadTimeBuckets  map[string]int `json:"lead_time_buckets"`
	ChannelMix       map[string]int `json:"channel_mix"`
	AvgRate          float64        `json:"avg_rate"`
	RateStdDev       float64        `json:"rate_std_dev"`
	AvgDailyBookings float64        `json:"avg_daily_bookings"`
	Velocity         string         `json:"velocity"`
}

func FromBookingPatterns(p *forecast.BookingPatterns) BookingPatterns {
	return BookingPatterns{
		RoomTypeID:       p.RoomTypeID,
		From:             p.From,
		To:               p.To,
		TotalBookings:    p.TotalBookings,
		AvgLeadTime:      p.AvgLeadTime,
		LeadTimeBuckets:  p.LeadTimeBuckets,
		ChannelMix:       p.ChannelMix,
		AvgRate:          p.AvgRate,
		RateStdDev:       p.RateStdDev,
		AvgDailyBookings: p.AvgDailyBookings,
		Velocity:         string(p.Velocity),
	}
}

type KeyResult struct {
	RoomTypeID    string  `json:"room_type_id"`
	Date          string  `json:"date"`
	Status        string  `json:"status"`
	PublishedRate float64 `json:"published_rate,omitempty"`
	Source        string  `json:"source,omitempty"`
	Staleness     string  `json:"staleness,omitempty"`
	Confidence    float64 `json:"confidence,omitempty"`
	ErrKind       string  `json:"error_kind,omitempty"`
	Err           string  `json:"error,omitempty"`
	Pushes        int     `json:"pushes"`
}

type PushFailure struct {
	RoomTypeID string `json:"room_type_id"`
	Date       string `json:"date"`
	ChannelID  string `json:"channel_id"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

type CycleSummary struct {
	RunID        string        `json:"run_id"`
	Trigger      string        `json:"trigger"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	Priced       int           `json:"priced"`
	Skipped      int           `json:"skipped"`
	Failed       int           `json:"failed"`
	Canceled     int           `json:"canceled"`
	Results      []KeyResult   `json:"results,omitempty"`
	PushFailures []PushFailure `json:"push_failures,omitempty"`
}

func FromCycleSummary(s *domain.CycleSummary, withResults bool) CycleSummary {
	out := CycleSummary{
		RunID:      s.RunID,
		Trigger:    s.Trigger,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		Priced:     s.Priced,
		Skipped:    s.Skipped,
		Failed:     s.Failed,
		Canceled:   s.Canceled,
	}
	if !withResults {
		return out
	}
	for _, r := range s.Results {
		out.Results = append(out.Results, KeyResult{
			RoomTypeID:    r.RoomTypeID,
			Date:          r.Date.Format(domain.DateLayout),
			Status:        string(r.Status),
			PublishedRate: r.PublishedRate,
			Source:        string(r.Source),
			Staleness:     string(r.Staleness),
			Confidence:    r.Confidence,
			ErrKind:       string(r.ErrKind),
			Err:           r.Err,
			Pushes:        r.Pushes,
		})
	}
	for _, f := range s.PushFailures {
		out.PushFailures = append(out.PushFailures, PushFailure{
			RoomTypeID: f.Key.RoomTypeID,
			Date:       f.Key.Date.Format(domain.DateLayout),
			ChannelID:  f.Key.ChannelID,
			StatusCode: f.StatusCode,
			Message:    f.Message,
		})
	}
	return out
}
