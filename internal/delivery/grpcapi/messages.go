package grpcapi

import (
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-rms-service/internal/domain"
)

type RunCycleRequest struct {
	RoomTypeIDs []string `json:"room_type_ids,omitempty"`
	From        string   `json:"from,omitempty"`
	To          string   `json:"to,omitempty"`
	ChannelIDs  []string `json:"channel_ids,omitempty"`
	Force       bool     `json:"force,omitempty"`
}

type CycleSummaryResponse struct {
	Summary response.CycleSummary `json:"summary"`
}

type PriceRequest struct {
	RoomTypeID string `json:"room_type_id"`
	Date       string `json:"date"`
}

type PriceResponse struct {
	Price response.Price `json:"price"`
}

type OverridePriceRequest struct {
	RoomTypeID string  `json:"room_type_id"`
	Date       string  `json:"date"`
	Rate       float64 `json:"rate"`
	Actor      string  `json:"actor,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

type PushRequest struct {
	ChannelID     string  `json:"channel_id"`
	RoomTypeID    string  `json:"room_type_id"`
	Date          string  `json:"date"`
	PublishedRate float64 `json:"published_rate,omitempty"`
}

type PushResponse struct {
	Push response.Push `json:"push"`
}

type ParityRequest struct {
	RoomTypeID string   `json:"room_type_id"`
	Date       string   `json:"date"`
	Tolerance  *float64 `json:"tolerance,omitempty"`
}

type ParityResponse struct {
	Parity response.ParityFlag `json:"parity"`
}

type SimulateRequest struct {
	RoomTypeID       string               `json:"room_type_id"`
	From             string               `json:"from"`
	To               string               `json:"to"`
	DemandMultiplier float64              `json:"demand_multiplier,omitempty"`
	DemandShift      float64              `json:"demand_shift,omitempty"`
	CompetitorShock  float64              `json:"competitor_shock,omitempty"`
	EventUplift      *float64             `json:"event_uplift,omitempty"`
	Coefficients     *domain.Coefficients `json:"coefficients,omitempty"`
	AsOf             *time.Time           `json:"as_of,omitempty"`
	// PreviewChannels включает цены каналов; пустой Channels - все активные.
	PreviewChannels bool     `json:"preview_channels,omitempty"`
	Channels        []string `json:"channels,omitempty"`
}

func (r *SimulateRequest) Overrides() domain.SimulationOverrides {
	o := domain.SimulationOverrides{
		DemandMultiplier: r.DemandMultiplier,
		DemandShift:      r.DemandShift,
		CompetitorShock:  r.CompetitorShock,
		EventUplift:      r.EventUplift,
		Coefficients:     r.Coefficients,
		AsOf:             r.AsOf,
	}
	if r.PreviewChannels || len(r.Channels) > 0 {
		o.Channels = append([]string{}, r.Channels...)
	}
	return o
}

type SimulationStep struct {
	RoomTypeID string                    `json:"room_type_id"`
	Date       string                    `json:"date"`
	Forecast   *response.Forecast        `json:"forecast,omitempty"`
	Competitor *response.CompetitorIndex `json:"competitor,omitempty"`
	Price      *response.Price           `json:"price,omitempty"`
	Channels   []response.Push           `json:"channels,omitempty"`
	Error      string                    `json:"error,omitempty"`
	ErrorKind  string                    `json:"error_kind,omitempty"`
}

func fromSimulationStep(step *domain.SimulationStep, err error) *SimulationStep {
	out := &SimulationStep{RoomTypeID: step.RoomTypeID, Date: step.Date.Format(domain.DateLayout)}
	if step.Forecast != nil {
		fc := response.FromForecast(step.Forecast)
		out.Forecast = &fc
	}
	out.Competitor = response.FromCompetitorIndex(step.Competitor)
	if step.Price != nil {
		p := response.FromPrice(step.Price)
		out.Price = &p
	}
	if len(step.Channels) > 0 {
		out.Channels = response.FromPushes(step.Channels)
	}
	if err != nil {
		out.Error = err.Error()
		out.ErrorKind = string(domain.ErrorKindOf(err))
	}
	return out
}
