package mappers

import (
	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/models"
)

func ToGORMPriceHistory(row *domain.PriceHistory) *models.PriceHistoryModel {
	return &models.PriceHistoryModel{
		ID:            row.ID,
		RoomTypeID:    row.RoomTypeID,
		Date:          domain.DateOf(row.Date),
		PublishedRate: row.PublishedRate,
		Floor:         row.Floor,
		Ceiling:       row.Ceiling,
		Coefficients:  row.Coefficients,
		Components:    row.Components,
		Source:        string(row.Source),
		Actor:         row.Actor,
		Reason:        row.Reason,
		CreatedAt:     row.CreatedAt.UTC(),
	}
}

func ToDomainPriceHistory(model *models.PriceHistoryModel) *domain.PriceHistory {
	return &domain.PriceHistory{
		ID:            model.ID,
		RoomTypeID:    model.RoomTypeID,
		Date:          domain.DateOf(model.Date),
		PublishedRate: model.PublishedRate,
		Floor:         model.Floor,
		Ceiling:       model.Ceiling,
		Coefficients:  model.Coefficients,
		Components:    model.Components,
		Source:        domain.PriceSource(model.Source),
		Actor:         model.Actor,
		Reason:        model.Reason,
		CreatedAt:     model.CreatedAt.UTC(),
	}
}

func ToGORMPushLog(e *domain.PushLogEntry) *models.PushLogModel {
	return &models.PushLogModel{
		ID:                 e.ID,
		ChannelID:          e.ChannelID,
		RoomTypeID:         e.RoomTypeID,
		Date:               domain.DateOf(e.Date),
		PublishedRate:      e.PublishedRate,
		GuestDisplayPrice:  e.GuestDisplayPrice,
		HotelNetPrice:      e.HotelNetPrice,
		CommissionPct:      e.CommissionPct,
		LoyaltyDiscountPct: e.LoyaltyDiscountPct,
		Status:             string(e.Status),
		StatusCode:         e.StatusCode,
		Message:            e.Message,
		Reference:          e.Reference,
		PushedAt:           e.PushedAt.UTC(),
	}
}

func ToDomainPushLog(model *models.PushLogModel) *domain.PushLogEntry {
	return &domain.PushLogEntry{
		ID:                 model.ID,
		ChannelID:          model.ChannelID,
		RoomTypeID:         model.RoomTypeID,
		Date:               domain.DateOf(model.Date),
		PublishedRate:      model.PublishedRate,
		GuestDisplayPrice:  model.GuestDisplayPrice,
		HotelNetPrice:      model.HotelNetPrice,
		CommissionPct:      model.CommissionPct,
		LoyaltyDiscountPct: model.LoyaltyDiscountPct,
		Status:             domain.PushStatus(model.Status),
		StatusCode:         model.StatusCode,
		Message:            model.Message,
		Reference:          model.Reference,
		PushedAt:           model.PushedAt.UTC(),
	}
}

func ToGORMCycleRun(s *domain.CycleSummary) *models.CycleRunModel {
	return &models.CycleRunModel{
		ID:           s.RunID,
		TriggeredBy:  s.Trigger,
		StartedAt:    s.StartedAt.UTC(),
		FinishedAt:   s.FinishedAt.UTC(),
		Priced:       s.Priced,
		Skipped:      s.Skipped,
		Failed:       s.Failed,
		Canceled:     s.Canceled,
		PushFailures: len(s.PushFailures),
		Results:      s.Results,
		Failures:     s.PushFailures,
	}
}

func ToDomainCycleRun(model *models.CycleRunModel) *domain.CycleSummary {
	return &domain.CycleSummary{
		RunID:        model.ID,
		Trigger:      model.TriggeredBy,
		StartedAt:    model.StartedAt.UTC(),
		FinishedAt:   model.FinishedAt.UTC(),
		Results:      model.Results,
		PushFailures: model.Failures,
		Priced:       model.Priced,
		Skipped:      model.Skipped,
		Failed:       model.Failed,
		Canceled:     model.Canceled,
	}
}
