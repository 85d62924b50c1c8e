package mappers

import (
	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/models"
)

func ToDomainRoomType(model *models.RoomTypeModel) *domain.RoomType {
	return &domain.RoomType{
		ID:        model.ID,
		Name:      model.Name,
		BaseRate:  model.BaseRate,
		Capacity:  model.Capacity,
		UnitCount: model.UnitCount,
	}
}

func ToGORMRoomType(rt *domain.RoomType) *models.RoomTypeModel {
	return &models.RoomTypeModel{
		ID:        rt.ID,
		Name:      rt.Name,
		BaseRate:  rt.BaseRate,
		Capacity:  rt.Capacity,
		UnitCount: rt.UnitCount,
	}
}

func ToDomainInventoryUnit(model *models.InventoryUnitModel) *domain.InventoryUnit {
	return &domain.InventoryUnit{
		ID:         model.ID,
		RoomTypeID: model.RoomTypeID,
		Status:     domain.UnitStatus(model.Status),
	}
}

func ToDomainBooking(model *models.BookingModel) *domain.Booking {
	return &domain.Booking{
		ID:         model.ID,
		RoomTypeID: model.RoomTypeID,
		CheckIn:    domain.DateOf(model.CheckIn),
		CheckOut:   domain.DateOf(model.CheckOut),
		Rate:       model.Rate,
		Channel:    model.Channel,
		CreatedAt:  model.CreatedAt.UTC(),
	}
}

func ToGORMBooking(b *domain.Booking) *models.BookingModel {
	return &models.BookingModel{
		ID:         b.ID,
		RoomTypeID: b.RoomTypeID,
		CheckIn:    domain.DateOf(b.CheckIn),
		CheckOut:   domain.DateOf(b.CheckOut),
		Rate:       b.Rate,
		Channel:    b.Channel,
		CreatedAt:  b.CreatedAt.UTC(),
	}
}

func ToDomainCompetitorRate(model *models.CompetitorRateModel) *domain.CompetitorRate {
	return &domain.CompetitorRate{
		ID:           model.ID,
		CompetitorID: model.CompetitorID,
		RoomLabel:    model.RoomLabel,
		Date:         domain.DateOf(model.Date),
		Rate:         model.Rate,
		Available:    model.Available,
		ObservedAt:   model.ObservedAt.UTC(),
	}
}

func ToGORMCompetitorRate(r *domain.CompetitorRate) *models.CompetitorRateModel {
	return &models.CompetitorRateModel{
		ID:           r.ID,
		CompetitorID: r.CompetitorID,
		RoomLabel:    r.RoomLabel,
		Date:         domain.DateOf(r.Date),
		Rate:         r.Rate,
		Available:    r.Available,
		ObservedAt:   r.ObservedAt.UTC(),
	}
}

func ToDomainEvent(model *models.EventMultiplierModel) *domain.EventMultiplier {
	return &domain.EventMultiplier{
		ID:         model.ID,
		Label:      model.Label,
		StartDate:  domain.DateOf(model.StartDate),
		EndDate:    domain.DateOf(model.EndDate),
		Multiplier: model.Multiplier,
	}
}

func ToGORMEvent(e *domain.EventMultiplier) *models.EventMultiplierModel {
	return &models.EventMultiplierModel{
		ID:         e.ID,
		Label:      e.Label,
		StartDate:  domain.DateOf(e.StartDate),
		EndDate:    domain.DateOf(e.EndDate),
		Multiplier: e.Multiplier,
	}
}

func ToDomainChannelRule(model *models.ChannelRuleModel) *domain.ChannelRule {
	return &domain.ChannelRule{
		ChannelID:          model.ChannelID,
		DisplayName:        model.DisplayName,
		CommissionPct:      model.CommissionPct,
		LoyaltyDiscountPct: model.LoyaltyDiscountPct,
		IsDirect:           model.IsDirect,
		Active:             model.Active,
	}
}

func ToGORMChannelRule(rule *domain.ChannelRule) *models.ChannelRuleModel {
	return &models.ChannelRuleModel{
		ChannelID:          rule.ChannelID,
		DisplayName:        rule.DisplayName,
		CommissionPct:      rule.CommissionPct,
		LoyaltyDiscountPct: rule.LoyaltyDiscountPct,
		IsDirect:           rule.IsDirect,
		Active:             rule.Active,
	}
}
