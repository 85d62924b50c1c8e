package mappers

import (
	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/LavaJover/shvark-rms-service/internal/infrastructure/postgres/models"
)

func ToGORMForecast(rec *domain.ForecastRecord) *models.ForecastModel {
	return &models.ForecastModel{
		RoomTypeID:       rec.RoomTypeID,
		Date:             domain.DateOf(rec.Date),
		ForecastedDemand: rec.ForecastedDemand,
		RawDemand:        rec.RawDemand,
		PaceRatio:        rec.PaceRatio,
		EventUplift:      rec.EventUplift,
		Confidence:       rec.Confidence,
		Sample:           rec.Sample,
		LeadDays:         rec.LeadDays,
		Model:            string(rec.Model),
		GeneratedAt:      rec.GeneratedAt.UTC(),
	}
}

func ToDomainForecast(model *models.ForecastModel) *domain.ForecastRecord {
	return &domain.ForecastRecord{
		RoomTypeID:       model.RoomTypeID,
		Date:             domain.DateOf(model.Date),
		ForecastedDemand: model.ForecastedDemand,
		RawDemand:        model.RawDemand,
		PaceRatio:        model.PaceRatio,
		EventUplift:      model.EventUplift,
		Confidence:       model.Confidence,
		Sample:           model.Sample,
		LeadDays:         model.LeadDays,
		Model:            domain.ForecastModelKind(model.Model),
		GeneratedAt:      model.GeneratedAt.UTC(),
	}
}

func ToGORMSnapshot(s *domain.ForecastSnapshot) *models.ForecastSnapshotModel {
	return &models.ForecastSnapshotModel{
		ID:          s.ID,
		RoomTypeID:  s.RoomTypeID,
		Date:        domain.DateOf(s.Date),
		RawDemand:   s.RawDemand,
		Fingerprint: s.Fingerprint,
		CreatedAt:   s.CreatedAt.UTC(),
	}
}

func ToDomainSnapshot(model *models.ForecastSnapshotModel) *domain.ForecastSnapshot {
	return &domain.ForecastSnapshot{
		ID:          model.ID,
		RoomTypeID:  model.RoomTypeID,
		Date:        domain.DateOf(model.Date),
		RawDemand:   model.RawDemand,
		Fingerprint: model.Fingerprint,
		CreatedAt:   model.CreatedAt.UTC(),
	}
}
