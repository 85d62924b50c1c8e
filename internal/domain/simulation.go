package domain

import "time"

// SimulationOverrides подменяют входы конвейера для dry-run. Нулевые значения нейтральны.
type SimulationOverrides struct {
	DemandMultiplier float64
	DemandShift      float64
	CompetitorShock  float64
	// EventUplift принудительно задаёт uplift события; 0 отключает события.
	EventUplift  *float64
	Coefficients *Coefficients
	AsOf         *time.Time
	// Channels: nil - без цен каналов, пустой срез - все активные каналы.
	Channels []string
}

func (o *SimulationOverrides) competitorShock() float64 {
	if o == nil || o.CompetitorShock == 0 {
		return 1
	}
	return o.CompetitorShock
}

// ShockIndex применяет шок конкурентов к индексу.
func (o *SimulationOverrides) ShockIndex(index float64) float64 {
	return index * o.competitorShock()
}

// Evaluation - промежуточные результаты одного прохода forecast → competitor → price.
type Evaluation struct {
	RoomType   *RoomType
	Forecast   *ForecastRecord
	Competitor *CompetitorIndex
	Price      *PriceHistory
}

// SimulationStep - один день симуляции.
type SimulationStep struct {
	RoomTypeID string
	Date       time.Time
	Forecast   *ForecastRecord
	Competitor *CompetitorIndex
	Price      *PriceHistory
	Channels   []*PushLogEntry
}
