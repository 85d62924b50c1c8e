package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RMSMetrics содержит все метрики revenue management
type RMSMetrics struct {
	// Прогноз
	ForecastsGeneratedTotal prometheus.CounterVec
	ForecastConfidence      prometheus.HistogramVec

	// Конкуренты
	CompetitorIndexTotal  prometheus.CounterVec
	CompetitorMappingMiss prometheus.CounterVec

	// Цены
	RatesPublishedTotal prometheus.CounterVec
	RatesClampedTotal   prometheus.CounterVec
	PublishedRate       prometheus.GaugeVec

	// Каналы
	PushesTotal             prometheus.CounterVec
	ParityViolationsTotal   prometheus.CounterVec
	ChannelGuestDisplayRate prometheus.GaugeVec

	// Цикл переоценки
	CycleDuration   prometheus.HistogramVec
	CycleKeysTotal  prometheus.CounterVec
	KeyErrorsTotal  prometheus.CounterVec
	SimulationSteps prometheus.CounterVec
}

// NewRMSMetrics регистрирует метрики в reg. nil означает глобальный регистр.
func NewRMSMetrics(reg prometheus.Registerer) *RMSMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &RMSMetrics{
		ForecastsGeneratedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rms_forecasts_generated_total",
				Help: "Количество сгенерированных прогнозов по модели",
			},
			[]string{"room_type_id", "model"},
		),

		ForecastConfidence: *factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rms_forecast_confidence",
				Help:    "Распределение уверенности прогноза",
				Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
			},
			[]string{"room_type_id"},
		),

		CompetitorIndexTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rms_competitor_index_total",
				Help: "Расчёты индекса конкурентов по степени свежести данных",
			},
			[]string{"room_type_id", "staleness"},
		),

		CompetitorMappingMiss: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rms_competitor_mapping_miss_total",
				Help: "Наблюдения конкурентов без сопоставленного типа номера",
			},
			[]string{"room_type_id"},
		),

		RatesPublishedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rms_rates_published_total",
				Help: "Количество опубликованных ставок по источнику",
			},
			[]string{"room_type_id", "source"},
		),

		RatesClampedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rms_rates_clamped_total",
				Help: "Ставки, ограниченные floor/ceiling",
			},
			[]string{"room_type_id", "bound"},
		),

		PublishedRate: *factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rms_published_rate",
				Help: "Последняя опубликованная ставка",
			},
			[]string{"room_type_id"},
		),

		PushesTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rms_channel_pushes_total",
				Help: "Пуши в каналы по статусу",
			},
			[]string{"channel_id", "status", "code"},
		),

		ParityViolationsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rms_parity_violations_total",
				Help: "Нарушения паритета цен по каналам",
			},
			[]string{"channel_id"},
		),

		ChannelGuestDisplayRate: *factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rms_channel_guest_display_price",
				Help: "Последняя гостевая цена в канале",
			},
			[]string{"channel_id", "room_type_id"},
		),

		CycleDuration: *factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rms_cycle_duration_seconds",
				Help:    "Длительность цикла переоценки",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"trigger"},
		),

		CycleKeysTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rms_cycle_keys_total",
				Help: "Ключи (тип номера, дата), обработанные циклом, по статусу",
			},
			[]string{"status"},
		),

		KeyErrorsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rms_key_errors_total",
				Help: "Ошибки по видам",
			},
			[]string{"operation", "kind"},
		),

		SimulationSteps: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rms_simulation_steps_total",
				Help: "Шаги симуляции, отданные потребителю",
			},
			[]string{"room_type_id"},
		),
	}
}

// ============= МЕТОДЫ ЗАПИСИ =============
// Все методы безопасны для nil-получателя.

func (m *RMSMetrics) RecordForecast(roomTypeID, model string, confidence float64) {
	if m == nil {
		return
	}
	m.ForecastsGeneratedTotal.WithLabelValues(roomTypeID, model).Inc()
	m.ForecastConfidence.WithLabelValues(roomTypeID).Observe(confidence)
}

func (m *RMSMetrics) RecordCompetitorIndex(roomTypeID, staleness string, misses int) {
	if m == nil {
		return
	}
	m.CompetitorIndexTotal.WithLabelValues(roomTypeID, staleness).Inc()
	if misses > 0 {
		m.CompetitorMappingMiss.WithLabelValues(roomTypeID).Add(float64(misses))
	}
}

func (m *RMSMetrics) RecordRate(roomTypeID, source string, rate, raw, floor, ceiling float64) {
	if m == nil {
		return
	}
	m.RatesPublishedTotal.WithLabelValues(roomTypeID, source).Inc()
	m.PublishedRate.WithLabelValues(roomTypeID).Set(rate)
	switch {
	case raw < floor:
		m.RatesClampedTotal.WithLabelValues(roomTypeID, "floor").Inc()
	case raw > ceiling:
		m.RatesClampedTotal.WithLabelValues(roomTypeID, "ceiling").Inc()
	}
}

func (m *RMSMetrics) RecordPush(channelID, roomTypeID, status, code string, guestPrice float64) {
	if m == nil {
		return
	}
	m.PushesTotal.WithLabelValues(channelID, status, code).Inc()
	m.ChannelGuestDisplayRate.WithLabelValues(channelID, roomTypeID).Set(guestPrice)
}

func (m *RMSMetrics) RecordParityViolation(channelID string) {
	if m == nil {
		return
	}
	m.ParityViolationsTotal.WithLabelValues(channelID).Inc()
}

func (m *RMSMetrics) RecordCycle(trigger string, duration time.Duration, statuses map[string]int) {
	if m == nil {
		return
	}
	m.CycleDuration.WithLabelValues(trigger).Observe(duration.Seconds())
	for status, n := range statuses {
		m.CycleKeysTotal.WithLabelValues(status).Add(float64(n))
	}
}

func (m *RMSMetrics) RecordError(operation, kind string) {
	if m == nil {
		return
	}
	m.KeyErrorsTotal.WithLabelValues(operation, kind).Inc()
}

func (m *RMSMetrics) RecordSimulationStep(roomTypeID string) {
	if m == nil {
		return
	}
	m.SimulationSteps.WithLabelValues(roomTypeID).Inc()
}
