package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/google/uuid"
)

type RoomTypeWriter interface {
	SaveRoomType(ctx context.Context, rt *domain.RoomType) error
	SaveInventoryUnit(ctx context.Context, unit *domain.InventoryUnit) error
}

type BookingWriter interface {
	CreateBookings(ctx context.Context, bookings []*domain.Booking) error
}

type EventWriter interface {
	SaveEvent(ctx context.Context, event *domain.EventMultiplier) error
}

type ChannelRuleWriter interface {
	SaveChannelRule(ctx context.Context, rule *domain.ChannelRule) error
}

// Seeder заполняет справочники и демо-данные отеля. Повторный запуск
// обновляет справочники и дописывает бронирования и наблюдения.
type Seeder struct {
	RoomTypes   RoomTypeWriter
	Bookings    BookingWriter
	Competitors domain.CompetitorRateWriter
	Events      EventWriter
	Channels    ChannelRuleWriter
	Logger      *slog.Logger

	rnd *rand.Rand
}

type Options struct {
	Now          time.Time
	Seed         uint64
	HistoryDays  int
	HorizonDays  int
	SkipBookings bool
}

var RoomTypes = []*domain.RoomType{
	{ID: "deluxe", Name: "Deluxe", Capacity: 2, BaseRate: 280, UnitCount: 120},
	{ID: "club-king", Name: "Club King", Capacity: 2, BaseRate: 350, UnitCount: 60},
	{ID: "club-twin", Name: "Club Twin", Capacity: 2, BaseRate: 330, UnitCount: 50},
	{ID: "one-bedroom", Name: "One-Bedroom", Capacity: 3, BaseRate: 450, UnitCount: 60},
	{ID: "two-bedroom", Name: "Two-Bedroom", Capacity: 4, BaseRate: 700, UnitCount: 40},
	{ID: "executive-suite", Name: "Executive Suite", Capacity: 2, BaseRate: 900, UnitCount: 9},
}

var ChannelRules = []*domain.ChannelRule{
	{ChannelID: domain.DirectChannelID, DisplayName: "Direct Booking", IsDirect: true, Active: true},
	{ChannelID: "BOOKING_COM", DisplayName: "Booking.com", CommissionPct: 0.15, LoyaltyDiscountPct: 0.10, Active: true},
	{ChannelID: "EXPEDIA", DisplayName: "Expedia", CommissionPct: 0.18, LoyaltyDiscountPct: 0.12, Active: true},
	{ChannelID: "AGODA", DisplayName: "Agoda", CommissionPct: 0.15, LoyaltyDiscountPct: 0.08, Active: true},
	{ChannelID: "OTA_OTHERS", DisplayName: "Other OTAs", CommissionPct: 0.20, LoyaltyDiscountPct: 0.05, Active: true},
}

var Competitors = []string{"Voco-Dubai", "Movenpick-BB", "Hotel Aster", "Azure Grand", "Palmview"}

func NewSeeder(
	roomTypes RoomTypeWriter,
	bookings BookingWriter,
	competitors domain.CompetitorRateWriter,
	events EventWriter,
	channels ChannelRuleWriter,
	logger *slog.Logger,
) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		RoomTypes:   roomTypes,
		Bookings:    bookings,
		Competitors: competitors,
		Events:      events,
		Channels:    channels,
		Logger:      logger,
	}
}

func (s *Seeder) Run(ctx context.Context, opts Options) error {
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	if opts.HistoryDays <= 0 {
		opts.HistoryDays = 90
	}
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = 30
	}
	s.rnd = rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	today := domain.DateOf(opts.Now)

	if err := s.seedRoomTypes(ctx); err != nil {
		return fmt.Errorf("room types: %w", err)
	}
	for _, rule := range ChannelRules {
		if err := s.Channels.SaveChannelRule(ctx, rule); err != nil {
			return fmt.Errorf("channel %s: %w", rule.ChannelID, err)
		}
	}
	if err := s.seedEvents(ctx, today); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	rates, err := s.seedCompetitorRates(ctx, opts.Now, today, opts.HorizonDays)
	if err != nil {
		return fmt.Errorf("competitor rates: %w", err)
	}
	bookings := 0
	if !opts.SkipBookings {
		if bookings, err = s.seedBookings(ctx, today, opts.HistoryDays, opts.HorizonDays); err != nil {
			return fmt.Errorf("bookings: %w", err)
		}
	}

	s.Logger.Info("Demo data seeded",
		"room_types", len(RoomTypes),
		"channels", len(ChannelRules),
		"competitor_rates", rates,
		"bookings", bookings)
	return nil
}

func (s *Seeder) seedRoomTypes(ctx context.Context) error {
	for _, rt := range RoomTypes {
		if err := s.RoomTypes.SaveRoomType(ctx, rt); err != nil {
			return err
		}
		for i := 1; i <= rt.UnitCount; i++ {
			unit := &domain.InventoryUnit{
				ID:         fmt.Sprintf("%s-%03d", rt.ID, i),
				RoomTypeID: rt.ID,
				Status:     domain.UnitAvailable,
			}
			if err := s.RoomTypes.SaveInventoryUnit(ctx, unit); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedEvents(ctx context.Context, today time.Time) error {
	events := []*domain.EventMultiplier{
		{Label: "Dubai Shopping Festival", StartDate: today.AddDate(0, 0, 15), EndDate: today.AddDate(0, 0, 17), Multiplier: 1.25},
		{Label: "Business Conference Week", StartDate: today.AddDate(0, 0, 30), EndDate: today.AddDate(0, 0, 34), Multiplier: 1.15},
		{Label: "International Expo", StartDate: today.AddDate(0, 0, 45), EndDate: today.AddDate(0, 0, 47), Multiplier: 1.40},
	}
	for _, e := range events {
		// id стабилен, чтобы повторный seed не плодил события
		e.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(e.Label)).String()
		if err := s.Events.SaveEvent(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedCompetitorRates(ctx context.Context, now, today time.Time, horizon int) (int, error) {
	var rates []*domain.CompetitorRate
	for d := 0; d < horizon; d++ {
		day := today.AddDate(0, 0, d)
		for _, competitor := range Competitors {
			for _, rt := range RoomTypes {
				rates = append(rates, &domain.CompetitorRate{
					ID:           uuid.New().String(),
					CompetitorID: competitor,
					RoomLabel:    rt.Name + " Room",
					Date:         day,
					Rate:         rt.BaseRate * (0.7 + 0.6*s.rnd.Float64()),
					Available:    s.rnd.IntN(4) != 0,
					ObservedAt:   now.Add(-time.Duration(s.rnd.IntN(36)) * time.Hour),
				})
			}
		}
	}
	return len(rates), s.Competitors.CreateRates(ctx, rates)
}

func (s *Seeder) seedBookings(ctx context.Context, today time.Time, history, horizon int) (int, error) {
	channels := make([]string, 0, len(ChannelRules))
	for _, rule := range ChannelRules {
		channels = append(channels, rule.ChannelID)
	}

	var bookings []*domain.Booking
	for d := -history; d <= horizon; d++ {
		checkIn := today.AddDate(0, 0, d)
		for range 5 + s.rnd.IntN(11) {
			rt := RoomTypes[s.rnd.IntN(len(RoomTypes))]
			lead := 1 + s.rnd.IntN(60)
			bookings = append(bookings, &domain.Booking{
				ID:         uuid.New().String(),
				RoomTypeID: rt.ID,
				CheckIn:    checkIn,
				CheckOut:   checkIn.AddDate(0, 0, 1+s.rnd.IntN(4)),
				Rate:       rt.BaseRate * (0.8 + 0.4*s.rnd.Float64()),
				Channel:    channels[s.rnd.IntN(len(channels))],
				CreatedAt:  checkIn.AddDate(0, 0, -lead),
			})
		}
	}
	// бронирования из будущего не создаются
	filtered := bookings[:0]
	for _, b := range bookings {
		if !b.CreatedAt.After(today) {
			filtered = append(filtered, b)
		}
	}
	return len(filtered), s.Bookings.CreateBookings(ctx, filtered)
}
