package channel

import (
	"sort"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/shopspring/decimal"
)

// CheckParity помечает каналы, чья гостевая цена ниже прямой больше чем на tolerance.
// Прямые каналы (IsDirect в правилах) не сравниваются сами с собой.
// Сравнение идёт в центах, как публикуются цены.
func CheckParity(roomTypeID string, date time.Time, directPrice, tolerance float64, latest []*domain.PushLogEntry, rules []*domain.ChannelRule) *domain.ParityFlag {
	direct := decimal.NewFromFloat(directPrice).Round(2)
	flag := &domain.ParityFlag{
		RoomTypeID:  roomTypeID,
		Date:        domain.DateOf(date),
		DirectPrice: direct.InexactFloat64(),
		Tolerance:   tolerance,
	}
	directChannels := make(map[string]bool)
	for _, rule := range rules {
		if rule.IsDirect {
			directChannels[rule.ChannelID] = true
		}
	}
	threshold := direct.Sub(decimal.NewFromFloat(tolerance))

	for _, entry := range latest {
		if directChannels[entry.ChannelID] || entry.Status != domain.PushSuccess {
			continue
		}
		flag.Checked++
		guest := decimal.NewFromFloat(entry.GuestDisplayPrice)
		if guest.LessThan(threshold) {
			flag.Channels = append(flag.Channels, domain.ParityViolation{
				ChannelID:         entry.ChannelID,
				GuestDisplayPrice: entry.GuestDisplayPrice,
				Difference:        direct.Sub(guest).InexactFloat64(),
				PushedAt:          entry.PushedAt,
			})
		}
	}
	sort.Slice(flag.Channels, func(i, j int) bool {
		return flag.Channels[i].ChannelID < flag.Channels[j].ChannelID
	})
	return flag
}

// Statistics агрегирует журнал пушей по каналам, типам номеров и дням.
func Statistics(since time.Time, entries []*domain.PushLogEntry) *domain.PushStats {
	stats := &domain.PushStats{
		Since:      since,
		ByChannel:  map[string]*domain.PushCounter{},
		ByRoomType: map[string]*domain.PushCounter{},
		ByDay:      map[string]*domain.PushCounter{},
	}
	bump := func(m map[string]*domain.PushCounter, key string, ok bool) {
		c, exists := m[key]
		if !exists {
			c = &domain.PushCounter{}
			m[key] = c
		}
		c.Total++
		if ok {
			c.Success++
		} else {
			c.Failed++
		}
	}
	for _, e := range entries {
		if e.Status == domain.PushSimulated || e.PushedAt.Before(since) {
			continue
		}
		ok := e.Status == domain.PushSuccess
		stats.Total++
		if ok {
			stats.Success++
		} else {
			stats.Failed++
		}
		bump(stats.ByChannel, e.ChannelID, ok)
		bump(stats.ByRoomType, e.RoomTypeID, ok)
		bump(stats.ByDay, e.PushedAt.UTC().Format(domain.DateLayout), ok)
	}
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Success) / float64(stats.Total)
	}
	return stats
}
