package channel

import (
	"fmt"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/shopspring/decimal"
)

// Price - цены канала, рассчитанные из опубликованной ставки.
type Price struct {
	ChannelID          string
	PublishedRate      float64
	GuestDisplayPrice  float64
	HotelNetPrice      float64
	CommissionPct      float64
	LoyaltyDiscountPct float64
}

func ValidateRule(rule *domain.ChannelRule) error {
	if rule == nil {
		return domain.ErrChannelNotFound
	}
	if rule.CommissionPct < 0 || rule.CommissionPct > 1 {
		return fmt.Errorf("%w: commission_pct %v outside [0,1]", domain.ErrInvalidChannelRule, rule.CommissionPct)
	}
	if rule.LoyaltyDiscountPct < 0 || rule.LoyaltyDiscountPct > 1 {
		return fmt.Errorf("%w: loyalty_discount_pct %v outside [0,1]", domain.ErrInvalidChannelRule, rule.LoyaltyDiscountPct)
	}
	return nil
}

// Quote считает guest_display_price и hotel_net_price в decimal с округлением до центов.
// Ставка сначала приводится к центам, поэтому цены канала не выше неё.
func Quote(publishedRate float64, rule *domain.ChannelRule) (Price, error) {
	if err := ValidateRule(rule); err != nil {
		return Price{}, err
	}

	one := decimal.NewFromInt(1)
	rate := decimal.NewFromFloat(publishedRate).Round(2)
	guest := rate.Mul(one.Sub(decimal.NewFromFloat(rule.LoyaltyDiscountPct))).Round(2)
	net := rate.Mul(one.Sub(decimal.NewFromFloat(rule.CommissionPct))).Round(2)

	return Price{
		ChannelID:          rule.ChannelID,
		PublishedRate:      rate.InexactFloat64(),
		GuestDisplayPrice:  guest.InexactFloat64(),
		HotelNetPrice:      net.InexactFloat64(),
		CommissionPct:      rule.CommissionPct,
		LoyaltyDiscountPct: rule.LoyaltyDiscountPct,
	}, nil
}

// QuoteAll считает цены для всех активных каналов, пропуская некорректные правила.
func QuoteAll(publishedRate float64, rules []*domain.ChannelRule) ([]Price, []error) {
	var (
		prices []Price
		errs   []error
	)
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		p, err := Quote(publishedRate, rule)
		if err != nil {
			errs = append(errs, fmt.Errorf("channel %s: %w", rule.ChannelID, err))
			continue
		}
		prices = append(prices, p)
	}
	return prices, errs
}
