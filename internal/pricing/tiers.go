package pricing

import "hotel_rates/internal/domain"

type TierPrice struct {
	HotelCost float64 `json:"hotelCost"`
	B2CPrice  float64 `json:"b2cPrice"`
	B2BPrice  float64 `json:"b2bPrice"`
}

// CalculateTierPricing derives the hotel cost, B2C and B2B views of a price.
// net: the price is what the hotel receives; channels add the markup.
// commission: the price is rack; the hotel receives it minus commission and
// B2B gives the agency its share of that margin.
func CalculateTierPricing(price float64, s domain.SalesSettings) TierPrice {
	if s.Mode == domain.ModeCommission {
		hotelCost := round2(price * (1 - s.CommissionRate/100))
		margin := price - hotelCost
		return TierPrice{
			HotelCost: hotelCost,
			B2CPrice:  round2(price),
			B2BPrice:  round2(price - margin*s.AgencyMarginShare/100),
		}
	}
	sell := round2(price * (1 + s.MarkupRate/100))
	return TierPrice{HotelCost: round2(price), B2CPrice: sell, B2BPrice: sell}
}

type TierSummary struct {
	TierPrice
	// Mode is the single working mode of the stay; empty when mixed.
	Mode                    domain.CommercialMode   `json:"mode,omitempty"`
	Modes                   []domain.CommercialMode `json:"modes"`
	HasMultipleWorkingModes bool                    `json:"hasMultipleWorkingModes"`
}

// SummarizeTiers sums nightly tiers and reports whether nights resolved to
// different commercial modes.
func SummarizeTiers(nights []NightPrice) TierSummary {
	var out TierSummary
	seen := map[domain.CommercialMode]bool{}
	for _, n := range nights {
		out.HotelCost += n.Tier.HotelCost
		out.B2CPrice += n.Tier.B2CPrice
		out.B2BPrice += n.Tier.B2BPrice
		if n.Mode != "" && !seen[n.Mode] {
			seen[n.Mode] = true
			out.Modes = append(out.Modes, n.Mode)
		}
	}
	out.HotelCost = round2(out.HotelCost)
	out.B2CPrice = round2(out.B2CPrice)
	out.B2BPrice = round2(out.B2BPrice)
	out.HasMultipleWorkingModes = len(out.Modes) > 1
	if len(out.Modes) == 1 {
		out.Mode = out.Modes[0]
	}
	return out
}
