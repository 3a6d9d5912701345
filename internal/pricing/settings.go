// Package pricing resolves nightly rates into bookable prices: effective
// settings, occupancy pricing, restrictions, campaigns and tier views.
package pricing

import (
	"sort"

	"hotel_rates/internal/domain"
)

// Scope bundles the reference entities a night is priced against.
// Season is nil when no season covers the night.
type Scope struct {
	Hotel    *domain.Hotel
	RoomType *domain.RoomType
	Market   *domain.Market
	Season   *domain.Season
}

type EffectiveSettings struct {
	PricingType    domain.PricingType         `json:"pricingType"`
	Multipliers    *domain.MultiplierTemplate `json:"multipliers,omitempty"`
	ChildAgeGroups []domain.AgeGroup          `json:"childAgeGroups"`
	MinAdults      int                        `json:"minAdults"`
	Sales          domain.SalesSettings       `json:"sales"`
}

// firstOf returns the value of the first provider whose level opts out of
// inheritance, or fallback.
func firstOf[T any](fallback T, providers ...func() (T, bool)) T {
	for _, p := range providers {
		if v, ok := p(); ok {
			return v
		}
	}
	return fallback
}

// ResolveEffectiveSettings walks rate -> season -> market -> room type/hotel
// independently for each setting. It never fails; missing levels are skipped.
func ResolveEffectiveSettings(sc Scope, rate *domain.Rate) EffectiveSettings {
	roomID := int64(0)
	if sc.RoomType != nil {
		roomID = sc.RoomType.ID
	} else if rate != nil {
		roomID = rate.RoomTypeID
	}
	seasonOv, hasSeasonOv := sc.Season.RoomOverride(roomID)
	marketOv, hasMarketOv := sc.Market.RoomOverride(roomID)

	pricingType := firstOf(domain.PricingUnit,
		func() (domain.PricingType, bool) { return rateValue(rate, func(r *domain.Rate) domain.PricingType { return r.PricingType }) },
		func() (domain.PricingType, bool) {
			return seasonOv.PricingType, hasSeasonOv && seasonOv.UsePricingType && seasonOv.PricingType != ""
		},
		func() (domain.PricingType, bool) {
			return marketOv.PricingType, hasMarketOv && marketOv.UsePricingType && marketOv.PricingType != ""
		},
		func() (domain.PricingType, bool) {
			if sc.RoomType == nil {
				return "", false
			}
			return sc.RoomType.PricingType, sc.RoomType.PricingType != ""
		},
	)

	multipliers := firstOf[*domain.MultiplierTemplate](nil,
		func() (*domain.MultiplierTemplate, bool) {
			if rate == nil {
				return nil, false
			}
			return rate.Multipliers, rate.Multipliers != nil
		},
		func() (*domain.MultiplierTemplate, bool) {
			return seasonOv.Multipliers, hasSeasonOv && seasonOv.UseMultipliers && seasonOv.Multipliers != nil
		},
		func() (*domain.MultiplierTemplate, bool) {
			return marketOv.Multipliers, hasMarketOv && marketOv.UseMultipliers && marketOv.Multipliers != nil
		},
		func() (*domain.MultiplierTemplate, bool) {
			if sc.RoomType == nil {
				return nil, false
			}
			return sc.RoomType.Multipliers, sc.RoomType.Multipliers != nil
		},
	)

	groups := firstOf(domain.DefaultChildAgeGroups,
		func() ([]domain.AgeGroup, bool) {
			if sc.Season == nil {
				return nil, false
			}
			return sc.Season.ChildAges.Groups, sc.Season.ChildAges.Use && len(sc.Season.ChildAges.Groups) > 0
		},
		func() ([]domain.AgeGroup, bool) {
			if sc.Market == nil {
				return nil, false
			}
			return sc.Market.ChildAges.Groups, sc.Market.ChildAges.Use && len(sc.Market.ChildAges.Groups) > 0
		},
		func() ([]domain.AgeGroup, bool) {
			if sc.Hotel == nil {
				return nil, false
			}
			return sc.Hotel.ChildAgeGroups, len(sc.Hotel.ChildAgeGroups) > 0
		},
	)

	minAdults := firstOf(1,
		func() (int, bool) { return seasonOv.MinAdults, hasSeasonOv && seasonOv.UseMinAdults && seasonOv.MinAdults > 0 },
		func() (int, bool) { return marketOv.MinAdults, hasMarketOv && marketOv.UseMinAdults && marketOv.MinAdults > 0 },
		func() (int, bool) {
			if sc.RoomType == nil {
				return 0, false
			}
			return sc.RoomType.Occupancy.MinAdults, sc.RoomType.Occupancy.MinAdults > 0
		},
	)

	sales := firstOf(domain.SalesSettings{Mode: domain.ModeNet},
		func() (domain.SalesSettings, bool) {
			if sc.Season == nil {
				return domain.SalesSettings{}, false
			}
			return sc.Season.Sales.Settings, sc.Season.Sales.Use
		},
		func() (domain.SalesSettings, bool) {
			if sc.Market == nil {
				return domain.SalesSettings{}, false
			}
			return sc.Market.Sales, true
		},
	)
	if sales.Mode == "" {
		sales.Mode = domain.ModeNet
	}

	return EffectiveSettings{
		PricingType:    pricingType,
		Multipliers:    multipliers,
		ChildAgeGroups: sortedGroups(groups),
		MinAdults:      minAdults,
		Sales:          sales,
	}
}

func rateValue[T comparable](rate *domain.Rate, get func(*domain.Rate) T) (T, bool) {
	var zero T
	if rate == nil {
		return zero, false
	}
	v := get(rate)
	return v, v != zero
}

func sortedGroups(in []domain.AgeGroup) []domain.AgeGroup {
	out := append([]domain.AgeGroup(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinAge < out[j].MinAge })
	return out
}

// MaxChildAge is the oldest age still priced as a child.
func MaxChildAge(groups []domain.AgeGroup) int {
	oldest := -1
	for _, g := range groups {
		if g.MaxAge > oldest {
			oldest = g.MaxAge
		}
	}
	return oldest
}

// AgeGroupFor returns the code of the group containing age, or "" if none does.
func AgeGroupFor(groups []domain.AgeGroup, age int) string {
	for _, g := range groups {
		if age >= g.MinAge && age <= g.MaxAge {
			return g.Code
		}
	}
	return ""
}

func groupCodes(groups []domain.AgeGroup) []string {
	out := make([]string, 0, len(groups))
	for _, g := range sortedGroups(groups) {
		out = append(out, g.Code)
	}
	return out
}
