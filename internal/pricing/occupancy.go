package pricing

import (
	"fmt"

	"hotel_rates/internal/domain"
)

type Child struct {
	Age int `json:"age"`
}

type OccupancyRequest struct {
	Adults   int
	Children []Child
	Nights   int
}

// Line item kinds.
const (
	ItemBase             = "base"
	ItemSingleSupplement = "single_supplement"
	ItemExtraAdult       = "extra_adult"
	ItemChild            = "child"
	ItemInfant           = "infant"
	ItemOccupancy        = "occupancy"
	ItemMultiplier       = "multiplier"
)

// Reasons a priced combination is not sellable.
const (
	ReasonCombinationInactive = "COMBINATION_INACTIVE"
	ReasonNoOccupancyPrice    = "NO_OCCUPANCY_PRICE"
)

type LineItem struct {
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Amount      float64 `json:"amount"`
}

type OccupancyPrice struct {
	PricingType    domain.PricingType `json:"pricingType"`
	Adults         int                `json:"adults"`
	Children       []Child            `json:"children,omitempty"`
	AdultPrice     float64            `json:"adultPrice"`
	ChildPrice     float64            `json:"childPrice"`
	TotalPerNight  float64            `json:"totalPerNight"`
	TotalPrice     float64            `json:"totalPrice"`
	Breakdown      []LineItem         `json:"breakdown"`
	IsAvailable    bool               `json:"isAvailable"`
	Reason         string             `json:"reason,omitempty"`
	CombinationKey string             `json:"combinationKey,omitempty"`
	Multiplier     float64            `json:"multiplier,omitempty"`
}

// PriceOccupancy prices one rate for the requested guests. It resolves the
// effective settings from sc first. A request over the room's physical
// capacity fails with a *domain.CapacityError.
func PriceOccupancy(rate *domain.Rate, req OccupancyRequest, sc Scope) (OccupancyPrice, error) {
	if sc.RoomType == nil {
		return OccupancyPrice{}, fmt.Errorf("price occupancy: %w: room type", domain.ErrNotFound)
	}
	return priceWithSettings(rate, req, sc.RoomType.Occupancy, ResolveEffectiveSettings(sc, rate))
}

// EffectiveGuests moves children older than the oldest child age group to the
// adult count.
func EffectiveGuests(adults int, children []Child, groups []domain.AgeGroup) (int, []Child) {
	maxAge := MaxChildAge(groups)
	kept := make([]Child, 0, len(children))
	for _, c := range children {
		if c.Age > maxAge {
			adults++
			continue
		}
		kept = append(kept, c)
	}
	return adults, kept
}

// CheckCapacity validates guests against the room's physical limits.
func CheckCapacity(occ domain.Occupancy, adults, children int) error {
	if adults > occ.MaxAdults {
		return &domain.CapacityError{Limit: "adults", Requested: adults, Max: occ.MaxAdults}
	}
	if children > occ.MaxChildren {
		return &domain.CapacityError{Limit: "children", Requested: children, Max: occ.MaxChildren}
	}
	if occ.TotalMaxGuests > 0 && adults+children > occ.TotalMaxGuests {
		return &domain.CapacityError{Limit: "total", Requested: adults + children, Max: occ.TotalMaxGuests}
	}
	return nil
}

func priceWithSettings(rate *domain.Rate, req OccupancyRequest, occ domain.Occupancy, st EffectiveSettings) (OccupancyPrice, error) {
	adults, children := EffectiveGuests(req.Adults, req.Children, st.ChildAgeGroups)
	if err := CheckCapacity(occ, adults, len(children)); err != nil {
		return OccupancyPrice{}, err
	}
	nights := req.Nights
	if nights < 1 {
		nights = 1
	}

	out := OccupancyPrice{
		PricingType: st.PricingType,
		Adults:      adults,
		Children:    children,
		IsAvailable: true,
	}
	switch {
	case st.PricingType == domain.PricingPerPerson && st.Multipliers != nil:
		priceWithMultipliers(&out, rate, occ, st)
	case st.PricingType == domain.PricingPerPerson:
		priceByOccupancyTable(&out, rate, st.ChildAgeGroups)
	default:
		priceUnit(&out, rate, occ, st.ChildAgeGroups)
	}
	if !out.IsAvailable {
		out.AdultPrice, out.ChildPrice, out.TotalPerNight = 0, 0, 0
		return out, nil
	}
	out.TotalPerNight = round2(out.AdultPrice + out.ChildPrice)
	out.TotalPrice = round2(out.TotalPerNight * float64(nights))
	return out, nil
}

func priceUnit(out *OccupancyPrice, rate *domain.Rate, occ domain.Occupancy, groups []domain.AgeGroup) {
	adults := out.Adults
	price := rate.PricePerNight
	out.Breakdown = append(out.Breakdown, LineItem{
		Kind: ItemBase, Description: fmt.Sprintf("Room rate for %d adults", occ.BaseOccupancy),
		Quantity: 1, UnitPrice: rate.PricePerNight, Amount: rate.PricePerNight,
	})
	if adults < occ.BaseOccupancy && rate.SingleSupplement != 0 {
		price -= rate.SingleSupplement
		out.Breakdown = append(out.Breakdown, LineItem{
			Kind: ItemSingleSupplement, Description: "Reduced occupancy",
			Quantity: 1, UnitPrice: -rate.SingleSupplement, Amount: -rate.SingleSupplement,
		})
	}
	if extra := adults - occ.BaseOccupancy; extra > 0 {
		price += rate.ExtraAdult * float64(extra)
		out.Breakdown = append(out.Breakdown, LineItem{
			Kind: ItemExtraAdult, Description: "Extra adult",
			Quantity: extra, UnitPrice: rate.ExtraAdult, Amount: round2(rate.ExtraAdult * float64(extra)),
		})
	}
	out.AdultPrice = round2(price)
	out.ChildPrice = priceChildren(out, rate, groups)
}

func priceByOccupancyTable(out *OccupancyPrice, rate *domain.Rate, groups []domain.AgeGroup) {
	price, ok := rate.OccupancyPricing[out.Adults]
	if !ok {
		out.IsAvailable = false
		out.Reason = ReasonNoOccupancyPrice
		return
	}
	out.Breakdown = append(out.Breakdown, LineItem{
		Kind: ItemOccupancy, Description: fmt.Sprintf("Price for %d adults", out.Adults),
		Quantity: 1, UnitPrice: price, Amount: price,
	})
	out.AdultPrice = round2(price)
	out.ChildPrice = priceChildren(out, rate, groups)
}

// priceChildren prices each child in arrival order: infants at extraInfant,
// then the child's position price, then its age tier, then flat extraChild.
// Infants do not take a position.
func priceChildren(out *OccupancyPrice, rate *domain.Rate, groups []domain.AgeGroup) float64 {
	total := 0.0
	position := 0
	for _, c := range out.Children {
		if AgeGroupFor(groups, c.Age) == domain.AgeGroupInfant {
			total += rate.ExtraInfant
			out.Breakdown = append(out.Breakdown, LineItem{
				Kind: ItemInfant, Description: fmt.Sprintf("Infant (age %d)", c.Age),
				Quantity: 1, UnitPrice: rate.ExtraInfant, Amount: rate.ExtraInfant,
			})
			continue
		}
		price, desc := childPrice(rate, c.Age, position)
		position++
		total += price
		out.Breakdown = append(out.Breakdown, LineItem{
			Kind: ItemChild, Description: fmt.Sprintf("Child %d (age %d, %s)", position, c.Age, desc),
			Quantity: 1, UnitPrice: price, Amount: price,
		})
	}
	return round2(total)
}

func childPrice(rate *domain.Rate, age, position int) (float64, string) {
	if position < len(rate.ChildOrderPricing) {
		return rate.ChildOrderPricing[position], "by order"
	}
	for _, tier := range rate.ChildAgePricing {
		if age >= tier.MinAge && age <= tier.MaxAge {
			return tier.Price, "by age"
		}
	}
	return rate.ExtraChild, "extra child"
}

func priceWithMultipliers(out *OccupancyPrice, rate *domain.Rate, occ domain.Occupancy, st EffectiveSettings) {
	tmpl := st.Multipliers
	slots := make([]domain.ChildSlot, 0, len(out.Children))
	for i, c := range out.Children {
		slots = append(slots, domain.ChildSlot{Order: i + 1, AgeGroup: AgeGroupFor(st.ChildAgeGroups, c.Age)})
	}
	out.CombinationKey = CombinationKey(out.Adults, slots)

	entry, found := tmpl.Lookup(out.CombinationKey)
	if found && !entry.IsActive {
		out.IsAvailable = false
		out.Reason = ReasonCombinationInactive
		return
	}

	base, ok := rate.OccupancyPricing[occ.BaseOccupancy]
	if !ok {
		base = rate.PricePerNight
	}
	if base <= 0 {
		out.IsAvailable = false
		out.Reason = ReasonNoOccupancyPrice
		return
	}

	mult := AnalyticMultiplier(out.Adults, slots, tmpl.AdultMultipliers, tmpl.ChildMultipliers, occ.BaseOccupancy)
	if found {
		mult = entry.Multiplier()
	}
	out.Multiplier = mult
	price := ApplyRounding(base*mult, tmpl.RoundingRule)
	out.Breakdown = append(out.Breakdown,
		LineItem{
			Kind: ItemBase, Description: fmt.Sprintf("Price for %d adults", occ.BaseOccupancy),
			Quantity: 1, UnitPrice: base, Amount: base,
		},
		LineItem{
			Kind: ItemMultiplier, Description: fmt.Sprintf("Occupancy %s x%.2f", out.CombinationKey, mult),
			Quantity: 1, UnitPrice: round2(price - base), Amount: round2(price - base),
		},
	)
	out.AdultPrice = price
}
