package domain

import "fmt"

type PricingType string

const (
	PricingUnit      PricingType = "unit"
	PricingPerPerson PricingType = "per_person"
)

type Occupancy struct {
	MinAdults      int `json:"minAdults"`
	MaxAdults      int `json:"maxAdults"`
	MaxChildren    int `json:"maxChildren"`
	MaxInfants     int `json:"maxInfants"` // 0 = no separate infant limit
	TotalMaxGuests int `json:"totalMaxGuests"`
	BaseOccupancy  int `json:"baseOccupancy"`
}

// Validate enforces baseOccupancy <= maxAdults <= totalMaxGuests.
func (o Occupancy) Validate() error {
	switch {
	case o.MinAdults < 1:
		return fmt.Errorf("%w: minAdults must be at least 1", ErrInvalidOccupancy)
	case o.MinAdults > o.MaxAdults:
		return fmt.Errorf("%w: minAdults %d > maxAdults %d", ErrInvalidOccupancy, o.MinAdults, o.MaxAdults)
	case o.BaseOccupancy < 1 || o.BaseOccupancy > o.MaxAdults:
		return fmt.Errorf("%w: baseOccupancy %d outside 1..%d", ErrInvalidOccupancy, o.BaseOccupancy, o.MaxAdults)
	case o.MaxAdults > o.TotalMaxGuests:
		return fmt.Errorf("%w: maxAdults %d > totalMaxGuests %d", ErrInvalidOccupancy, o.MaxAdults, o.TotalMaxGuests)
	case o.MaxChildren < 0 || o.MaxInfants < 0:
		return fmt.Errorf("%w: negative child limits", ErrInvalidOccupancy)
	}
	return nil
}

type RoomType struct {
	ID          int64               `json:"id"`
	HotelID     int64               `json:"hotelId"`
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Occupancy   Occupancy           `json:"occupancy"`
	PricingType PricingType         `json:"pricingType"`
	Multipliers *MultiplierTemplate `json:"multipliers,omitempty"`
}

type RoundingRule string

const (
	RoundNone      RoundingRule = "none"
	RoundNearest   RoundingRule = "nearest"
	RoundUp        RoundingRule = "up"
	RoundDown      RoundingRule = "down"
	RoundNearest5  RoundingRule = "nearest5"
	RoundNearest10 RoundingRule = "nearest10"
)

// ChildSlot is one child in a combination, by arrival order (1-based).
type ChildSlot struct {
	Order    int    `json:"order"`
	AgeGroup string `json:"ageGroup"`
}

type CombinationEntry struct {
	Key                  string      `json:"key"`
	Adults               int         `json:"adults"`
	Children             []ChildSlot `json:"children"`
	CalculatedMultiplier float64     `json:"calculatedMultiplier"`
	OverrideMultiplier   *float64    `json:"overrideMultiplier,omitempty"`
	IsActive             bool        `json:"isActive"`
}

// Multiplier returns the override when set, else the calculated value.
func (e CombinationEntry) Multiplier() float64 {
	if e.OverrideMultiplier != nil {
		return *e.OverrideMultiplier
	}
	return e.CalculatedMultiplier
}

// MultiplierTemplate holds the per-person (OBP) factors of a room.
// AdultMultipliers: adult count -> factor.
// ChildMultipliers: child order -> age group code -> factor.
type MultiplierTemplate struct {
	AdultMultipliers map[int]float64            `json:"adultMultipliers,omitempty"`
	ChildMultipliers map[int]map[string]float64 `json:"childMultipliers,omitempty"`
	CombinationTable []CombinationEntry         `json:"combinationTable,omitempty"`
	RoundingRule     RoundingRule               `json:"roundingRule,omitempty"`
}

// Lookup finds a combination entry by key.
func (t *MultiplierTemplate) Lookup(key string) (CombinationEntry, bool) {
	if t == nil {
		return CombinationEntry{}, false
	}
	for _, e := range t.CombinationTable {
		if e.Key == key {
			return e, true
		}
	}
	return CombinationEntry{}, false
}
