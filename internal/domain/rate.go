package domain

import "time"

// RateKey identifies a rate series; a Rate is one night of it.
type RateKey struct {
	HotelID    int64 `json:"hotelId"`
	RoomTypeID int64 `json:"roomTypeId"`
	MealPlanID int64 `json:"mealPlanId"`
	MarketID   int64 `json:"marketId"`
}

type ChildAgePrice struct {
	MinAge int     `json:"minAge"`
	MaxAge int     `json:"maxAge"`
	Price  float64 `json:"price"`
}

type Rate struct {
	ID int64 `json:"id"`
	RateKey
	Date     time.Time `json:"date"`
	Currency string    `json:"currency,omitempty"`

	// Empty PricingType / nil Multipliers inherit from season, market and room.
	PricingType PricingType         `json:"pricingType,omitempty"`
	Multipliers *MultiplierTemplate `json:"multipliers,omitempty"`

	// unit pricing
	PricePerNight     float64         `json:"pricePerNight"`
	SingleSupplement  float64         `json:"singleSupplement"`
	ExtraAdult        float64         `json:"extraAdult"`
	ExtraChild        float64         `json:"extraChild"`
	ExtraInfant       float64         `json:"extraInfant"`
	ChildOrderPricing []float64       `json:"childOrderPricing,omitempty"` // index 0 = first child
	ChildAgePricing   []ChildAgePrice `json:"childAgePricing,omitempty"`

	// per-person pricing: adult count (1..10) -> price
	OccupancyPricing map[int]float64 `json:"occupancyPricing,omitempty"`

	// restrictions
	Allotment         int  `json:"allotment"`
	Sold              int  `json:"sold"`
	MinStay           int  `json:"minStay"`
	MaxStay           int  `json:"maxStay"`
	StopSale          bool `json:"stopSale"`
	SingleStop        bool `json:"singleStop"`
	ReleaseDays       int  `json:"releaseDays"`
	ClosedToArrival   bool `json:"closedToArrival"`
	ClosedToDeparture bool `json:"closedToDeparture"`
}

// Available is allotment minus sold, never negative.
func (r Rate) Available() int {
	if n := r.Allotment - r.Sold; n > 0 {
		return n
	}
	return 0
}

// MaxOccupancyPricingAdults bounds the OccupancyPricing keys.
const MaxOccupancyPricingAdults = 10
