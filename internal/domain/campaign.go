package domain

import "time"

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
	DiscountFreeNights DiscountType = "free_nights"
)

type CalculationType string

const (
	CalcCumulative CalculationType = "cumulative"
	CalcSequential CalculationType = "sequential"
)

type ApplicationType string

const (
	ApplyOnStay    ApplicationType = "stay"
	ApplyOnCheckIn ApplicationType = "checkin"
)

const CampaignActive = "active"

type CampaignDiscount struct {
	Type       DiscountType `json:"type"`
	Value      float64      `json:"value"`
	StayNights int          `json:"stayNights,omitempty"`
	FreeNights int          `json:"freeNights,omitempty"`
}

type CampaignConditions struct {
	MinNights      int            `json:"minNights,omitempty"`
	MaxNights      int            `json:"maxNights,omitempty"`
	MinAdvanceDays int            `json:"minAdvanceDays,omitempty"`
	MaxAdvanceDays int            `json:"maxAdvanceDays,omitempty"` // 0 = unbounded
	RoomTypeIDs    []int64        `json:"roomTypeIds,omitempty"`
	MarketIDs      []int64        `json:"marketIds,omitempty"`
	MealPlanIDs    []int64        `json:"mealPlanIds,omitempty"`
	Weekdays       []time.Weekday `json:"weekdays,omitempty"` // empty = every day
}

type Campaign struct {
	ID               int64              `json:"id"`
	HotelID          int64              `json:"hotelId"`
	Code             string             `json:"code"`
	Name             string             `json:"name"`
	Status           string             `json:"status"`
	PromoCode        string             `json:"promoCode,omitempty"` // non-empty: only applies when quoted with this code
	BookingWindow    DateRange          `json:"bookingWindow"`
	StayWindow       DateRange          `json:"stayWindow"`
	Discount         CampaignDiscount   `json:"discount"`
	Combinable       bool               `json:"combinable"`
	Priority         int                `json:"priority"`
	CalculationOrder int                `json:"calculationOrder"`
	CalculationType  CalculationType    `json:"calculationType"`
	ApplicationType  ApplicationType    `json:"applicationType"`
	Conditions       CampaignConditions `json:"conditions"`
}

// AllowsWeekday applies the day-of-week mask.
func (c *Campaign) AllowsWeekday(d time.Weekday) bool {
	if len(c.Conditions.Weekdays) == 0 {
		return true
	}
	for _, w := range c.Conditions.Weekdays {
		if w == d {
			return true
		}
	}
	return false
}
