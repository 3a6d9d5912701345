package httpserver

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"hotel_rates/internal/app"
	"hotel_rates/internal/domain"
	"hotel_rates/internal/pricing"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json field names instead of Go ones
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type quoteRequest struct {
	HotelID          int64           `json:"hotelId" validate:"required,gt=0"`
	RoomTypeID       int64           `json:"roomTypeId" validate:"required,gt=0"`
	MealPlanID       int64           `json:"mealPlanId" validate:"required,gt=0"`
	MarketID         int64           `json:"marketId" validate:"required,gt=0"`
	CheckInDate      string          `json:"checkInDate" validate:"required,datetime=2006-01-02"`
	CheckOutDate     string          `json:"checkOutDate" validate:"required,datetime=2006-01-02"`
	Adults           int             `json:"adults" validate:"gte=1,lte=10"`
	Children         []childRequest  `json:"children" validate:"max=10,dive"`
	IncludeCampaigns bool            `json:"includeCampaigns"`
	CampaignCode     string          `json:"campaignCode" validate:"omitempty,max=64"`
}

type childRequest struct {
	Age int `json:"age" validate:"gte=0,lte=17"`
}

func (r quoteRequest) toQuery() app.Query {
	in, _ := time.Parse(time.DateOnly, r.CheckInDate)
	out, _ := time.Parse(time.DateOnly, r.CheckOutDate)
	children := make([]pricing.Child, 0, len(r.Children))
	for _, c := range r.Children {
		children = append(children, pricing.Child{Age: c.Age})
	}
	return app.Query{
		HotelID:          r.HotelID,
		RoomTypeID:       r.RoomTypeID,
		MealPlanID:       r.MealPlanID,
		MarketID:         r.MarketID,
		CheckInDate:      in,
		CheckOutDate:     out,
		Adults:           r.Adults,
		Children:         children,
		IncludeCampaigns: r.IncludeCampaigns,
		CampaignCode:     r.CampaignCode,
	}
}

type roomsRequest struct {
	Rooms []quoteRequest `json:"rooms" validate:"required,min=1,max=10,dive"`
}

type allotmentRequest struct {
	HotelID      int64    `json:"hotelId" validate:"required,gt=0"`
	RoomTypeID   int64    `json:"roomTypeId" validate:"required,gt=0"`
	MealPlanID   int64    `json:"mealPlanId" validate:"required,gt=0"`
	MarketID     int64    `json:"marketId" validate:"required,gt=0"`
	Dates        []string `json:"dates" validate:"required,min=1,max=366,dive,datetime=2006-01-02"`
	Rooms        int      `json:"rooms" validate:"gte=1,lte=100"`
	AllOrNothing bool     `json:"allOrNothing"`
}

func (r allotmentRequest) toRequest() app.AllotmentRequest {
	dates := make([]time.Time, 0, len(r.Dates))
	for _, s := range r.Dates {
		d, _ := time.Parse(time.DateOnly, s)
		dates = append(dates, d)
	}
	return app.AllotmentRequest{
		HotelID:      r.HotelID,
		RoomTypeID:   r.RoomTypeID,
		MealPlanID:   r.MealPlanID,
		MarketID:     r.MarketID,
		Dates:        dates,
		Rooms:        r.Rooms,
		AllOrNothing: r.AllOrNothing,
	}
}

type generateRequest struct {
	Occupancy        domain.Occupancy           `json:"occupancy"`
	AgeGroups        []domain.AgeGroup          `json:"ageGroups" validate:"max=5,dive"`
	AdultMultipliers map[int]float64            `json:"adultMultipliers"`
	ChildMultipliers map[int]map[string]float64 `json:"childMultipliers"`
}

type recalculateRequest struct {
	// MinAdults of the room the table belongs to; 0 means 1.
	MinAdults        int                        `json:"minAdults" validate:"gte=0,lte=10"`
	Table            []domain.CombinationEntry  `json:"table" validate:"required,min=1,max=2000"`
	AdultMultipliers map[int]float64            `json:"adultMultipliers" validate:"required,min=1"`
	ChildMultipliers map[int]map[string]float64 `json:"childMultipliers"`
}

type combinationsResponse struct {
	Count   int                       `json:"count"`
	Entries []domain.CombinationEntry `json:"entries"`
}
