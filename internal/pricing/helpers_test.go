package pricing

import (
	"time"

	"hotel_rates/internal/domain"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func ptr[T any](v T) *T { return &v }

var testKey = domain.RateKey{HotelID: 1, RoomTypeID: 10, MealPlanID: 100, MarketID: 1000}

func doubleRoom() domain.RoomType {
	return domain.RoomType{
		ID: 10, HotelID: 1, Code: "DBL", Name: "Double",
		PricingType: domain.PricingUnit,
		Occupancy: domain.Occupancy{
			MinAdults: 1, MaxAdults: 3, MaxChildren: 2, TotalMaxGuests: 4, BaseOccupancy: 2,
		},
	}
}

func unitRate(d time.Time, price float64) domain.Rate {
	return domain.Rate{
		RateKey:       testKey,
		Date:          d,
		PricePerNight: price,
		ExtraAdult:    20,
		ExtraChild:    15,
		ExtraInfant:   0,
		Allotment:     5,
	}
}

func unitRates(from time.Time, nights int, price float64) []domain.Rate {
	out := make([]domain.Rate, 0, nights)
	for i := 0; i < nights; i++ {
		out = append(out, unitRate(from.AddDate(0, 0, i), price))
	}
	return out
}

func nightsAt(from time.Time, prices ...float64) []NightPrice {
	out := make([]NightPrice, 0, len(prices))
	for i, p := range prices {
		out = append(out, NightPrice{Date: from.AddDate(0, 0, i), Price: p, OriginalPrice: p, IsAvailable: true})
	}
	return out
}
