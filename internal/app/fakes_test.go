package app_test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"hotel_rates/internal/domain"
	"hotel_rates/internal/storage/memory"
)

// ---- fakes ----

type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	hits  int
	sets  int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	c.sets++
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

// failingStore rejects every allotment change.
type failingStore struct{ err error }

func (f failingStore) IncrementSold(ctx context.Context, key domain.RateKey, date time.Time, rooms int) (domain.Rate, error) {
	return domain.Rate{}, f.err
}

func (f failingStore) DecrementSold(ctx context.Context, key domain.RateKey, date time.Time, rooms int) (domain.Rate, error) {
	return domain.Rate{}, f.err
}

// ---- fixtures ----

var rateKey = domain.RateKey{HotelID: 1, RoomTypeID: 10, MealPlanID: 100, MarketID: 1000}

func day(m time.Month, d int) time.Time { return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC) }

func seededStore() *memory.Store {
	s := memory.New()
	s.PutHotel(domain.Hotel{ID: 1, Name: "Sea View", Currency: "EUR"})
	s.PutHotel(domain.Hotel{ID: 2, Name: "Other", Currency: "EUR"})
	occ := domain.Occupancy{MinAdults: 1, MaxAdults: 3, MaxChildren: 2, TotalMaxGuests: 4, BaseOccupancy: 2}
	s.PutRoomType(domain.RoomType{ID: 10, HotelID: 1, Code: "DBL", Occupancy: occ, PricingType: domain.PricingUnit})
	strict := occ
	strict.MinAdults = 2
	s.PutRoomType(domain.RoomType{ID: 11, HotelID: 1, Code: "FAM", Occupancy: strict, PricingType: domain.PricingUnit})
	s.PutRoomType(domain.RoomType{ID: 20, HotelID: 2, Code: "DBL", Occupancy: occ})
	s.PutMarket(domain.Market{ID: 1000, HotelID: 1, Code: "UK", Currency: "EUR",
		Sales: domain.SalesSettings{Mode: domain.ModeNet, MarkupRate: 10}})

	july := domain.DateRange{Start: day(7, 1), End: day(7, 31)}
	s.PutCampaign(domain.Campaign{
		ID: 7, HotelID: 1, Code: "EARLY", Name: "Early bird", Status: domain.CampaignActive,
		StayWindow: july, Combinable: true, Priority: 1, CalculationOrder: 1,
		Discount:        domain.CampaignDiscount{Type: domain.DiscountPercentage, Value: 10},
		CalculationType: domain.CalcCumulative, ApplicationType: domain.ApplyOnStay,
	})
	s.PutCampaign(domain.Campaign{
		ID: 8, HotelID: 1, Code: "SUMMER", Name: "Summer code", Status: domain.CampaignActive, PromoCode: "SUMMER",
		StayWindow: july, Combinable: true, Priority: 1, CalculationOrder: 2,
		Discount:        domain.CampaignDiscount{Type: domain.DiscountPercentage, Value: 5},
		CalculationType: domain.CalcCumulative, ApplicationType: domain.ApplyOnStay,
	})

	for _, roomID := range []int64{10, 11} {
		for d := 1; d <= 3; d++ {
			k := rateKey
			k.RoomTypeID = roomID
			s.PutRate(domain.Rate{
				RateKey: k, Date: day(7, d),
				PricePerNight: 100, ExtraAdult: 20, ExtraChild: 15, Allotment: 5,
			})
		}
	}
	return s
}
