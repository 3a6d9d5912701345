package memory_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hotel_rates/internal/domain"
	"hotel_rates/internal/storage/memory"
)

var key = domain.RateKey{HotelID: 1, RoomTypeID: 10, MealPlanID: 100, MarketID: 1000}

func day(d int) time.Time { return time.Date(2026, 7, d, 0, 0, 0, 0, time.UTC) }

func TestListRates_HalfOpenRange(t *testing.T) {
	s := memory.New()
	for d := 1; d <= 5; d++ {
		s.PutRate(domain.Rate{RateKey: key, Date: day(d), PricePerNight: float64(100 + d)})
	}
	s.PutRate(domain.Rate{RateKey: domain.RateKey{HotelID: 1, RoomTypeID: 11, MealPlanID: 100, MarketID: 1000}, Date: day(2)})

	rs, err := s.ListRates(context.Background(), key, day(2), day(4))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(rs) != 2 || !rs[0].Date.Equal(day(2)) || !rs[1].Date.Equal(day(3)) {
		t.Fatalf("unexpected rates: %+v", rs)
	}
}

func TestUpsertRates_KeepsSold(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	s.PutRate(domain.Rate{RateKey: key, Date: day(1), PricePerNight: 100, Allotment: 5, Sold: 3})

	err := s.UpsertRates(ctx, []domain.Rate{
		{RateKey: key, Date: day(1), PricePerNight: 120, Allotment: 8, Sold: 0},
		{RateKey: key, Date: day(2), PricePerNight: 120, Allotment: 8, Sold: 7},
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	rs, _ := s.ListRates(ctx, key, day(1), day(3))
	if rs[0].Sold != 3 || rs[0].PricePerNight != 120 || rs[0].Allotment != 8 {
		t.Fatalf("existing rate: %+v", rs[0])
	}
	if rs[1].Sold != 0 {
		t.Fatalf("new rate must start unsold, got %d", rs[1].Sold)
	}
	if rs[0].ID == 0 || rs[1].ID == 0 || rs[0].ID == rs[1].ID {
		t.Fatalf("ids not assigned: %d %d", rs[0].ID, rs[1].ID)
	}
}

func TestIncrementSold_NeverOversells(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	s.PutRate(domain.Rate{RateKey: key, Date: day(1), Allotment: 5})

	var ok, short atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.IncrementSold(ctx, key, day(1), 1)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientAllotment):
				short.Add(1)
			default:
				t.Errorf("unexpected err: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok.Load() != 5 || short.Load() != 15 {
		t.Fatalf("ok=%d short=%d", ok.Load(), short.Load())
	}
	rs, _ := s.ListRates(ctx, key, day(1), day(2))
	if rs[0].Sold != 5 {
		t.Fatalf("sold=%d", rs[0].Sold)
	}
}

func TestDecrementSold_FloorsAtZero(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	s.PutRate(domain.Rate{RateKey: key, Date: day(1), Allotment: 5, Sold: 1})

	r, err := s.DecrementSold(ctx, key, day(1), 3)
	if err != nil || r.Sold != 0 {
		t.Fatalf("r=%+v err=%v", r, err)
	}
	if _, err := s.DecrementSold(ctx, key, day(9), 1); !errors.Is(err, domain.ErrRateNotFound) {
		t.Fatalf("expected ErrRateNotFound, got %v", err)
	}
}

func TestLoadSeed(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	seed := `{
		"hotels": [{"id": 1, "name": "Sea View", "currency": "EUR"}],
		"roomTypes": [{"id": 10, "hotelId": 1, "code": "DBL", "occupancy": {"minAdults": 1, "maxAdults": 3, "maxChildren": 2, "totalMaxGuests": 4, "baseOccupancy": 2}}],
		"markets": [{"id": 1000, "hotelId": 1, "code": "UK", "sales": {"mode": "net", "markupRate": 10}}],
		"seasons": [{"id": 1, "hotelId": 1, "marketId": 1000, "code": "HIGH", "priority": 1}],
		"campaigns": [{"id": 7, "hotelId": 1, "status": "active", "stayWindow": {"start": "2026-07-01T00:00:00Z", "end": "2026-07-31T00:00:00Z"}}],
		"rates": [{"hotelId": 1, "roomTypeId": 10, "mealPlanId": 100, "marketId": 1000, "date": "2026-07-01T00:00:00Z", "pricePerNight": 100, "allotment": 4}]
	}`
	if err := s.Load(strings.NewReader(seed)); err != nil {
		t.Fatalf("load: %v", err)
	}

	if h, err := s.GetHotel(ctx, 1); err != nil || h.Name != "Sea View" {
		t.Fatalf("hotel=%+v err=%v", h, err)
	}
	if _, err := s.GetRoomType(ctx, 99); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if ss, _ := s.ListSeasons(ctx, 1, 1000); len(ss) != 1 {
		t.Fatalf("seasons=%+v", ss)
	}
	if cs, _ := s.ListCampaigns(ctx, 1, day(1), day(3)); len(cs) != 1 {
		t.Fatalf("campaigns=%+v", cs)
	}
	if cs, _ := s.ListCampaigns(ctx, 1, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)); len(cs) != 0 {
		t.Fatalf("expected no campaigns outside stay window, got %+v", cs)
	}
	rs, _ := s.ListRates(ctx, key, day(1), day(2))
	if len(rs) != 1 || rs[0].Allotment != 4 {
		t.Fatalf("rates=%+v", rs)
	}
}

func TestLoadSeed_RejectsInvalidReference(t *testing.T) {
	const (
		room     = `{"id": 10, "hotelId": 1, "code": "DBL", "occupancy": {"minAdults": 1, "maxAdults": 3, "maxChildren": 2, "totalMaxGuests": 4, "baseOccupancy": 2}}`
		offTable = `{"combinationTable": [{"key": "1", "adults": 1, "calculatedMultiplier": 0.8, "isActive": true}, {"key": "2", "adults": 2, "calculatedMultiplier": 1, "isActive": false}]}`
	)
	cases := map[string]string{
		"room baseline off": `{"hotels": [{"id": 1}], "roomTypes": [{"id": 10, "hotelId": 1, "code": "DBL", "multipliers": ` + offTable + `,
			"occupancy": {"minAdults": 1, "maxAdults": 3, "maxChildren": 2, "totalMaxGuests": 4, "baseOccupancy": 2}}]}`,
		"base above max adults": `{"hotels": [{"id": 1}], "roomTypes": [{"id": 10, "hotelId": 1, "code": "DBL",
			"occupancy": {"minAdults": 1, "maxAdults": 2, "maxChildren": 2, "totalMaxGuests": 4, "baseOccupancy": 3}}]}`,
		"market override baseline off": `{"hotels": [{"id": 1}], "roomTypes": [` + room + `],
			"markets": [{"id": 1000, "hotelId": 1, "roomOverrides": [{"roomTypeId": 10, "useMultipliers": true, "multipliers": ` + offTable + `}]}]}`,
		"season override baseline off": `{"hotels": [{"id": 1}], "roomTypes": [` + room + `],
			"seasons": [{"id": 1, "hotelId": 1, "marketId": 1000, "roomOverrides": [{"roomTypeId": 10, "useMultipliers": true, "multipliers": ` + offTable + `}]}]}`,
		"rate baseline off": `{"hotels": [{"id": 1}], "roomTypes": [` + room + `],
			"rates": [{"hotelId": 1, "roomTypeId": 10, "mealPlanId": 100, "marketId": 1000, "date": "2026-07-01T00:00:00Z", "multipliers": ` + offTable + `}]}`,
	}
	for name, seed := range cases {
		t.Run(name, func(t *testing.T) {
			s := memory.New()
			err := s.Load(strings.NewReader(seed))
			if !errors.Is(err, domain.ErrInvalidMultiplier) && !errors.Is(err, domain.ErrInvalidOccupancy) {
				t.Fatalf("expected a validation error, got %v", err)
			}
			if _, err := s.GetHotel(context.Background(), 1); !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("a rejected seed must store nothing, got %v", err)
			}
		})
	}
}
