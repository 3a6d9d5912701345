package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"hotel_rates/internal/adapters/observability"
	"hotel_rates/internal/domain"
	"hotel_rates/internal/pkg/clock"
	"hotel_rates/internal/pricing"
)

// Query is the input of a full multi-night price computation.
type Query struct {
	HotelID          int64           `json:"hotelId"`
	RoomTypeID       int64           `json:"roomTypeId"`
	MealPlanID       int64           `json:"mealPlanId"`
	MarketID         int64           `json:"marketId"`
	CheckInDate      time.Time       `json:"checkInDate"`
	CheckOutDate     time.Time       `json:"checkOutDate"`
	Adults           int             `json:"adults"`
	Children         []pricing.Child `json:"children,omitempty"`
	IncludeCampaigns bool            `json:"includeCampaigns"`
	CampaignCode     string          `json:"campaignCode,omitempty"`
	// NoCache skips the cache read; the fresh result is still stored.
	NoCache bool `json:"-"`
}

func (q Query) key() domain.RateKey {
	return domain.RateKey{HotelID: q.HotelID, RoomTypeID: q.RoomTypeID, MealPlanID: q.MealPlanID, MarketID: q.MarketID}
}

func (q Query) validate() error {
	if q.HotelID <= 0 || q.RoomTypeID <= 0 || q.MealPlanID <= 0 || q.MarketID <= 0 {
		return fmt.Errorf("%w: hotel, room type, meal plan and market ids are required", domain.ErrInvalidQuery)
	}
	if q.CheckInDate.IsZero() || q.CheckOutDate.IsZero() || !domain.Day(q.CheckOutDate).After(domain.Day(q.CheckInDate)) {
		return fmt.Errorf("%w: check-out must be after check-in", domain.ErrInvalidDateRange)
	}
	if q.Adults < 1 {
		return fmt.Errorf("%w: at least one adult required", domain.ErrInvalidQuery)
	}
	for i, c := range q.Children {
		if c.Age < 0 || c.Age > 17 {
			return fmt.Errorf("%w: child %d has age %d", domain.ErrInvalidQuery, i+1, c.Age)
		}
	}
	return nil
}

type Quote struct {
	ID         string    `json:"id"`
	HotelID    int64     `json:"hotelId"`
	RoomTypeID int64     `json:"roomTypeId"`
	MealPlanID int64     `json:"mealPlanId"`
	MarketID   int64     `json:"marketId"`
	CheckIn    time.Time `json:"checkInDate"`
	CheckOut   time.Time `json:"checkOutDate"`
	pricing.StayQuote
	ComputedAt time.Time `json:"computedAt"`
	Cached     bool      `json:"cached"`
}

type QuoteService struct {
	refs     domain.ReferenceRepository
	rates    domain.RateRepository
	cache    domain.Cache
	cacheTTL time.Duration
	clock    clock.Clock
	workers  int
	inflight singleflight.Group
}

func NewQuoteService(refs domain.ReferenceRepository, rates domain.RateRepository, c domain.Cache, ttl time.Duration, clk clock.Clock, workers int) *QuoteService {
	if clk == nil {
		clk = clock.System{}
	}
	if workers < 1 {
		workers = 1
	}
	return &QuoteService{refs: refs, rates: rates, cache: c, cacheTTL: ttl, clock: clk, workers: workers}
}

// CalculatePriceWithCampaigns prices one room over a stay, consulting the
// cache first. Identical concurrent misses share one computation.
func (s *QuoteService) CalculatePriceWithCampaigns(ctx context.Context, q Query) (Quote, error) {
	start := time.Now()
	if err := q.validate(); err != nil {
		observability.ObserveQuote("error", "engine", time.Since(start))
		return Quote{}, err
	}
	now := s.clock.Now()
	key := CacheKey(q, now)

	if s.cache != nil && !q.NoCache {
		var cached Quote
		if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("quote cache read failed")
		} else if ok {
			cached.Cached = true
			log.Debug().Str("key", key).Str("quote_id", cached.ID).Msg("quote cache hit")
			observability.ObserveQuote("cached", "cache", time.Since(start))
			return cached, nil
		}
	}

	v, err, shared := s.inflight.Do(key, func() (any, error) {
		out, err := s.compute(ctx, q, now)
		if err != nil {
			return Quote{}, err
		}
		if s.cache != nil && s.cacheTTL > 0 {
			if err := s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds())); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("quote cache write failed")
			}
		}
		return out, nil
	})
	if err != nil {
		observability.ObserveQuote("error", "engine", time.Since(start))
		return Quote{}, err
	}
	out := v.(Quote)
	log.Debug().Str("key", key).Str("quote_id", out.ID).Bool("shared", shared).Msg("quote computed")
	observability.ObserveQuote(resultLabel(out), "engine", time.Since(start))
	return out, nil
}

func (s *QuoteService) compute(ctx context.Context, q Query, now time.Time) (Quote, error) {
	hotel, err := s.refs.GetHotel(ctx, q.HotelID)
	if err != nil {
		return Quote{}, fmt.Errorf("load hotel: %w", err)
	}
	room, err := s.refs.GetRoomType(ctx, q.RoomTypeID)
	if err != nil {
		return Quote{}, fmt.Errorf("load room type: %w", err)
	}
	if room.HotelID != hotel.ID {
		return Quote{}, fmt.Errorf("room type %d of hotel %d: %w", room.ID, hotel.ID, domain.ErrNotFound)
	}
	market, err := s.refs.GetMarket(ctx, q.MarketID)
	if err != nil {
		return Quote{}, fmt.Errorf("load market: %w", err)
	}
	if market.HotelID != hotel.ID {
		return Quote{}, fmt.Errorf("market %d of hotel %d: %w", market.ID, hotel.ID, domain.ErrNotFound)
	}
	seasons, err := s.refs.ListSeasons(ctx, hotel.ID, market.ID)
	if err != nil {
		return Quote{}, fmt.Errorf("load seasons: %w", err)
	}

	checkIn, checkOut := domain.Day(q.CheckInDate), domain.Day(q.CheckOutDate)
	rates, err := s.rates.ListRates(ctx, q.key(), checkIn, checkOut)
	if err != nil {
		return Quote{}, fmt.Errorf("load rates: %w", err)
	}

	var campaigns []domain.Campaign
	if q.IncludeCampaigns {
		candidates, err := s.refs.ListCampaigns(ctx, hotel.ID, checkIn, checkOut.AddDate(0, 0, -1))
		if err != nil {
			return Quote{}, fmt.Errorf("load campaigns: %w", err)
		}
		campaigns = pricing.FilterCampaigns(candidates, pricing.CampaignCriteria{
			BookingDate: now,
			CheckIn:     checkIn,
			CheckOut:    checkOut,
			RoomTypeID:  q.RoomTypeID,
			MarketID:    q.MarketID,
			MealPlanID:  q.MealPlanID,
			PromoCode:   q.CampaignCode,
		})
	}

	sq, err := pricing.QuoteStay(pricing.StayInput{
		Hotel:            hotel,
		RoomType:         room,
		Market:           market,
		Seasons:          seasons,
		Rates:            rates,
		Campaigns:        campaigns,
		IncludeCampaigns: q.IncludeCampaigns,
		CheckIn:          checkIn,
		CheckOut:         checkOut,
		Adults:           q.Adults,
		Children:         q.Children,
		BookingDate:      now,
	})
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		ID:         uuid.NewString(),
		HotelID:    q.HotelID,
		RoomTypeID: q.RoomTypeID,
		MealPlanID: q.MealPlanID,
		MarketID:   q.MarketID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		StayQuote:  sq,
		ComputedAt: now,
	}, nil
}

func resultLabel(q Quote) string {
	switch {
	case !q.Success:
		return "failure"
	case !q.IsAvailable:
		return "unavailable"
	default:
		return "ok"
	}
}

type RoomsQuote struct {
	Rooms         []Quote `json:"rooms"`
	Success       bool    `json:"success"`
	IsAvailable   bool    `json:"isAvailable"`
	OriginalTotal float64 `json:"originalTotal"`
	TotalDiscount float64 `json:"totalDiscount"`
	FinalTotal    float64 `json:"finalTotal"`
}

// QuoteRooms prices several rooms of one booking in parallel. Any room
// erroring fails the whole call; business failures stay per room.
func (s *QuoteService) QuoteRooms(ctx context.Context, qs []Query) (RoomsQuote, error) {
	if len(qs) == 0 {
		return RoomsQuote{}, fmt.Errorf("%w: no rooms requested", domain.ErrInvalidQuery)
	}
	out := RoomsQuote{Rooms: make([]Quote, len(qs))}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, q := range qs {
		i, q := i, q
		g.Go(func() error {
			res, err := s.CalculatePriceWithCampaigns(gctx, q)
			if err != nil {
				return fmt.Errorf("room %d: %w", i+1, err)
			}
			out.Rooms[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RoomsQuote{}, err
	}

	out.Success, out.IsAvailable = true, true
	for _, r := range out.Rooms {
		out.Success = out.Success && r.Success
		out.IsAvailable = out.IsAvailable && r.Success && r.IsAvailable
		out.OriginalTotal += r.OriginalTotal
		out.FinalTotal += r.FinalTotal
	}
	out.OriginalTotal = round2(out.OriginalTotal)
	out.FinalTotal = round2(out.FinalTotal)
	out.TotalDiscount = round2(out.OriginalTotal - out.FinalTotal)
	return out, nil
}

type cacheKeyParts struct {
	HotelID    int64  `json:"h"`
	RoomTypeID int64  `json:"r"`
	MealPlanID int64  `json:"mp"`
	MarketID   int64  `json:"m"`
	From       string `json:"f"`
	To         string `json:"t"`
	Adults     int    `json:"a"`
	Ages       []int  `json:"c"`
	Campaigns  bool   `json:"ic"`
	Code       string `json:"cc"`
	Booked     string `json:"b"`
}

// CacheKey hashes the canonical form of q. The booking day is part of the key
// because release days and campaign booking windows depend on it.
func CacheKey(q Query, bookingDate time.Time) string {
	parts := cacheKeyParts{
		HotelID:    q.HotelID,
		RoomTypeID: q.RoomTypeID,
		MealPlanID: q.MealPlanID,
		MarketID:   q.MarketID,
		From:       domain.Day(q.CheckInDate).Format(time.DateOnly),
		To:         domain.Day(q.CheckOutDate).Format(time.DateOnly),
		Adults:     q.Adults,
		Ages:       make([]int, 0, len(q.Children)),
		Campaigns:  q.IncludeCampaigns,
		Booked:     domain.Day(bookingDate).Format(time.DateOnly),
	}
	for _, c := range q.Children {
		parts.Ages = append(parts.Ages, c.Age)
	}
	if q.IncludeCampaigns {
		parts.Code = strings.ToUpper(strings.TrimSpace(q.CampaignCode))
	}
	b, _ := json.Marshal(parts)
	sum := sha1.Sum(b)
	return "quote:" + hex.EncodeToString(sum[:])
}

// IsClientError reports errors caused by the request rather than the system.
func IsClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidQuery) ||
		errors.Is(err, domain.ErrInvalidDateRange) ||
		errors.Is(err, domain.ErrCapacityExceeded) ||
		errors.Is(err, domain.ErrInvalidMultiplier) ||
		errors.Is(err, domain.ErrInvalidOccupancy)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
