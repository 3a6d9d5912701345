package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"hotel_rates/internal/domain"
	"hotel_rates/internal/pricing"
)

type rateID struct {
	key domain.RateKey
	day string
}

func idOf(key domain.RateKey, d time.Time) rateID {
	return rateID{key: key, day: domain.Day(d).Format(time.DateOnly)}
}

// Store keeps reference data and rates in process. A single mutex serializes
// sold-counter updates, which makes IncrementSold/DecrementSold atomic per date.
type Store struct {
	mu        sync.RWMutex
	hotels    map[int64]domain.Hotel
	rooms     map[int64]domain.RoomType
	markets   map[int64]domain.Market
	seasons   []domain.Season
	campaigns []domain.Campaign
	rates     map[rateID]domain.Rate
	nextRate  int64
}

func New() *Store {
	return &Store{
		hotels:  map[int64]domain.Hotel{},
		rooms:   map[int64]domain.RoomType{},
		markets: map[int64]domain.Market{},
		rates:   map[rateID]domain.Rate{},
	}
}

// Seed is the JSON document accepted by Load.
type Seed struct {
	Hotels    []domain.Hotel    `json:"hotels"`
	RoomTypes []domain.RoomType `json:"roomTypes"`
	Markets   []domain.Market   `json:"markets"`
	Seasons   []domain.Season   `json:"seasons"`
	Campaigns []domain.Campaign `json:"campaigns"`
	Rates     []domain.Rate     `json:"rates"`
}

func DecodeSeed(r io.Reader) (*Seed, error) {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &seed, nil
}

// ValidateReference checks every room type of the seed, and the market and
// season override templates against the rooms they target.
func (sd *Seed) ValidateReference() error {
	rooms := make(map[int64]domain.RoomType, len(sd.RoomTypes))
	for _, rt := range sd.RoomTypes {
		if err := pricing.ValidateRoomType(rt); err != nil {
			return err
		}
		rooms[rt.ID] = rt
	}
	lookup := func(id int64) (domain.RoomType, bool) {
		rt, ok := rooms[id]
		return rt, ok
	}
	for _, m := range sd.Markets {
		if err := pricing.ValidateRoomOverrides(m.RoomOverrides, lookup); err != nil {
			return fmt.Errorf("market %d: %w", m.ID, err)
		}
	}
	for _, se := range sd.Seasons {
		if err := pricing.ValidateRoomOverrides(se.RoomOverrides, lookup); err != nil {
			return fmt.Errorf("season %d: %w", se.ID, err)
		}
	}
	return nil
}

// Validate is ValidateReference plus every rate template checked against
// its room.
func (sd *Seed) Validate() error {
	if err := sd.ValidateReference(); err != nil {
		return err
	}
	rooms := make(map[int64]*domain.Occupancy, len(sd.RoomTypes))
	for i := range sd.RoomTypes {
		rooms[sd.RoomTypes[i].ID] = &sd.RoomTypes[i].Occupancy
	}
	for i, r := range sd.Rates {
		if err := pricing.ValidateTemplate(r.Multipliers, rooms[r.RoomTypeID]); err != nil {
			return fmt.Errorf("rate %d: %w", i, err)
		}
	}
	return nil
}

// Load decodes and validates a seed, then stores it. Nothing is stored when
// validation fails.
func (s *Store) Load(r io.Reader) error {
	seed, err := DecodeSeed(r)
	if err != nil {
		return err
	}
	if err := seed.Validate(); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	for _, h := range seed.Hotels {
		s.PutHotel(h)
	}
	for _, rt := range seed.RoomTypes {
		s.PutRoomType(rt)
	}
	for _, m := range seed.Markets {
		s.PutMarket(m)
	}
	for _, se := range seed.Seasons {
		s.PutSeason(se)
	}
	for _, c := range seed.Campaigns {
		s.PutCampaign(c)
	}
	for _, rt := range seed.Rates {
		s.PutRate(rt)
	}
	return nil
}

func (s *Store) PutHotel(h domain.Hotel) {
	s.mu.Lock()
	s.hotels[h.ID] = h
	s.mu.Unlock()
}

func (s *Store) PutRoomType(rt domain.RoomType) {
	s.mu.Lock()
	s.rooms[rt.ID] = rt
	s.mu.Unlock()
}

func (s *Store) PutMarket(m domain.Market) {
	s.mu.Lock()
	s.markets[m.ID] = m
	s.mu.Unlock()
}

func (s *Store) PutSeason(se domain.Season) {
	s.mu.Lock()
	s.seasons = append(s.seasons, se)
	s.mu.Unlock()
}

func (s *Store) PutCampaign(c domain.Campaign) {
	s.mu.Lock()
	s.campaigns = append(s.campaigns, c)
	s.mu.Unlock()
}

// PutRate stores r as is, sold included. Use UpsertRates for imports.
func (s *Store) PutRate(r domain.Rate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := idOf(r.RateKey, r.Date)
	if prev, ok := s.rates[id]; ok {
		r.ID = prev.ID
	} else if r.ID == 0 {
		s.nextRate++
		r.ID = s.nextRate
	}
	r.Date = domain.Day(r.Date)
	s.rates[id] = r
}

// ---- domain.ReferenceRepository ----

func (s *Store) GetHotel(_ context.Context, id int64) (domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hotels[id]
	if !ok {
		return domain.Hotel{}, fmt.Errorf("hotel %d: %w", id, domain.ErrNotFound)
	}
	return h, nil
}

func (s *Store) GetRoomType(_ context.Context, id int64) (domain.RoomType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rt, ok := s.rooms[id]
	if !ok {
		return domain.RoomType{}, fmt.Errorf("room type %d: %w", id, domain.ErrNotFound)
	}
	return rt, nil
}

func (s *Store) GetMarket(_ context.Context, id int64) (domain.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.markets[id]
	if !ok {
		return domain.Market{}, fmt.Errorf("market %d: %w", id, domain.ErrNotFound)
	}
	return m, nil
}

func (s *Store) ListSeasons(_ context.Context, hotelID, marketID int64) ([]domain.Season, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Season
	for _, se := range s.seasons {
		if se.HotelID == hotelID && se.MarketID == marketID {
			out = append(out, se)
		}
	}
	return out, nil
}

func (s *Store) ListCampaigns(_ context.Context, hotelID int64, from, to time.Time) ([]domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Campaign
	for _, c := range s.campaigns {
		if c.HotelID != hotelID {
			continue
		}
		if !c.StayWindow.IsZero() && !c.StayWindow.Overlaps(from, to) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// ---- domain.RateRepository ----

func (s *Store) ListRates(_ context.Context, key domain.RateKey, from, to time.Time) ([]domain.Rate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	from, to = domain.Day(from), domain.Day(to)
	var out []domain.Rate
	for id, r := range s.rates {
		if id.key != key || r.Date.Before(from) || !r.Date.Before(to) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) UpsertRates(_ context.Context, rs []domain.Rate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rs {
		id := idOf(r.RateKey, r.Date)
		r.Date = domain.Day(r.Date)
		if prev, ok := s.rates[id]; ok {
			r.ID, r.Sold = prev.ID, prev.Sold
		} else {
			s.nextRate++
			r.ID, r.Sold = s.nextRate, 0
		}
		s.rates[id] = r
	}
	return nil
}

// ---- domain.AllotmentStore ----

func (s *Store) IncrementSold(ctx context.Context, key domain.RateKey, date time.Time, rooms int) (domain.Rate, error) {
	if err := ctx.Err(); err != nil {
		return domain.Rate{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := idOf(key, date)
	r, ok := s.rates[id]
	if !ok {
		return domain.Rate{}, domain.ErrRateNotFound
	}
	if r.Sold+rooms > r.Allotment {
		return r, fmt.Errorf("%w: %d available, %d requested", domain.ErrInsufficientAllotment, r.Available(), rooms)
	}
	r.Sold += rooms
	s.rates[id] = r
	return r, nil
}

func (s *Store) DecrementSold(ctx context.Context, key domain.RateKey, date time.Time, rooms int) (domain.Rate, error) {
	if err := ctx.Err(); err != nil {
		return domain.Rate{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := idOf(key, date)
	r, ok := s.rates[id]
	if !ok {
		return domain.Rate{}, domain.ErrRateNotFound
	}
	r.Sold = max(r.Sold-rooms, 0)
	s.rates[id] = r
	return r, nil
}
