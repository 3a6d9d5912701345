package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_rates/internal/adapters/observability"
	"hotel_rates/internal/domain"
)

const (
	CodeRateNotFound          = "RATE_NOT_FOUND"
	CodeInsufficientAllotment = "INSUFFICIENT_ALLOTMENT"
	CodeStorageError          = "STORAGE_ERROR"
)

type AllotmentRequest struct {
	HotelID    int64       `json:"hotelId"`
	RoomTypeID int64       `json:"roomTypeId"`
	MealPlanID int64       `json:"mealPlanId"`
	MarketID   int64       `json:"marketId"`
	Dates      []time.Time `json:"dates"`
	Rooms      int         `json:"rooms"`
	// AllOrNothing releases the dates already reserved when any date fails.
	AllOrNothing bool `json:"allOrNothing"`
}

func (r AllotmentRequest) key() domain.RateKey {
	return domain.RateKey{HotelID: r.HotelID, RoomTypeID: r.RoomTypeID, MealPlanID: r.MealPlanID, MarketID: r.MarketID}
}

type AllotmentError struct {
	Date    time.Time `json:"date"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

type AllotmentResult struct {
	Success      bool             `json:"success"`
	UpdatedRates []domain.Rate    `json:"updatedRates"`
	Errors       []AllotmentError `json:"errors"`
	RolledBack   bool             `json:"rolledBack,omitempty"`
}

// AllotmentService moves the sold counters at booking confirmation and
// cancellation. Each date is committed on its own by the store.
type AllotmentService struct {
	store domain.AllotmentStore
}

func NewAllotmentService(store domain.AllotmentStore) *AllotmentService {
	return &AllotmentService{store: store}
}

func (s *AllotmentService) Reserve(ctx context.Context, req AllotmentRequest) (AllotmentResult, error) {
	dates, err := normalize(req)
	if err != nil {
		return AllotmentResult{}, err
	}
	res := s.apply(ctx, "reserve", req, dates, s.store.IncrementSold)
	if req.AllOrNothing && len(res.Errors) > 0 && len(res.UpdatedRates) > 0 {
		s.compensate(ctx, req, &res)
	}
	return res, nil
}

func (s *AllotmentService) Release(ctx context.Context, req AllotmentRequest) (AllotmentResult, error) {
	dates, err := normalize(req)
	if err != nil {
		return AllotmentResult{}, err
	}
	return s.apply(ctx, "release", req, dates, s.store.DecrementSold), nil
}

type soldFn func(ctx context.Context, key domain.RateKey, date time.Time, rooms int) (domain.Rate, error)

func (s *AllotmentService) apply(ctx context.Context, op string, req AllotmentRequest, dates []time.Time, fn soldFn) AllotmentResult {
	res := AllotmentResult{UpdatedRates: []domain.Rate{}, Errors: []AllotmentError{}}
	key := req.key()
	for _, d := range dates {
		r, err := fn(ctx, key, d, req.Rooms)
		if err != nil {
			ae := classify(d, err)
			res.Errors = append(res.Errors, ae)
			observability.ObserveAllotment(op, strings.ToLower(ae.Code))
			log.Warn().Err(err).
				Str("op", op).
				Int64("room_type_id", req.RoomTypeID).
				Int64("market_id", req.MarketID).
				Str("date", d.Format(time.DateOnly)).
				Int("rooms", req.Rooms).
				Msg("allotment date rejected")
			continue
		}
		res.UpdatedRates = append(res.UpdatedRates, r)
		observability.ObserveAllotment(op, "ok")
	}
	res.Success = len(res.Errors) == 0
	log.Info().
		Str("op", op).
		Int64("room_type_id", req.RoomTypeID).
		Int("dates", len(dates)).
		Int("updated", len(res.UpdatedRates)).
		Int("failed", len(res.Errors)).
		Msg("allotment applied")
	return res
}

// compensate undoes the committed part of a failed all-or-nothing reservation.
func (s *AllotmentService) compensate(ctx context.Context, req AllotmentRequest, res *AllotmentResult) {
	key := req.key()
	kept := res.UpdatedRates[:0]
	for _, r := range res.UpdatedRates {
		if _, err := s.store.DecrementSold(ctx, key, r.Date, req.Rooms); err != nil {
			log.Error().Err(err).Str("date", r.Date.Format(time.DateOnly)).Msg("allotment rollback failed")
			res.Errors = append(res.Errors, AllotmentError{
				Date: r.Date, Code: CodeStorageError, Message: "rollback failed: " + err.Error(),
			})
			kept = append(kept, r)
			continue
		}
		observability.ObserveAllotment("rollback", "ok")
	}
	res.UpdatedRates = kept
	res.RolledBack = true
}

func normalize(req AllotmentRequest) ([]time.Time, error) {
	if req.HotelID <= 0 || req.RoomTypeID <= 0 || req.MealPlanID <= 0 || req.MarketID <= 0 {
		return nil, fmt.Errorf("%w: hotel, room type, meal plan and market ids are required", domain.ErrInvalidQuery)
	}
	if req.Rooms < 1 {
		return nil, fmt.Errorf("%w: rooms must be at least 1", domain.ErrInvalidQuery)
	}
	if len(req.Dates) == 0 {
		return nil, fmt.Errorf("%w: no dates", domain.ErrInvalidQuery)
	}
	seen := make(map[time.Time]bool, len(req.Dates))
	out := make([]time.Time, 0, len(req.Dates))
	for _, d := range req.Dates {
		d = domain.Day(d)
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func classify(d time.Time, err error) AllotmentError {
	switch {
	case errors.Is(err, domain.ErrRateNotFound):
		return AllotmentError{Date: d, Code: CodeRateNotFound, Message: "no rate for this date"}
	case errors.Is(err, domain.ErrInsufficientAllotment):
		return AllotmentError{Date: d, Code: CodeInsufficientAllotment, Message: err.Error()}
	default:
		return AllotmentError{Date: d, Code: CodeStorageError, Message: err.Error()}
	}
}
