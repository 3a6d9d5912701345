package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_rates/internal/domain"
	"hotel_rates/internal/pricing"
)

const defaultImportBatch = 500

// RateImportService is the contract-load write path for nightly rates.
type RateImportService struct {
	repo  domain.RateRepository
	refs  domain.ReferenceRepository
	batch int
}

// NewRateImportService builds the importer. With refs set, every rate must
// belong to a known room type of its hotel and rate templates are checked
// against that room's occupancy; nil refs checks records in isolation.
func NewRateImportService(r domain.RateRepository, refs domain.ReferenceRepository, batch int) *RateImportService {
	if batch <= 0 {
		batch = defaultImportBatch
	}
	return &RateImportService{repo: r, refs: refs, batch: batch}
}

type ImportRejection struct {
	Index  int            `json:"index"`
	Key    domain.RateKey `json:"key"`
	Date   time.Time      `json:"date"`
	Reason string         `json:"reason"`
}

type ImportReport struct {
	Received int               `json:"received"`
	Imported int               `json:"imported"`
	Rejected []ImportRejection `json:"rejected,omitempty"`
}

// Import validates rs and upserts the valid ones in batches. Invalid records
// are reported and skipped; sold counters are never written by imports.
func (s *RateImportService) Import(ctx context.Context, rs []domain.Rate) (ImportReport, error) {
	rep := ImportReport{Received: len(rs)}
	valid := make([]domain.Rate, 0, len(rs))
	seen := make(map[string]int, len(rs))
	rooms := map[int64]*domain.RoomType{}

	for i, r := range rs {
		r.Date = domain.Day(r.Date)
		r.Sold = 0
		err := validateRate(r)
		if err == nil && s.refs != nil {
			err = s.checkRoom(ctx, rooms, r)
		}
		if errors.Is(err, errLookupFailed) {
			return rep, err
		}
		if err != nil {
			rep.Rejected = append(rep.Rejected, ImportRejection{Index: i, Key: r.RateKey, Date: r.Date, Reason: err.Error()})
			continue
		}
		id := fmt.Sprintf("%d/%d/%d/%d/%s", r.HotelID, r.RoomTypeID, r.MealPlanID, r.MarketID, r.Date.Format(time.DateOnly))
		if first, dup := seen[id]; dup {
			rep.Rejected = append(rep.Rejected, ImportRejection{
				Index: i, Key: r.RateKey, Date: r.Date,
				Reason: fmt.Sprintf("duplicate of record %d", first),
			})
			continue
		}
		seen[id] = i
		valid = append(valid, r)
	}

	for start := 0; start < len(valid); start += s.batch {
		end := min(start+s.batch, len(valid))
		if err := s.repo.UpsertRates(ctx, valid[start:end]); err != nil {
			return rep, fmt.Errorf("upsert rates [%d:%d]: %w", start, end, err)
		}
		rep.Imported += end - start
	}

	ev := log.Info()
	if len(rep.Rejected) > 0 {
		ev = log.Warn()
	}
	ev.Int("received", rep.Received).Int("imported", rep.Imported).Int("rejected", len(rep.Rejected)).Msg("rate import")
	return rep, nil
}

var (
	errInvalidRate  = errors.New("invalid rate")
	errLookupFailed = errors.New("room type lookup failed")
)

// checkRoom resolves the rate's room type (memoized in rooms, nil for
// unknown ids) and validates the rate template against its occupancy.
func (s *RateImportService) checkRoom(ctx context.Context, rooms map[int64]*domain.RoomType, r domain.Rate) error {
	rt, seen := rooms[r.RoomTypeID]
	if !seen {
		got, err := s.refs.GetRoomType(ctx, r.RoomTypeID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return fmt.Errorf("%w: %d: %w", errLookupFailed, r.RoomTypeID, err)
		default:
			rt = &got
		}
		rooms[r.RoomTypeID] = rt
	}
	if rt == nil {
		return fmt.Errorf("%w: unknown room type %d", errInvalidRate, r.RoomTypeID)
	}
	if rt.HotelID != r.HotelID {
		return fmt.Errorf("%w: room type %d belongs to hotel %d", errInvalidRate, rt.ID, rt.HotelID)
	}
	return pricing.ValidateTemplate(r.Multipliers, &rt.Occupancy)
}

func validateRate(r domain.Rate) error {
	switch {
	case r.HotelID <= 0 || r.RoomTypeID <= 0 || r.MealPlanID <= 0 || r.MarketID <= 0:
		return fmt.Errorf("%w: incomplete key", errInvalidRate)
	case r.Date.IsZero():
		return fmt.Errorf("%w: missing date", errInvalidRate)
	case r.PricePerNight < 0 || r.SingleSupplement < 0 || r.ExtraAdult < 0 || r.ExtraChild < 0 || r.ExtraInfant < 0:
		return fmt.Errorf("%w: negative price", errInvalidRate)
	case r.Allotment < 0 || r.MinStay < 0 || r.MaxStay < 0 || r.ReleaseDays < 0:
		return fmt.Errorf("%w: negative restriction value", errInvalidRate)
	case r.MaxStay > 0 && r.MinStay > r.MaxStay:
		return fmt.Errorf("%w: minStay %d above maxStay %d", errInvalidRate, r.MinStay, r.MaxStay)
	}
	if r.PricingType != "" && r.PricingType != domain.PricingUnit && r.PricingType != domain.PricingPerPerson {
		return fmt.Errorf("%w: unknown pricing type %q", errInvalidRate, r.PricingType)
	}
	for adults, p := range r.OccupancyPricing {
		if adults < 1 || adults > domain.MaxOccupancyPricingAdults || p < 0 {
			return fmt.Errorf("%w: occupancy price for %d adults", errInvalidRate, adults)
		}
	}
	for _, p := range r.ChildOrderPricing {
		if p < 0 {
			return fmt.Errorf("%w: negative child price", errInvalidRate)
		}
	}
	for _, t := range r.ChildAgePricing {
		if t.MinAge > t.MaxAge || t.Price < 0 {
			return fmt.Errorf("%w: child age tier %d-%d", errInvalidRate, t.MinAge, t.MaxAge)
		}
	}
	if r.Multipliers != nil {
		if err := pricing.ValidateTemplate(r.Multipliers, nil); err != nil {
			return err
		}
	}
	return nil
}
