package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotel_rates/internal/adapters/observability"
	"hotel_rates/internal/domain"
)

func valJSON(v any, empty bool) (any, error) {
	if empty {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func valDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return domain.Day(t).Format(time.DateOnly)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func observe(op string, start time.Time, err error) {
	observability.ObserveStorage("mysql", op, err, time.Since(start))
}

// ---- reference writes ----

func (r *Repo) SaveHotel(ctx context.Context, h domain.Hotel) error {
	return r.saveDoc(ctx, "save_hotel", upsertHotelSQL, h, h.ID, h.Name, h.Currency)
}

func (r *Repo) SaveRoomType(ctx context.Context, rt domain.RoomType) error {
	return r.saveDoc(ctx, "save_room_type", upsertRoomTypeSQL, rt, rt.ID, rt.HotelID, rt.Code)
}

func (r *Repo) SaveMarket(ctx context.Context, m domain.Market) error {
	return r.saveDoc(ctx, "save_market", upsertMarketSQL, m, m.ID, m.HotelID, m.Code)
}

func (r *Repo) SaveSeason(ctx context.Context, s domain.Season) error {
	return r.saveDoc(ctx, "save_season", upsertSeasonSQL, s, s.ID, s.HotelID, s.MarketID, s.Priority)
}

func (r *Repo) SaveCampaign(ctx context.Context, c domain.Campaign) error {
	return r.saveDoc(ctx, "save_campaign", upsertCampaignSQL, c,
		c.ID, c.HotelID, c.Status, valDate(c.StayWindow.Start), valDate(c.StayWindow.End))
}

// saveDoc runs query with cols followed by doc as JSON.
func (r *Repo) saveDoc(ctx context.Context, op, query string, doc any, cols ...any) (err error) {
	start := time.Now()
	defer func() { observe(op, start, err) }()
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}
	_, err = r.db.ExecContext(ctx, query, append(cols, string(b))...)
	return err
}

// ---- domain.ReferenceRepository ----

func (r *Repo) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	var h domain.Hotel
	err := r.getDoc(ctx, "get_hotel", getHotelSQL, id, &h)
	if err != nil {
		return domain.Hotel{}, fmt.Errorf("hotel %d: %w", id, err)
	}
	return h, nil
}

func (r *Repo) GetRoomType(ctx context.Context, id int64) (domain.RoomType, error) {
	var rt domain.RoomType
	if err := r.getDoc(ctx, "get_room_type", getRoomTypeSQL, id, &rt); err != nil {
		return domain.RoomType{}, fmt.Errorf("room type %d: %w", id, err)
	}
	return rt, nil
}

func (r *Repo) GetMarket(ctx context.Context, id int64) (domain.Market, error) {
	var m domain.Market
	if err := r.getDoc(ctx, "get_market", getMarketSQL, id, &m); err != nil {
		return domain.Market{}, fmt.Errorf("market %d: %w", id, err)
	}
	return m, nil
}

func (r *Repo) getDoc(ctx context.Context, op, query string, id int64, dst any) (err error) {
	start := time.Now()
	defer func() { observe(op, start, err) }()
	var doc []byte
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return json.Unmarshal(doc, dst)
}

func (r *Repo) ListSeasons(ctx context.Context, hotelID, marketID int64) ([]domain.Season, error) {
	var out []domain.Season
	err := r.listDocs(ctx, "list_seasons", listSeasonsSQL, func(doc []byte) error {
		var s domain.Season
		if err := json.Unmarshal(doc, &s); err != nil {
			return err
		}
		out = append(out, s)
		return nil
	}, hotelID, marketID)
	return out, err
}

func (r *Repo) ListCampaigns(ctx context.Context, hotelID int64, from, to time.Time) ([]domain.Campaign, error) {
	var out []domain.Campaign
	err := r.listDocs(ctx, "list_campaigns", listCampaignsSQL, func(doc []byte) error {
		var c domain.Campaign
		if err := json.Unmarshal(doc, &c); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	}, hotelID, valDate(to), valDate(from))
	return out, err
}

func (r *Repo) listDocs(ctx context.Context, op, query string, each func([]byte) error, args ...any) (err error) {
	start := time.Now()
	defer func() { observe(op, start, err) }()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return err
		}
		if err := each(doc); err != nil {
			return fmt.Errorf("%s: decode: %w", op, err)
		}
	}
	return rows.Err()
}

// ---- domain.RateRepository ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRate(s rowScanner) (domain.Rate, error) {
	var (
		rt                               domain.Rate
		mult, childOrder, childAge, occP []byte
	)
	err := s.Scan(
		&rt.ID, &rt.HotelID, &rt.RoomTypeID, &rt.MealPlanID, &rt.MarketID, &rt.Date,
		&rt.Currency, &rt.PricingType, &mult,
		&rt.PricePerNight, &rt.SingleSupplement, &rt.ExtraAdult, &rt.ExtraChild, &rt.ExtraInfant,
		&childOrder, &childAge, &occP,
		&rt.Allotment, &rt.Sold, &rt.MinStay, &rt.MaxStay, &rt.StopSale, &rt.SingleStop, &rt.ReleaseDays,
		&rt.ClosedToArrival, &rt.ClosedToDeparture,
	)
	if err != nil {
		return domain.Rate{}, err
	}
	rt.Date = domain.Day(rt.Date)
	for _, f := range []struct {
		raw []byte
		dst any
	}{
		{mult, &rt.Multipliers},
		{childOrder, &rt.ChildOrderPricing},
		{childAge, &rt.ChildAgePricing},
		{occP, &rt.OccupancyPricing},
	} {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return domain.Rate{}, fmt.Errorf("rate %d: %w", rt.ID, err)
		}
	}
	return rt, nil
}

func (r *Repo) ListRates(ctx context.Context, key domain.RateKey, from, to time.Time) (out []domain.Rate, err error) {
	start := time.Now()
	defer func() { observe("list_rates", start, err) }()
	rows, err := r.db.QueryContext(ctx, listRatesSQL,
		key.HotelID, key.RoomTypeID, key.MealPlanID, key.MarketID, valDate(from), valDate(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		rt, err := scanRate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *Repo) UpsertRates(ctx context.Context, rs []domain.Rate) (err error) {
	if len(rs) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { observe("upsert_rates", start, err) }()

	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*24)
	for _, rt := range rs {
		mult, err := valJSON(rt.Multipliers, rt.Multipliers == nil)
		if err != nil {
			return err
		}
		childOrder, err := valJSON(rt.ChildOrderPricing, len(rt.ChildOrderPricing) == 0)
		if err != nil {
			return err
		}
		childAge, err := valJSON(rt.ChildAgePricing, len(rt.ChildAgePricing) == 0)
		if err != nil {
			return err
		}
		occP, err := valJSON(rt.OccupancyPricing, len(rt.OccupancyPricing) == 0)
		if err != nil {
			return err
		}
		values = append(values, rateRowPlaceholder)
		args = append(args,
			rt.HotelID, rt.RoomTypeID, rt.MealPlanID, rt.MarketID, valDate(rt.Date),
			rt.Currency, string(rt.PricingType), mult,
			rt.PricePerNight, rt.SingleSupplement, rt.ExtraAdult, rt.ExtraChild, rt.ExtraInfant,
			childOrder, childAge, occP,
			rt.Allotment, rt.MinStay, rt.MaxStay, rt.StopSale, rt.SingleStop, rt.ReleaseDays,
			rt.ClosedToArrival, rt.ClosedToDeparture,
		)
	}
	sqlStr := insertRatesPrefix + strings.Join(values, ",") + insertRatesOnDup
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// ---- domain.AllotmentStore ----

func (r *Repo) IncrementSold(ctx context.Context, key domain.RateKey, date time.Time, rooms int) (domain.Rate, error) {
	return r.moveSold(ctx, "increment_sold", incrementSoldSQL, key, date, true,
		rooms, key.HotelID, key.RoomTypeID, key.MealPlanID, key.MarketID, valDate(date), rooms)
}

func (r *Repo) DecrementSold(ctx context.Context, key domain.RateKey, date time.Time, rooms int) (domain.Rate, error) {
	return r.moveSold(ctx, "decrement_sold", decrementSoldSQL, key, date, false,
		rooms, key.HotelID, key.RoomTypeID, key.MealPlanID, key.MarketID, valDate(date))
}

// moveSold applies a sold update and reads the row back in the same
// transaction, so the returned rate is exactly the state it produced.
// conditional marks updates that match nothing when allotment is short.
func (r *Repo) moveSold(ctx context.Context, op, query string, key domain.RateKey, date time.Time, conditional bool, args ...any) (rt domain.Rate, err error) {
	start := time.Now()
	defer func() {
		// business rejections are not storage failures
		if errors.Is(err, domain.ErrInsufficientAllotment) || errors.Is(err, domain.ErrRateNotFound) {
			observe(op, start, nil)
			return
		}
		observe(op, start, err)
	}()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Rate{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.Rate{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Rate{}, err
	}
	rt, err = scanRate(tx.QueryRowContext(ctx, getRateSQL,
		key.HotelID, key.RoomTypeID, key.MealPlanID, key.MarketID, valDate(date)))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Rate{}, domain.ErrRateNotFound
	}
	if err != nil {
		return domain.Rate{}, err
	}
	// a decrement already at zero changes no rows and is still a success
	if n == 0 && conditional {
		return rt, fmt.Errorf("%w: %d available", domain.ErrInsufficientAllotment, rt.Available())
	}
	if err := tx.Commit(); err != nil {
		return domain.Rate{}, err
	}
	return rt, nil
}
