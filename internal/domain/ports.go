package domain

import (
	"context"
	"time"
)

// ReferenceRepository reads the operator-authored entities the engine consumes.
type ReferenceRepository interface {
	GetHotel(ctx context.Context, id int64) (Hotel, error)
	GetRoomType(ctx context.Context, id int64) (RoomType, error)
	GetMarket(ctx context.Context, id int64) (Market, error)
	ListSeasons(ctx context.Context, hotelID, marketID int64) ([]Season, error)
	// ListCampaigns returns campaigns whose stay window overlaps [from, to].
	ListCampaigns(ctx context.Context, hotelID int64, from, to time.Time) ([]Campaign, error)
}

type RateRepository interface {
	// ListRates returns the nightly rates of key with from <= date < to.
	ListRates(ctx context.Context, key RateKey, from, to time.Time) ([]Rate, error)
	// UpsertRates writes rates by (key, date) without touching sold.
	UpsertRates(ctx context.Context, rs []Rate) error
}

// AllotmentStore mutates sold counters. Both calls must be atomic per date:
// IncrementSold only succeeds when sold+rooms <= allotment.
type AllotmentStore interface {
	IncrementSold(ctx context.Context, key RateKey, date time.Time, rooms int) (Rate, error)
	DecrementSold(ctx context.Context, key RateKey, date time.Time, rooms int) (Rate, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
