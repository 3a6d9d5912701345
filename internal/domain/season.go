package domain

import "time"

type SalesOverride struct {
	Use      bool          `json:"use"`
	Settings SalesSettings `json:"settings"`
}

// Season groups dates within a (hotel, market) scope. Overrides left unset
// inherit from the market.
type Season struct {
	ID            int64            `json:"id"`
	HotelID       int64            `json:"hotelId"`
	MarketID      int64            `json:"marketId"`
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	Ranges        []DateRange      `json:"ranges"`
	Priority      int              `json:"priority"`
	RoomOverrides []RoomOverride   `json:"roomOverrides,omitempty"`
	ChildAges     ChildAgeOverride `json:"childAges"`
	Sales         SalesOverride    `json:"sales"`
}

func (s *Season) Covers(d time.Time) bool {
	for _, r := range s.Ranges {
		if r.Contains(d) {
			return true
		}
	}
	return false
}

func (s *Season) RoomOverride(roomTypeID int64) (RoomOverride, bool) {
	if s == nil {
		return RoomOverride{}, false
	}
	return findRoomOverride(s.RoomOverrides, roomTypeID)
}

// SeasonFor picks the highest-priority season covering d. Ties go to the lower ID.
func SeasonFor(seasons []Season, d time.Time) (*Season, bool) {
	var best *Season
	for i := range seasons {
		s := &seasons[i]
		if !s.Covers(d) {
			continue
		}
		if best == nil || s.Priority > best.Priority || (s.Priority == best.Priority && s.ID < best.ID) {
			best = s
		}
	}
	return best, best != nil
}
