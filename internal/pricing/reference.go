package pricing

import (
	"fmt"

	"hotel_rates/internal/domain"
)

// ValidateRoomType checks the room's occupancy limits and its own multiplier
// template, including the active baseline when minAdults <= 2.
func ValidateRoomType(rt domain.RoomType) error {
	if err := rt.Occupancy.Validate(); err != nil {
		return fmt.Errorf("room type %d: %w", rt.ID, err)
	}
	if err := ValidateTemplate(rt.Multipliers, &rt.Occupancy); err != nil {
		return fmt.Errorf("room type %d: %w", rt.ID, err)
	}
	return nil
}

// ValidateRoomOverrides checks market or season override templates against
// the occupancy of the room they target. An override's own minAdults wins
// over the room's. Overrides for rooms that room cannot resolve are only
// checked for factor bounds.
func ValidateRoomOverrides(overrides []domain.RoomOverride, room func(id int64) (domain.RoomType, bool)) error {
	for _, o := range overrides {
		if !o.UseMultipliers {
			continue
		}
		var occ *domain.Occupancy
		if rt, ok := room(o.RoomTypeID); ok {
			eff := rt.Occupancy
			if o.UseMinAdults && o.MinAdults > 0 {
				eff.MinAdults = o.MinAdults
			}
			occ = &eff
		}
		if err := ValidateTemplate(o.Multipliers, occ); err != nil {
			return fmt.Errorf("override for room type %d: %w", o.RoomTypeID, err)
		}
	}
	return nil
}
