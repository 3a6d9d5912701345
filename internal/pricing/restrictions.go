package pricing

import (
	"fmt"
	"time"

	"hotel_rates/internal/domain"
)

type RestrictionCode string

const (
	RestrictionStopSale          RestrictionCode = "STOP_SALE"
	RestrictionMinStay           RestrictionCode = "MIN_STAY"
	RestrictionMaxStay           RestrictionCode = "MAX_STAY"
	RestrictionRelease           RestrictionCode = "RELEASE_DAYS"
	RestrictionClosedToArrival   RestrictionCode = "CLOSED_TO_ARRIVAL"
	RestrictionClosedToDeparture RestrictionCode = "CLOSED_TO_DEPARTURE"
	RestrictionSingleStop        RestrictionCode = "SINGLE_STOP"
	RestrictionMinAdults         RestrictionCode = "MIN_ADULTS"
)

type Restriction struct {
	Code    RestrictionCode `json:"code"`
	Message string          `json:"message"`
}

type RestrictionContext struct {
	Adults      int
	BookingDate time.Time
	IsCheckIn   bool
	// IsCheckOut marks the last night stayed. closedToDeparture is read from
	// that night's rate; the rate dated on the departure day is never loaded.
	IsCheckOut bool
	MinAdults  int
	// StayNights is checked against minStay/maxStay on the check-in night only.
	StayNights int
}

type RestrictionResult struct {
	IsBookable   bool          `json:"isBookable"`
	Restrictions []Restriction `json:"restrictions,omitempty"`
	Messages     []string      `json:"messages,omitempty"`
}

// CheckRestrictions evaluates every restriction of rate independently and
// reports all that block the stay. It never looks at price.
func CheckRestrictions(rate *domain.Rate, c RestrictionContext) RestrictionResult {
	var out []Restriction
	add := func(code RestrictionCode, format string, args ...any) {
		out = append(out, Restriction{Code: code, Message: fmt.Sprintf(format, args...)})
	}
	date := domain.Day(rate.Date)

	if rate.StopSale {
		add(RestrictionStopSale, "%s is on stop sale", date.Format(time.DateOnly))
	}
	if c.IsCheckIn && c.StayNights > 0 {
		if rate.MinStay > 0 && c.StayNights < rate.MinStay {
			add(RestrictionMinStay, "minimum stay is %d nights", rate.MinStay)
		}
		if rate.MaxStay > 0 && c.StayNights > rate.MaxStay {
			add(RestrictionMaxStay, "maximum stay is %d nights", rate.MaxStay)
		}
	}
	if rate.ReleaseDays > 0 && !c.BookingDate.IsZero() {
		cutoff := date.AddDate(0, 0, -rate.ReleaseDays)
		if domain.Day(c.BookingDate).After(cutoff) {
			add(RestrictionRelease, "must be booked by %s (%d release days)", cutoff.Format(time.DateOnly), rate.ReleaseDays)
		}
	}
	if c.IsCheckIn && rate.ClosedToArrival {
		add(RestrictionClosedToArrival, "arrival not allowed on %s", date.Format(time.DateOnly))
	}
	if c.IsCheckOut && rate.ClosedToDeparture {
		add(RestrictionClosedToDeparture, "departure not allowed after %s", date.Format(time.DateOnly))
	}
	if rate.SingleStop && c.Adults == 1 {
		add(RestrictionSingleStop, "single occupancy closed on %s", date.Format(time.DateOnly))
	}
	if c.MinAdults > 0 && c.Adults < c.MinAdults {
		add(RestrictionMinAdults, "at least %d adults required", c.MinAdults)
	}

	res := RestrictionResult{IsBookable: len(out) == 0, Restrictions: out}
	for _, r := range out {
		res.Messages = append(res.Messages, r.Message)
	}
	return res
}
