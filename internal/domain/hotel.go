package domain

import "time"

// Age group codes used across child pricing and combination keys.
const (
	AgeGroupInfant = "infant"
	AgeGroupChild  = "child"
)

type AgeGroup struct {
	Code   string `json:"code"`
	MinAge int    `json:"minAge"`
	MaxAge int    `json:"maxAge"`
}

// DefaultChildAgeGroups is the fallback when neither season, market nor hotel
// declare their own groups.
var DefaultChildAgeGroups = []AgeGroup{
	{Code: AgeGroupInfant, MinAge: 0, MaxAge: 2},
	{Code: AgeGroupChild, MinAge: 3, MaxAge: 12},
}

type Hotel struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Currency       string     `json:"currency"`
	TaxIncluded    bool       `json:"taxIncluded"`
	ChildAgeGroups []AgeGroup `json:"childAgeGroups,omitempty"`
}

// DateRange is inclusive on both ends, at day granularity.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r DateRange) Contains(d time.Time) bool {
	d = Day(d)
	return !d.Before(Day(r.Start)) && !d.After(Day(r.End))
}

// Overlaps reports whether the range shares at least one day with [from, to].
func (r DateRange) Overlaps(from, to time.Time) bool {
	return !Day(r.Start).After(Day(to)) && !Day(r.End).Before(Day(from))
}

func (r DateRange) IsZero() bool { return r.Start.IsZero() && r.End.IsZero() }

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Nights lists every night of a stay: check-in inclusive, check-out exclusive.
func Nights(checkIn, checkOut time.Time) []time.Time {
	var out []time.Time
	for d := Day(checkIn); d.Before(Day(checkOut)); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}
