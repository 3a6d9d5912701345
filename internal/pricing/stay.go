package pricing

import (
	"fmt"
	"time"

	"hotel_rates/internal/domain"
)

// NightPrice is one night of a stay as it moves through pricing, campaigns
// and tiers.
type NightPrice struct {
	Date          time.Time             `json:"date"`
	SeasonID      int64                 `json:"seasonId,omitempty"`
	SeasonCode    string                `json:"seasonCode,omitempty"`
	PricingType   domain.PricingType    `json:"pricingType,omitempty"`
	Mode          domain.CommercialMode `json:"mode,omitempty"`
	Sales         domain.SalesSettings  `json:"-"`
	OriginalPrice float64               `json:"originalPrice"`
	Price         float64               `json:"price"`
	Discounts     []AppliedDiscount     `json:"discounts,omitempty"`
	Breakdown     []LineItem            `json:"breakdown,omitempty"`
	IsAvailable   bool                  `json:"isAvailable"`
	Restrictions  []Restriction         `json:"restrictions,omitempty"`
	Tier          TierPrice             `json:"tier"`
}

type FailureCode string

const (
	FailureBelowMinAdults         FailureCode = "BELOW_MIN_ADULTS"
	FailureInfantCapacityExceeded FailureCode = "INFANT_CAPACITY_EXCEEDED"
)

// Failure is a business rejection of the whole stay, returned as data.
type Failure struct {
	Code    FailureCode `json:"code"`
	Message string      `json:"message"`
}

const IssueNoRate = "NO_RATE"

// Issue is a per-night problem reported alongside a best-effort price.
type Issue struct {
	Date    time.Time `json:"date"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

type StayInput struct {
	Hotel    domain.Hotel
	RoomType domain.RoomType
	Market   domain.Market
	Seasons  []domain.Season
	Rates    []domain.Rate
	// Campaigns are the already-filtered candidates.
	Campaigns        []domain.Campaign
	IncludeCampaigns bool

	CheckIn     time.Time
	CheckOut    time.Time
	Adults      int
	Children    []Child
	BookingDate time.Time
}

type StayQuote struct {
	Success          bool               `json:"success"`
	Failure          *Failure           `json:"failure,omitempty"`
	PricingType      domain.PricingType `json:"pricingType,omitempty"`
	Currency         string             `json:"currency,omitempty"`
	Nights           int                `json:"nights"`
	Adults           int                `json:"adults"`
	Children         []Child            `json:"children,omitempty"`
	IsAvailable      bool               `json:"isAvailable"`
	DailyBreakdown   []NightPrice       `json:"dailyBreakdown,omitempty"`
	AppliedCampaigns []AppliedCampaign  `json:"appliedCampaigns,omitempty"`
	OriginalTotal    float64            `json:"originalTotal"`
	TotalDiscount    float64            `json:"totalDiscount"`
	FinalTotal       float64            `json:"finalTotal"`
	Tiers            TierSummary        `json:"tiers"`
	Issues           []Issue            `json:"issues,omitempty"`
}

// QuoteStay runs the full nightly pipeline for one room over a stay.
// Malformed input and capacity violations are errors; business rejections
// come back as a Failure, per-night problems as Issues.
func QuoteStay(in StayInput) (StayQuote, error) {
	nights := domain.Nights(in.CheckIn, in.CheckOut)
	if len(nights) == 0 {
		return StayQuote{}, fmt.Errorf("%w: check-out %s must be after check-in %s",
			domain.ErrInvalidDateRange, in.CheckOut.Format(time.DateOnly), in.CheckIn.Format(time.DateOnly))
	}
	if in.Adults < 1 {
		return StayQuote{}, fmt.Errorf("%w: at least one adult required", domain.ErrInvalidQuery)
	}

	rates := make(map[time.Time]*domain.Rate, len(in.Rates))
	for i := range in.Rates {
		rates[domain.Day(in.Rates[i].Date)] = &in.Rates[i]
	}
	scopeFor := func(d time.Time) Scope {
		sc := Scope{Hotel: &in.Hotel, RoomType: &in.RoomType, Market: &in.Market}
		if s, ok := domain.SeasonFor(in.Seasons, d); ok {
			sc.Season = s
		}
		return sc
	}

	first := ResolveEffectiveSettings(scopeFor(nights[0]), rates[nights[0]])
	adults, children := EffectiveGuests(in.Adults, in.Children, first.ChildAgeGroups)
	out := StayQuote{
		PricingType: first.PricingType,
		Currency:    currency(in),
		Nights:      len(nights),
		Adults:      adults,
		Children:    children,
	}
	if adults < first.MinAdults {
		out.Failure = &Failure{
			Code:    FailureBelowMinAdults,
			Message: fmt.Sprintf("room requires at least %d adults, got %d", first.MinAdults, adults),
		}
		return out, nil
	}
	if maxInfants := in.RoomType.Occupancy.MaxInfants; maxInfants > 0 {
		if n := countInfants(children, first.ChildAgeGroups); n > maxInfants {
			out.Failure = &Failure{
				Code:    FailureInfantCapacityExceeded,
				Message: fmt.Sprintf("room accepts at most %d infants, got %d", maxInfants, n),
			}
			return out, nil
		}
	}

	daily := make([]NightPrice, 0, len(nights))
	for i, d := range nights {
		sc := scopeFor(d)
		night := NightPrice{Date: d}
		if sc.Season != nil {
			night.SeasonID, night.SeasonCode = sc.Season.ID, sc.Season.Code
		}
		rate, ok := rates[d]
		if !ok {
			st := ResolveEffectiveSettings(sc, nil)
			night.Sales, night.Mode = st.Sales, st.Sales.Mode
			out.Issues = append(out.Issues, Issue{Date: d, Code: IssueNoRate, Message: "no rate loaded for this night"})
			daily = append(daily, night)
			continue
		}

		st := ResolveEffectiveSettings(sc, rate)
		night.PricingType, night.Sales, night.Mode = st.PricingType, st.Sales, st.Sales.Mode
		priced, err := priceWithSettings(rate, OccupancyRequest{Adults: in.Adults, Children: in.Children, Nights: 1}, in.RoomType.Occupancy, st)
		if err != nil {
			return StayQuote{}, fmt.Errorf("night %s: %w", d.Format(time.DateOnly), err)
		}
		night.Price = priced.TotalPerNight
		night.OriginalPrice = priced.TotalPerNight
		night.Breakdown = priced.Breakdown
		if !priced.IsAvailable {
			out.Issues = append(out.Issues, Issue{Date: d, Code: priced.Reason, Message: "occupancy not sellable on this night"})
		}

		check := CheckRestrictions(rate, RestrictionContext{
			Adults:      priced.Adults,
			BookingDate: in.BookingDate,
			IsCheckIn:   i == 0,
			IsCheckOut:  i == len(nights)-1,
			MinAdults:   st.MinAdults,
			StayNights:  len(nights),
		})
		night.Restrictions = check.Restrictions
		for _, r := range check.Restrictions {
			out.Issues = append(out.Issues, Issue{Date: d, Code: string(r.Code), Message: r.Message})
		}
		night.IsAvailable = priced.IsAvailable && check.IsBookable
		daily = append(daily, night)
	}

	if in.IncludeCampaigns && len(in.Campaigns) > 0 {
		res := ApplyCampaigns(in.Campaigns, daily, CampaignOptions{CheckInDate: nights[0]})
		daily = res.DailyBreakdown
		out.AppliedCampaigns = res.AppliedCampaigns
	}

	out.IsAvailable = true
	for i := range daily {
		daily[i].Tier = CalculateTierPricing(daily[i].Price, daily[i].Sales)
		out.OriginalTotal += daily[i].OriginalPrice
		out.FinalTotal += daily[i].Price
		if !daily[i].IsAvailable {
			out.IsAvailable = false
		}
	}
	out.OriginalTotal = round2(out.OriginalTotal)
	out.FinalTotal = round2(out.FinalTotal)
	out.TotalDiscount = round2(out.OriginalTotal - out.FinalTotal)
	out.DailyBreakdown = daily
	out.Tiers = SummarizeTiers(daily)
	out.Success = true
	return out, nil
}

func countInfants(children []Child, groups []domain.AgeGroup) int {
	n := 0
	for _, c := range children {
		if AgeGroupFor(groups, c.Age) == domain.AgeGroupInfant {
			n++
		}
	}
	return n
}

func currency(in StayInput) string {
	if in.Market.Currency != "" {
		return in.Market.Currency
	}
	return in.Hotel.Currency
}
