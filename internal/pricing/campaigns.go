package pricing

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"hotel_rates/internal/domain"
)

// AppliedDiscount is one campaign's discount on one night.
type AppliedDiscount struct {
	CampaignID int64   `json:"campaignId"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
}

type AppliedCampaign struct {
	ID             int64               `json:"id"`
	Code           string              `json:"code"`
	Name           string              `json:"name"`
	DiscountType   domain.DiscountType `json:"discountType"`
	NightsAffected int                 `json:"nightsAffected"`
	TotalDiscount  float64             `json:"totalDiscount"`
	Text           string              `json:"text"`
}

type CampaignOptions struct {
	CheckInDate time.Time
}

type CampaignResult struct {
	DailyBreakdown   []NightPrice      `json:"dailyBreakdown"`
	AppliedCampaigns []AppliedCampaign `json:"appliedCampaigns"`
	TotalDiscount    float64           `json:"totalDiscount"`
	OriginalTotal    float64           `json:"originalTotal"`
	FinalTotal       float64           `json:"finalTotal"`
}

// ApplyCampaigns discounts a daily breakdown. The incoming Price of each night
// is taken as its pre-discount price; the input slice is not modified.
// A non-combinable campaign wins alone (highest priority); otherwise every
// combinable campaign applies in calculationOrder.
func ApplyCampaigns(campaigns []domain.Campaign, daily []NightPrice, opts CampaignOptions) CampaignResult {
	nights := make([]NightPrice, len(daily))
	original := make([]float64, len(daily))
	for i, n := range daily {
		n.Discounts = append([]AppliedDiscount(nil), n.Discounts...)
		n.OriginalPrice = n.Price
		nights[i] = n
		original[i] = n.Price
	}

	res := CampaignResult{DailyBreakdown: nights, AppliedCampaigns: []AppliedCampaign{}}
	for _, c := range SelectCampaigns(campaigns) {
		if applied, ok := applyCampaign(c, nights, original, opts.CheckInDate); ok {
			res.AppliedCampaigns = append(res.AppliedCampaigns, applied)
		}
	}

	for i := range nights {
		res.OriginalTotal += original[i]
		res.FinalTotal += nights[i].Price
	}
	res.OriginalTotal = round2(res.OriginalTotal)
	res.FinalTotal = round2(res.FinalTotal)
	res.TotalDiscount = round2(res.OriginalTotal - res.FinalTotal)
	return res
}

// SelectCampaigns returns the campaigns to apply, in application order.
func SelectCampaigns(campaigns []domain.Campaign) []domain.Campaign {
	var exclusive *domain.Campaign
	var combinable []domain.Campaign
	for i := range campaigns {
		c := campaigns[i]
		if c.Combinable {
			combinable = append(combinable, c)
			continue
		}
		if exclusive == nil || c.Priority > exclusive.Priority || (c.Priority == exclusive.Priority && c.ID < exclusive.ID) {
			exclusive = &c
		}
	}
	if exclusive != nil {
		return []domain.Campaign{*exclusive}
	}
	sort.SliceStable(combinable, func(i, j int) bool {
		if combinable[i].CalculationOrder != combinable[j].CalculationOrder {
			return combinable[i].CalculationOrder < combinable[j].CalculationOrder
		}
		return combinable[i].Priority > combinable[j].Priority
	})
	return combinable
}

func applyCampaign(c domain.Campaign, nights []NightPrice, original []float64, checkIn time.Time) (AppliedCampaign, bool) {
	eligible := eligibleNights(c, nights, checkIn)
	amounts := make(map[int]float64, len(eligible))

	switch c.Discount.Type {
	case domain.DiscountPercentage:
		for _, i := range eligible {
			basis := nights[i].Price
			if c.CalculationType != domain.CalcSequential {
				basis = original[i]
			}
			amounts[i] = round2(basis * c.Discount.Value / 100)
		}
	case domain.DiscountFixed:
		for _, i := range eligible {
			amounts[i] = c.Discount.Value
		}
	case domain.DiscountFreeNights:
		threshold := c.Discount.StayNights
		if threshold < 1 {
			threshold = c.Discount.FreeNights + 1
		}
		if c.Discount.FreeNights < 1 || len(eligible) < threshold {
			break
		}
		cheapest := append([]int(nil), eligible...)
		sort.SliceStable(cheapest, func(a, b int) bool { return nights[cheapest[a]].Price < nights[cheapest[b]].Price })
		for _, i := range cheapest[:min(c.Discount.FreeNights, len(cheapest))] {
			amounts[i] = nights[i].Price
		}
	}

	applied := AppliedCampaign{ID: c.ID, Code: c.Code, Name: c.Name, DiscountType: c.Discount.Type}
	for _, i := range eligible {
		amt, ok := amounts[i]
		if !ok || amt <= 0 {
			continue
		}
		if amt > nights[i].Price {
			amt = nights[i].Price
		}
		if amt <= 0 {
			continue
		}
		nights[i].Price = round2(nights[i].Price - amt)
		nights[i].Discounts = append(nights[i].Discounts, AppliedDiscount{CampaignID: c.ID, Code: c.Code, Name: c.Name, Amount: amt})
		applied.NightsAffected++
		applied.TotalDiscount += amt
	}
	if applied.NightsAffected == 0 {
		return AppliedCampaign{}, false
	}
	applied.TotalDiscount = round2(applied.TotalDiscount)
	applied.Text = discountText(c, applied.NightsAffected)
	return applied, true
}

// eligibleNights lists the indexes of available nights the campaign covers.
func eligibleNights(c domain.Campaign, nights []NightPrice, checkIn time.Time) []int {
	inWindow := func(d time.Time) bool { return c.StayWindow.IsZero() || c.StayWindow.Contains(d) }
	checkInOK := inWindow(checkIn)

	var out []int
	for i, n := range nights {
		if !n.IsAvailable || n.Price <= 0 {
			continue
		}
		if c.ApplicationType == domain.ApplyOnCheckIn {
			if !checkInOK {
				return nil
			}
		} else if !inWindow(n.Date) {
			continue
		}
		if !c.AllowsWeekday(n.Date.Weekday()) {
			continue
		}
		out = append(out, i)
	}
	return out
}

func discountText(c domain.Campaign, nights int) string {
	switch c.Discount.Type {
	case domain.DiscountPercentage:
		return fmt.Sprintf("%s: %g%% off %s", c.Name, c.Discount.Value, pluralNights(nights))
	case domain.DiscountFixed:
		return fmt.Sprintf("%s: %.2f off per night, %s", c.Name, c.Discount.Value, pluralNights(nights))
	case domain.DiscountFreeNights:
		stay := c.Discount.StayNights
		return fmt.Sprintf("%s: stay %d, pay %d", c.Name, stay, stay-c.Discount.FreeNights)
	}
	return c.Name
}

func pluralNights(n int) string {
	if n == 1 {
		return "1 night"
	}
	return fmt.Sprintf("%d nights", n)
}

// CampaignCriteria is what a stay offers a campaign to match against.
type CampaignCriteria struct {
	BookingDate time.Time
	CheckIn     time.Time
	CheckOut    time.Time
	RoomTypeID  int64
	MarketID    int64
	MealPlanID  int64
	PromoCode   string
}

// FilterCampaigns keeps campaigns whose status, windows and attribute filters
// match the stay. Nightly eligibility is decided later by ApplyCampaigns.
func FilterCampaigns(campaigns []domain.Campaign, cr CampaignCriteria) []domain.Campaign {
	nights := len(domain.Nights(cr.CheckIn, cr.CheckOut))
	lastNight := domain.Day(cr.CheckOut).AddDate(0, 0, -1)
	advance := int(domain.Day(cr.CheckIn).Sub(domain.Day(cr.BookingDate)).Hours() / 24)

	var out []domain.Campaign
	for _, c := range campaigns {
		cond := c.Conditions
		switch {
		case c.Status != domain.CampaignActive:
		case !c.BookingWindow.IsZero() && !c.BookingWindow.Contains(cr.BookingDate):
		case !c.StayWindow.IsZero() && !c.StayWindow.Overlaps(cr.CheckIn, lastNight):
		case cond.MinNights > 0 && nights < cond.MinNights:
		case cond.MaxNights > 0 && nights > cond.MaxNights:
		case cond.MinAdvanceDays > 0 && advance < cond.MinAdvanceDays:
		case cond.MaxAdvanceDays > 0 && advance > cond.MaxAdvanceDays:
		case !matchesID(cond.RoomTypeIDs, cr.RoomTypeID):
		case !matchesID(cond.MarketIDs, cr.MarketID):
		case !matchesID(cond.MealPlanIDs, cr.MealPlanID):
		case c.PromoCode != "" && !strings.EqualFold(c.PromoCode, cr.PromoCode):
		default:
			out = append(out, c)
		}
	}
	return out
}

func matchesID(ids []int64, id int64) bool {
	if len(ids) == 0 {
		return true
	}
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
