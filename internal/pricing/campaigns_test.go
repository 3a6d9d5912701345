package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_rates/internal/domain"
)

func percentCampaign(id int64, pct float64, combinable bool, priority, order int) domain.Campaign {
	return domain.Campaign{
		ID: id, Code: "C" + string(rune('A'+id)), Name: "Campaign", Status: domain.CampaignActive,
		Discount:         domain.CampaignDiscount{Type: domain.DiscountPercentage, Value: pct},
		Combinable:       combinable,
		Priority:         priority,
		CalculationOrder: order,
		CalculationType:  domain.CalcCumulative,
		ApplicationType:  domain.ApplyOnStay,
	}
}

func TestApplyCampaigns_EmptyIsIdentity(t *testing.T) {
	nights := nightsAt(day(2026, 7, 1), 100, 120, 90)
	res := ApplyCampaigns(nil, nights, CampaignOptions{CheckInDate: day(2026, 7, 1)})

	assert.Equal(t, res.OriginalTotal, res.FinalTotal)
	assert.Equal(t, 310.0, res.FinalTotal)
	assert.Zero(t, res.TotalDiscount)
	assert.Empty(t, res.AppliedCampaigns)
}

func TestApplyCampaigns_NonCombinableWinsAlone(t *testing.T) {
	nights := nightsAt(day(2026, 7, 1), 100, 100)
	campaigns := []domain.Campaign{
		percentCampaign(1, 10, true, 1, 1),
		percentCampaign(2, 20, true, 2, 2),
		percentCampaign(3, 15, false, 5, 3),
	}
	res := ApplyCampaigns(campaigns, nights, CampaignOptions{CheckInDate: day(2026, 7, 1)})

	require.Len(t, res.AppliedCampaigns, 1)
	assert.Equal(t, int64(3), res.AppliedCampaigns[0].ID)
	assert.Equal(t, 30.0, res.TotalDiscount)
	assert.Equal(t, 170.0, res.FinalTotal)
	for _, n := range res.DailyBreakdown {
		require.Len(t, n.Discounts, 1)
		assert.Equal(t, 15.0, n.Discounts[0].Amount)
	}
	// input is not modified
	assert.Equal(t, 100.0, nights[0].Price)
	assert.Empty(t, nights[0].Discounts)
}

func TestApplyCampaigns_CumulativeVsSequential(t *testing.T) {
	cumulative := []domain.Campaign{percentCampaign(1, 10, true, 0, 1), percentCampaign(2, 10, true, 0, 2)}
	res := ApplyCampaigns(cumulative, nightsAt(day(2026, 7, 1), 100), CampaignOptions{CheckInDate: day(2026, 7, 1)})
	assert.Equal(t, 80.0, res.FinalTotal)

	sequential := []domain.Campaign{percentCampaign(1, 10, true, 0, 1), percentCampaign(2, 10, true, 0, 2)}
	for i := range sequential {
		sequential[i].CalculationType = domain.CalcSequential
	}
	res = ApplyCampaigns(sequential, nightsAt(day(2026, 7, 1), 100), CampaignOptions{CheckInDate: day(2026, 7, 1)})
	assert.Equal(t, 81.0, res.FinalTotal)
	require.Len(t, res.AppliedCampaigns, 2)
	assert.Equal(t, 10.0, res.AppliedCampaigns[0].TotalDiscount)
	assert.Equal(t, 9.0, res.AppliedCampaigns[1].TotalDiscount)
}

func TestApplyCampaigns_CalculationOrder(t *testing.T) {
	fixed := domain.Campaign{
		ID: 9, Code: "FIX", Name: "Fixed", Status: domain.CampaignActive, Combinable: true, CalculationOrder: 1,
		Discount: domain.CampaignDiscount{Type: domain.DiscountFixed, Value: 50}, CalculationType: domain.CalcSequential,
	}
	pct := percentCampaign(1, 50, true, 0, 2)
	pct.CalculationType = domain.CalcSequential

	res := ApplyCampaigns([]domain.Campaign{pct, fixed}, nightsAt(day(2026, 7, 1), 100), CampaignOptions{CheckInDate: day(2026, 7, 1)})
	require.Len(t, res.AppliedCampaigns, 2)
	assert.Equal(t, "FIX", res.AppliedCampaigns[0].Code)
	// 100 - 50 = 50, then 50% of 50
	assert.Equal(t, 25.0, res.FinalTotal)
}

func TestApplyCampaigns_FixedIsCappedAtNightPrice(t *testing.T) {
	c := domain.Campaign{
		ID: 1, Code: "FIX", Name: "Fixed", Status: domain.CampaignActive, Combinable: true,
		Discount: domain.CampaignDiscount{Type: domain.DiscountFixed, Value: 50},
	}
	res := ApplyCampaigns([]domain.Campaign{c}, nightsAt(day(2026, 7, 1), 30, 80), CampaignOptions{CheckInDate: day(2026, 7, 1)})
	assert.Equal(t, 0.0, res.DailyBreakdown[0].Price)
	assert.Equal(t, 30.0, res.DailyBreakdown[1].Price)
	assert.Equal(t, 80.0, res.TotalDiscount)
}

func TestApplyCampaigns_FreeNights(t *testing.T) {
	c := domain.Campaign{
		ID: 1, Code: "7FOR6", Name: "Stay 7", Status: domain.CampaignActive, Combinable: true,
		Discount: domain.CampaignDiscount{Type: domain.DiscountFreeNights, StayNights: 7, FreeNights: 1},
	}

	t.Run("seven nights zero the cheapest", func(t *testing.T) {
		nights := nightsAt(day(2026, 7, 1), 120, 110, 100, 95, 130, 140, 150)
		res := ApplyCampaigns([]domain.Campaign{c}, nights, CampaignOptions{CheckInDate: day(2026, 7, 1)})
		zeroed := 0
		for i, n := range res.DailyBreakdown {
			if n.Price == 0 {
				zeroed++
				assert.Equal(t, 3, i)
			}
		}
		assert.Equal(t, 1, zeroed)
		assert.Equal(t, 95.0, res.TotalDiscount)
		require.Len(t, res.AppliedCampaigns, 1)
		assert.Equal(t, "Stay 7: stay 7, pay 6", res.AppliedCampaigns[0].Text)
	})

	t.Run("six nights get nothing", func(t *testing.T) {
		nights := nightsAt(day(2026, 7, 1), 120, 110, 100, 95, 130, 140)
		res := ApplyCampaigns([]domain.Campaign{c}, nights, CampaignOptions{CheckInDate: day(2026, 7, 1)})
		assert.Zero(t, res.TotalDiscount)
		assert.Empty(t, res.AppliedCampaigns)
	})
}

func TestApplyCampaigns_ApplicationType(t *testing.T) {
	window := domain.DateRange{Start: day(2026, 7, 1), End: day(2026, 7, 1)}
	stay := percentCampaign(1, 10, true, 0, 1)
	stay.StayWindow = window
	checkin := stay
	checkin.ApplicationType = domain.ApplyOnCheckIn

	nights := nightsAt(day(2026, 7, 1), 100, 100, 100)

	res := ApplyCampaigns([]domain.Campaign{stay}, nights, CampaignOptions{CheckInDate: day(2026, 7, 1)})
	assert.Equal(t, 10.0, res.TotalDiscount)

	res = ApplyCampaigns([]domain.Campaign{checkin}, nights, CampaignOptions{CheckInDate: day(2026, 7, 1)})
	assert.Equal(t, 30.0, res.TotalDiscount)

	later := nightsAt(day(2026, 6, 30), 100, 100, 100)
	res = ApplyCampaigns([]domain.Campaign{checkin}, later, CampaignOptions{CheckInDate: day(2026, 6, 30)})
	assert.Zero(t, res.TotalDiscount)
}

func TestApplyCampaigns_WeekdayMaskAndUnavailableNights(t *testing.T) {
	c := percentCampaign(1, 50, true, 0, 1)
	// 2026-07-01 is a Wednesday
	c.Conditions.Weekdays = []time.Weekday{time.Thursday, time.Friday}

	nights := nightsAt(day(2026, 7, 1), 100, 100, 100)
	nights[2].IsAvailable = false
	res := ApplyCampaigns([]domain.Campaign{c}, nights, CampaignOptions{CheckInDate: day(2026, 7, 1)})

	assert.Equal(t, 100.0, res.DailyBreakdown[0].Price)
	assert.Equal(t, 50.0, res.DailyBreakdown[1].Price)
	assert.Equal(t, 100.0, res.DailyBreakdown[2].Price)
}

func TestFilterCampaigns(t *testing.T) {
	base := domain.Campaign{
		Status:        domain.CampaignActive,
		BookingWindow: domain.DateRange{Start: day(2026, 1, 1), End: day(2026, 6, 30)},
		StayWindow:    domain.DateRange{Start: day(2026, 7, 1), End: day(2026, 8, 31)},
		Discount:      domain.CampaignDiscount{Type: domain.DiscountPercentage, Value: 10},
	}
	cr := CampaignCriteria{
		BookingDate: day(2026, 5, 1),
		CheckIn:     day(2026, 7, 10),
		CheckOut:    day(2026, 7, 14),
		RoomTypeID:  10, MarketID: 1000, MealPlanID: 100,
	}

	mk := func(id int64, mut func(*domain.Campaign)) domain.Campaign {
		c := base
		c.ID = id
		mut(&c)
		return c
	}
	all := []domain.Campaign{
		mk(1, func(c *domain.Campaign) {}),
		mk(2, func(c *domain.Campaign) { c.Status = "inactive" }),
		mk(3, func(c *domain.Campaign) { c.BookingWindow.End = day(2026, 4, 30) }),
		mk(4, func(c *domain.Campaign) { c.StayWindow = domain.DateRange{Start: day(2026, 9, 1), End: day(2026, 9, 30)} }),
		mk(5, func(c *domain.Campaign) { c.Conditions.MinNights = 5 }),
		mk(6, func(c *domain.Campaign) { c.Conditions.MaxNights = 3 }),
		mk(7, func(c *domain.Campaign) { c.Conditions.MinAdvanceDays = 60 }),
		mk(8, func(c *domain.Campaign) { c.Conditions.MaxAdvanceDays = 30 }),
		mk(9, func(c *domain.Campaign) { c.Conditions.RoomTypeIDs = []int64{11} }),
		mk(10, func(c *domain.Campaign) { c.Conditions.MarketIDs = []int64{1000, 2000} }),
		mk(11, func(c *domain.Campaign) { c.PromoCode = "SUMMER" }),
		mk(12, func(c *domain.Campaign) { c.Conditions.MealPlanIDs = []int64{101} }),
	}

	ids := func(cs []domain.Campaign) []int64 {
		out := []int64{}
		for _, c := range cs {
			out = append(out, c.ID)
		}
		return out
	}

	assert.Equal(t, []int64{1, 7, 10}, ids(FilterCampaigns(all, cr)))

	cr.PromoCode = "summer"
	assert.Equal(t, []int64{1, 7, 10, 11}, ids(FilterCampaigns(all, cr)))
}
