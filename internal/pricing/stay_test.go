package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_rates/internal/domain"
)

func stayInput() StayInput {
	return StayInput{
		Hotel:    domain.Hotel{ID: 1, Currency: "EUR"},
		RoomType: doubleRoom(),
		Market: domain.Market{
			ID: 1000, HotelID: 1, Currency: "EUR",
			Sales: domain.SalesSettings{Mode: domain.ModeNet, MarkupRate: 10},
		},
		Rates:       unitRates(day(2026, 7, 1), 3, 100),
		CheckIn:     day(2026, 7, 1),
		CheckOut:    day(2026, 7, 4),
		Adults:      2,
		BookingDate: day(2026, 6, 1),
	}
}

func TestQuoteStay_Basic(t *testing.T) {
	q, err := QuoteStay(stayInput())
	require.NoError(t, err)

	assert.True(t, q.Success)
	assert.True(t, q.IsAvailable)
	assert.Equal(t, 3, q.Nights)
	assert.Equal(t, "EUR", q.Currency)
	assert.Equal(t, 300.0, q.FinalTotal)
	assert.Equal(t, 300.0, q.OriginalTotal)
	assert.Zero(t, q.TotalDiscount)
	assert.Equal(t, 330.0, q.Tiers.B2CPrice)
	assert.Equal(t, domain.ModeNet, q.Tiers.Mode)
	assert.Empty(t, q.Issues)
}

func TestQuoteStay_SeasonsMixWorkingModes(t *testing.T) {
	in := stayInput()
	in.Seasons = []domain.Season{
		{ID: 1, Code: "LOW", Priority: 1, Ranges: []domain.DateRange{{Start: day(2026, 1, 1), End: day(2026, 12, 31)}}},
		{
			ID: 2, Code: "HIGH", Priority: 5,
			Ranges: []domain.DateRange{{Start: day(2026, 7, 3), End: day(2026, 7, 10)}},
			Sales:  domain.SalesOverride{Use: true, Settings: domain.SalesSettings{Mode: domain.ModeCommission, CommissionRate: 20}},
		},
	}

	q, err := QuoteStay(in)
	require.NoError(t, err)

	assert.Equal(t, "LOW", q.DailyBreakdown[0].SeasonCode)
	assert.Equal(t, "HIGH", q.DailyBreakdown[2].SeasonCode)
	assert.True(t, q.Tiers.HasMultipleWorkingModes)
	assert.Equal(t, 280.0, q.Tiers.HotelCost)
	assert.Equal(t, 320.0, q.Tiers.B2CPrice)
	assert.Equal(t, TierPrice{HotelCost: 80, B2CPrice: 100, B2BPrice: 100}, q.DailyBreakdown[2].Tier)
}

func TestQuoteStay_MissingNightIsAnIssue(t *testing.T) {
	in := stayInput()
	in.Rates = []domain.Rate{in.Rates[0], in.Rates[2]}

	q, err := QuoteStay(in)
	require.NoError(t, err)
	assert.True(t, q.Success)
	assert.False(t, q.IsAvailable)
	assert.Equal(t, 200.0, q.FinalTotal)
	require.Len(t, q.Issues, 1)
	assert.Equal(t, IssueNoRate, q.Issues[0].Code)
	assert.Equal(t, day(2026, 7, 2), q.Issues[0].Date)
}

func TestQuoteStay_RestrictionsMakeStayUnavailable(t *testing.T) {
	in := stayInput()
	in.Rates[0].ClosedToArrival = true

	q, err := QuoteStay(in)
	require.NoError(t, err)
	assert.False(t, q.IsAvailable)
	assert.False(t, q.DailyBreakdown[0].IsAvailable)
	assert.True(t, q.DailyBreakdown[1].IsAvailable)
	require.Len(t, q.Issues, 1)
	assert.Equal(t, string(RestrictionClosedToArrival), q.Issues[0].Code)
	// best-effort price is still reported
	assert.Equal(t, 300.0, q.FinalTotal)
}

func TestQuoteStay_ClosedToDepartureUsesLastNight(t *testing.T) {
	in := stayInput()
	// a rate also exists for the departure day itself
	in.Rates = unitRates(day(2026, 7, 1), 4, 100)
	in.Rates[3].ClosedToDeparture = true

	q, err := QuoteStay(in)
	require.NoError(t, err)
	assert.True(t, q.IsAvailable, "the departure day's rate is not consulted")
	assert.Equal(t, 300.0, q.FinalTotal)

	in.Rates[2].ClosedToDeparture = true
	q, err = QuoteStay(in)
	require.NoError(t, err)
	assert.False(t, q.IsAvailable)
	require.Len(t, q.Issues, 1)
	assert.Equal(t, string(RestrictionClosedToDeparture), q.Issues[0].Code)
	assert.True(t, q.Issues[0].Date.Equal(day(2026, 7, 3)))
}

func TestQuoteStay_BusinessFailures(t *testing.T) {
	t.Run("below min adults", func(t *testing.T) {
		in := stayInput()
		in.RoomType.Occupancy.MinAdults = 2
		in.Adults = 1
		q, err := QuoteStay(in)
		require.NoError(t, err)
		assert.False(t, q.Success)
		require.NotNil(t, q.Failure)
		assert.Equal(t, FailureBelowMinAdults, q.Failure.Code)
	})

	t.Run("teenager counts toward min adults", func(t *testing.T) {
		in := stayInput()
		in.RoomType.Occupancy.MinAdults = 2
		in.Adults = 1
		in.Children = []Child{{Age: 16}}
		q, err := QuoteStay(in)
		require.NoError(t, err)
		assert.True(t, q.Success)
		assert.Equal(t, 2, q.Adults)
	})

	t.Run("infant capacity", func(t *testing.T) {
		in := stayInput()
		in.RoomType.Occupancy.MaxInfants = 1
		in.Children = []Child{{Age: 0}, {Age: 1}}
		q, err := QuoteStay(in)
		require.NoError(t, err)
		require.NotNil(t, q.Failure)
		assert.Equal(t, FailureInfantCapacityExceeded, q.Failure.Code)
	})
}

func TestQuoteStay_Errors(t *testing.T) {
	in := stayInput()
	in.CheckOut = in.CheckIn
	_, err := QuoteStay(in)
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	in = stayInput()
	in.Adults = 4
	_, err = QuoteStay(in)
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

	in = stayInput()
	in.Adults = 0
	_, err = QuoteStay(in)
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestQuoteStay_Campaigns(t *testing.T) {
	in := stayInput()
	in.Campaigns = []domain.Campaign{percentCampaign(1, 10, true, 0, 1)}

	q, err := QuoteStay(in)
	require.NoError(t, err)
	assert.Equal(t, 300.0, q.FinalTotal, "campaigns ignored unless included")

	in.IncludeCampaigns = true
	q, err = QuoteStay(in)
	require.NoError(t, err)
	assert.Equal(t, 300.0, q.OriginalTotal)
	assert.Equal(t, 270.0, q.FinalTotal)
	assert.Equal(t, 30.0, q.TotalDiscount)
	require.Len(t, q.AppliedCampaigns, 1)
	// tiers follow the discounted price
	assert.Equal(t, 297.0, q.Tiers.B2CPrice)
}
