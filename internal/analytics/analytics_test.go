package analytics

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jalai-llc/bundongsan/internal/geo"
	"github.com/jalai-llc/bundongsan/internal/models"
)

func sampleProperty() models.Property {
	return models.Property{
		ID:               "p1",
		Zipcode:          "90012",
		Name:             "Downtown",
		City:             "Los Angeles",
		Region:           "LA County",
		MedianPrice:      500000,
		ExpectedRent:     3000,
		PropertyTaxRate:  1.25,
		AnnualInsurance:  1750,
		VacancyRate:      5,
		MaintenanceRate:  1,
		AppreciationRate: 3,
	}
}

func testProfile() models.FinancialProfile {
	return models.FinancialProfile{
		GrossAnnualIncome: 120000,
		MonthlyDebts:      500,
		SavingsAvailable:  100000,
		CurrentRent:       2500,
		ComfortLevel:      models.ComfortStandard,
	}
}

func TestComputeMetrics(t *testing.T) {
	engine := NewEngine(models.DefaultMarketAssumptions())
	terms := models.DefaultLoanTerms()

	t.Run("Twenty percent down", func(t *testing.T) {
		m := engine.ComputeMetrics(sampleProperty(), terms, testProfile())

		assert.InDelta(t, 100000, m.DownPayment, 1e-6)
		assert.InDelta(t, 400000, m.LoanAmount, 1e-6)
		assert.InDelta(t, 15000, m.ClosingCosts, 1e-6)
		assert.InDelta(t, 115000, m.CashInvested, 1e-6)
		assert.InDelta(t, 100000, m.ProjectionCashInvested, 1e-6)
		assert.InDelta(t, 2594.39, m.PITI.PrincipalInterest, 0.01)
		assert.InDelta(t, 3261.06, m.PITI.Total, 0.01)
		assert.Equal(t, 0.0, m.MortgageInsurance)
		assert.InDelta(t, 0.0424, m.CapRate, 1e-9)
		assert.InDelta(t, -827.73, m.MonthlyCashFlow, 0.01)
		assert.InDelta(t, m.MonthlyCashFlow*12, m.AnnualCashFlow, 1e-9)
		assert.InDelta(t, -0.08637, m.CashOnCash, 1e-5)
		assert.InDelta(t, 500000.0/36000, m.GrossRentMultiplier, 1e-9)
		assert.False(t, m.OnePercentRule.Passes)
		assert.InDelta(t, 0.03, m.AppreciationRate, 1e-12)
		assert.InDelta(t, 0.130435, m.LeveragedAppreciationReturn, 1e-6)
		assert.InDelta(t, m.CashOnCash+m.LeveragedAppreciationReturn, m.TotalAnnualReturn, 1e-12)
	})

	t.Run("Rent versus buy uses the user's rent", func(t *testing.T) {
		m := engine.ComputeMetrics(sampleProperty(), terms, testProfile())
		assert.InDelta(t, 3261.06+500000*0.01/12, m.MonthlyCostOfOwnership, 0.01)
		assert.InDelta(t, m.MonthlyCostOfOwnership-2500, m.RentVsBuyDelta, 1e-9)
	})

	t.Run("Mortgage insurance only above 80 percent LTV", func(t *testing.T) {
		low := terms
		low.DownPaymentPercent = 10
		m := engine.ComputeMetrics(sampleProperty(), low, testProfile())
		assert.InDelta(t, 262.5, m.MortgageInsurance, 1e-9)
		assert.InDelta(t, 0.9, m.LTV, 1e-12)

		high := terms
		high.DownPaymentPercent = 25
		m = engine.ComputeMetrics(sampleProperty(), high, testProfile())
		assert.Equal(t, 0.0, m.MortgageInsurance)
	})

	t.Run("Projections cover ten years", func(t *testing.T) {
		m := engine.ComputeMetrics(sampleProperty(), terms, testProfile())
		require.Len(t, m.EquityProjection, 10)
		require.Len(t, m.TotalValueProjection, 10)
		prev := math.Inf(1)
		for _, s := range m.EquityProjection {
			assert.InDelta(t, s.HomeValue-s.RemainingBalance, s.Equity, 1e-6)
			assert.LessOrEqual(t, s.RemainingBalance, prev)
			prev = s.RemainingBalance
		}
		assert.InDelta(t, 500000*math.Pow(1.03, 10), m.EquityProjection[9].HomeValue, 1e-6)
	})

	t.Run("Five year appreciation is preferred", func(t *testing.T) {
		p := sampleProperty()
		five := 5.5
		p.Appreciation5yr = &five
		assert.InDelta(t, 0.055, engine.EffectiveAppreciation(p), 1e-12)

		p = sampleProperty()
		p.AppreciationRate = 0
		assert.InDelta(t, 0.03, engine.EffectiveAppreciation(p), 1e-12)

		p.AppreciationRate = -2
		assert.InDelta(t, -0.02, engine.EffectiveAppreciation(p), 1e-12)
	})

	t.Run("No rent gives an undefined multiplier", func(t *testing.T) {
		p := sampleProperty()
		p.ExpectedRent = 0
		m := engine.ComputeMetrics(p, terms, testProfile())
		assert.True(t, math.IsInf(m.GrossRentMultiplier, 1))
	})

	t.Run("Record financing is overwritten", func(t *testing.T) {
		p := sampleProperty()
		p.DownPaymentPercent = 50
		p.InterestRate = 2
		m := engine.ComputeMetrics(p, terms, testProfile())
		assert.InDelta(t, 100000, m.DownPayment, 1e-6)
		assert.InDelta(t, 2594.39, m.PITI.PrincipalInterest, 0.01)
	})

	t.Run("Schedule", func(t *testing.T) {
		s := engine.Schedule(sampleProperty(), terms)
		require.Len(t, s.Rows, 360)
		assert.Equal(t, "p1", s.PropertyID)
		assert.InDelta(t, 400000, s.LoanAmount, 1e-6)
		assert.InDelta(t, 0, s.Rows[359].Balance, 0.01)
		assert.InDelta(t, 2594.39*360-400000, s.TotalInterest, 1)
	})
}

func TestCheck(t *testing.T) {
	checker := NewChecker(models.DefaultMarketAssumptions())
	terms := models.DefaultLoanTerms()

	t.Run("Unknown without financials", func(t *testing.T) {
		res := checker.Check(sampleProperty(), models.FinancialProfile{GrossAnnualIncome: 120000}, terms)
		assert.Equal(t, models.Unknown, res.Affordable)
		assert.Empty(t, res.Reasons)
	})

	t.Run("Cash shortfall", func(t *testing.T) {
		res := checker.Check(sampleProperty(), testProfile(), terms)
		assert.Equal(t, models.No, res.Affordable)
		assert.False(t, res.CanAffordCash)
		assert.True(t, res.CanAffordDTI)
		assert.InDelta(t, 115000, res.TotalCashNeeded, 1e-6)
		assert.InDelta(t, 15000, res.CashShortfall, 1e-6)
		assert.InDelta(t, 0.3761, res.BackEndDTI, 1e-4)
		assert.Equal(t, []string{"Need $115,000 cash (have $100,000)"}, res.Reasons)
	})

	t.Run("DTI over the limit", func(t *testing.T) {
		profile := testProfile()
		profile.SavingsAvailable = 200000
		profile.MonthlyDebts = 1500
		res := checker.Check(sampleProperty(), profile, terms)
		assert.Equal(t, models.No, res.Affordable)
		assert.True(t, res.CanAffordCash)
		assert.Equal(t, 0.0, res.CashShortfall)
		assert.Equal(t, []string{"DTI 47.6% exceeds 43.0% limit"}, res.Reasons)
	})

	t.Run("Affordable", func(t *testing.T) {
		profile := testProfile()
		profile.SavingsAvailable = 200000
		res := checker.Check(sampleProperty(), profile, terms)
		assert.Equal(t, models.Yes, res.Affordable)
		assert.Empty(t, res.Reasons)
		assert.False(t, res.IsJumbo)
	})

	t.Run("Insurance enters the housing cost above 80 percent LTV", func(t *testing.T) {
		low := terms
		low.DownPaymentPercent = 10
		res := checker.Check(sampleProperty(), testProfile(), low)
		assert.InDelta(t, 3847.86, res.TotalMonthlyHousing, 0.01)
		assert.InDelta(t, 65000, res.TotalCashNeeded, 1e-6)
	})

	t.Run("Jumbo depends on the high cost flag", func(t *testing.T) {
		p := sampleProperty()
		p.MedianPrice = 1200000
		t2 := terms
		t2.IsHighCostArea = false
		assert.True(t, checker.Check(p, testProfile(), t2).IsJumbo)
		t2.IsHighCostArea = true
		assert.False(t, checker.Check(p, testProfile(), t2).IsJumbo)
	})
}

func rankFixture() []models.Property {
	la := sampleProperty()

	pasadena := sampleProperty()
	pasadena.ID, pasadena.Zipcode, pasadena.Name, pasadena.City = "p2", "91101", "Old Town", "Pasadena"
	pasadena.MedianPrice = 300000
	pasadena.ExpectedRent = 2800

	sd := sampleProperty()
	sd.ID, sd.Zipcode, sd.Name, sd.City, sd.Region = "p3", "92101", "Gaslamp", "San Diego", "San Diego County"
	sd.MedianPrice = 700000
	sd.ExpectedRent = 0

	nowhere := sampleProperty()
	nowhere.ID, nowhere.Zipcode, nowhere.Name, nowhere.City = "p4", "", "Hillside", "Los Angeles"
	nowhere.MedianPrice = 300000
	nowhere.ExpectedRent = 1000

	return []models.Property{la, pasadena, sd, nowhere}
}

func testIndex() *geo.Index {
	return geo.NewIndex(map[string]models.Coordinate{
		"90012": {Lat: 34.0614, Lng: -118.2385},
		"91101": {Lat: 34.1478, Lng: -118.1445},
		"92101": {Lat: 32.7157, Lng: -117.1611},
	})
}

func ids(view models.RankedView) []string {
	out := make([]string, 0, len(view.Items))
	for _, item := range view.Items {
		out = append(out, item.ID)
	}
	return out
}

func TestRank(t *testing.T) {
	ranker := NewRanker(models.DefaultMarketAssumptions(), testIndex(), nil, nil)
	base := models.ViewInputs{Profile: testProfile(), Terms: models.DefaultLoanTerms()}

	t.Run("Default sort is cap rate descending", func(t *testing.T) {
		view := ranker.Rank(rankFixture(), base)
		assert.Equal(t, models.SortCapRate, view.SortBy)
		assert.Equal(t, models.SortDesc, view.Direction)
		assert.Equal(t, 4, view.TotalRecords)
		require.Len(t, view.Items, 4)
		for i := 1; i < len(view.Items); i++ {
			assert.GreaterOrEqual(t, view.Items[i-1].Metrics.CapRate, view.Items[i].Metrics.CapRate)
		}
	})

	t.Run("Unknown key falls back to cap rate", func(t *testing.T) {
		in := base
		in.Filters.SortBy = "bogus"
		view := ranker.Rank(rankFixture(), in)
		assert.Equal(t, models.SortCapRate, view.SortBy)
	})

	t.Run("Price ascending is stable", func(t *testing.T) {
		in := base
		in.Filters.SortBy = models.SortPrice
		in.Filters.Direction = models.SortAsc
		view := ranker.Rank(rankFixture(), in)
		assert.Equal(t, []string{"p2", "p4", "p1", "p3"}, ids(view))
	})

	t.Run("Price descending ignores direction", func(t *testing.T) {
		in := base
		in.Filters.SortBy = models.SortPriceDesc
		in.Filters.Direction = models.SortAsc
		view := ranker.Rank(rankFixture(), in)
		assert.Equal(t, []string{"p3", "p1", "p2", "p4"}, ids(view))
	})

	t.Run("City is always ascending", func(t *testing.T) {
		in := base
		in.Filters.SortBy = models.SortCity
		view := ranker.Rank(rankFixture(), in)
		assert.Equal(t, []string{"p1", "p4", "p2", "p3"}, ids(view))
	})

	t.Run("Region city and query filters", func(t *testing.T) {
		in := base
		in.Filters.Region = "LA County"
		in.Filters.SortBy = models.SortPrice
		in.Filters.Direction = models.SortAsc
		assert.Equal(t, []string{"p2", "p4", "p1"}, ids(ranker.Rank(rankFixture(), in)))

		in.Filters.City = "Los Angeles"
		assert.Equal(t, []string{"p4", "p1"}, ids(ranker.Rank(rankFixture(), in)))

		in = base
		in.Filters.Query = "GASLAMP"
		assert.Equal(t, []string{"p3"}, ids(ranker.Rank(rankFixture(), in)))

		in.Filters.Query = "9110"
		assert.Equal(t, []string{"p2"}, ids(ranker.Rank(rankFixture(), in)))
	})

	t.Run("Proximity excludes far and unresolvable records", func(t *testing.T) {
		in := base
		in.Filters.Proximity = &models.ProximityFilter{Zipcode: "90012", RadiusMiles: 20}
		in.Filters.SortBy = models.SortPrice
		in.Filters.Direction = models.SortAsc
		view := ranker.Rank(rankFixture(), in)
		require.Equal(t, []string{"p2", "p1"}, ids(view))
		require.NotNil(t, view.Items[1].DistanceMiles)
		assert.InDelta(t, 0, *view.Items[1].DistanceMiles, 1e-9)
		assert.Greater(t, *view.Items[0].DistanceMiles, 5.0)
	})

	t.Run("Unresolvable reference gives an empty view", func(t *testing.T) {
		in := base
		in.Filters.Proximity = &models.ProximityFilter{Zipcode: "00000", RadiusMiles: 20}
		view := ranker.Rank(rankFixture(), in)
		assert.Empty(t, view.Items)
		assert.NotNil(t, view.Items)
	})

	t.Run("Affordable only needs financials", func(t *testing.T) {
		in := base
		in.Filters.AffordableOnly = true
		view := ranker.Rank(rankFixture(), in)
		for _, item := range view.Items {
			assert.True(t, item.Affordability.Affordable.IsTrue())
		}
		assert.ElementsMatch(t, []string{"p2", "p4"}, ids(view))

		in.Profile = models.FinancialProfile{}
		assert.Len(t, ranker.Rank(rankFixture(), in).Items, 4)
	})

	t.Run("Financing is consistent across the view", func(t *testing.T) {
		view := ranker.Rank(rankFixture(), base)
		for _, item := range view.Items {
			assert.Equal(t, 20.0, item.DownPaymentPercent)
			assert.InDelta(t, 6.75, item.InterestRate, 1e-9)
		}
	})
}

func TestTopPicksAndFacets(t *testing.T) {
	ranker := NewRanker(models.DefaultMarketAssumptions(), testIndex(), nil, nil)
	records := rankFixture()
	view := ranker.Rank(records, models.ViewInputs{Profile: testProfile(), Terms: models.DefaultLoanTerms()})

	t.Run("Zero rent never wins a return pick", func(t *testing.T) {
		// p3 has no rent estimate.
		picks := TopPicks(view)
		require.NotNil(t, picks.BestCashFlow)
		assert.NotEqual(t, "p3", picks.BestCashFlow.ID)
		assert.NotEqual(t, "p3", picks.BestCapRate.ID)
		assert.NotEqual(t, "p3", picks.BestTotalReturn.ID)
		require.NotNil(t, picks.CheapestAffordable)
		assert.Equal(t, "p2", picks.CheapestAffordable.ID)
	})

	t.Run("Only zero rent records give no return picks", func(t *testing.T) {
		p := sampleProperty()
		p.ExpectedRent = 0
		v := ranker.Rank([]models.Property{p}, models.ViewInputs{Terms: models.DefaultLoanTerms()})
		picks := TopPicks(v)
		assert.Nil(t, picks.BestCashFlow)
		assert.Nil(t, picks.BestCapRate)
		assert.Nil(t, picks.CheapestAffordable)
	})

	t.Run("Affordable count", func(t *testing.T) {
		assert.Equal(t, 2, AffordableCount(view))

		unknown := ranker.Rank(records, models.ViewInputs{Terms: models.DefaultLoanTerms()})
		assert.Equal(t, len(records), AffordableCount(unknown))
	})

	t.Run("Facets", func(t *testing.T) {
		f := Facets(records, "")
		assert.Equal(t, []string{"LA County", "San Diego County"}, f.Regions)
		assert.Equal(t, []string{"Los Angeles", "Pasadena", "San Diego"}, f.Cities)

		f = Facets(records, "San Diego County")
		assert.Equal(t, []string{"San Diego"}, f.Cities)
	})
}

type memoryViewCache struct {
	views map[string]models.RankedView
	gets  int
}

func (m *memoryViewCache) Get(_ context.Context, key string) (*models.RankedView, error) {
	m.gets++
	v, ok := m.views[key]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (m *memoryViewCache) Set(_ context.Context, key string, view models.RankedView) error {
	m.views[key] = view
	return nil
}

func TestCachedRanker(t *testing.T) {
	cache := &memoryViewCache{views: map[string]models.RankedView{}}
	cr := NewCachedRanker(NewRanker(models.DefaultMarketAssumptions(), testIndex(), nil, nil), cache)
	in := models.ViewInputs{Profile: testProfile(), Terms: models.DefaultLoanTerms()}
	ctx := context.Background()

	first := cr.Rank(ctx, "user-1", 1, rankFixture(), in)
	assert.Len(t, cache.views, 1)

	// Same inputs and version are served from the cache even if the slice differs.
	again := cr.Rank(ctx, "user-1", 1, nil, in)
	assert.Equal(t, ids(first), ids(again))
	assert.Len(t, cache.views, 1)

	t.Run("Version change recomputes", func(t *testing.T) {
		view := cr.Rank(ctx, "user-1", 2, rankFixture()[:1], in)
		assert.Len(t, view.Items, 1)
		assert.Len(t, cache.views, 2)
	})

	t.Run("Terms change recomputes", func(t *testing.T) {
		changed := in
		changed.Terms.InterestRate = 0.05
		cr.Rank(ctx, "user-1", 1, rankFixture(), changed)
		assert.Len(t, cache.views, 3)
	})

	t.Run("Scope separates users", func(t *testing.T) {
		a, err := Fingerprint("user-1", 1, in)
		require.NoError(t, err)
		b, err := Fingerprint("user-2", 1, in)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("Unencodable inputs bypass the cache", func(t *testing.T) {
		bad := in
		bad.Terms.InterestRate = math.NaN()
		before := cache.gets
		cr.Rank(ctx, "user-1", 1, rankFixture(), bad)
		assert.Equal(t, before, cache.gets)
	})
}
