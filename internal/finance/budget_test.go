package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jalai-llc/bundongsan/internal/models"
)

func TestGradeDTI(t *testing.T) {
	tests := []struct {
		name  string
		front float64
		back  float64
		want  models.DTIStatus
	}{
		{"Within standard targets", 0.28, 0.36, models.DTIExcellent},
		{"Back end stretched", 0.25, 0.40, models.DTIAcceptable},
		{"At lender maximum", 0.31, 0.43, models.DTIAcceptable},
		{"Front end too high", 0.32, 0.35, models.DTIRisky},
		{"Back end too high", 0.20, 0.44, models.DTIRisky},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GradeDTI(tt.front, tt.back))
		})
	}
}

func TestEvaluateTarget(t *testing.T) {
	solver := NewSolver(models.DefaultMarketAssumptions())
	terms := models.DefaultLoanTerms()
	terms.DownPaymentPercent = 10
	profile := models.FinancialProfile{
		GrossAnnualIncome:    180000,
		MonthlyDebts:         500,
		MonthlyOtherExpenses: 1500,
		SavingsAvailable:     40000,
	}

	sc := solver.EvaluateTarget(500000, 200, profile, terms)

	assert.Equal(t, 50000.0, sc.DownPayment)
	assert.Equal(t, 450000.0, sc.LoanAmount)
	assert.InDelta(t, 0.9, sc.LTV, 1e-12)
	assert.True(t, sc.NeedsMortgageInsurance)
	assert.InDelta(t, 262.5, sc.MortgageInsurance, 1e-9)
	assert.False(t, sc.IsJumbo)
	assert.Equal(t, 1249125.0, sc.ConformingLimit)
	assert.InDelta(t, sc.PITI.Total+262.5+200, sc.TotalMonthlyHousing, 1e-9)
	assert.InDelta(t, sc.TotalMonthlyHousing/15000, sc.FrontEndDTI, 1e-12)
	assert.InDelta(t, (sc.TotalMonthlyHousing+500)/15000, sc.BackEndDTI, 1e-12)
	assert.Equal(t, GradeDTI(sc.FrontEndDTI, sc.BackEndDTI), sc.DTIStatus)
	assert.Equal(t, 15000.0, sc.ClosingCosts)
	assert.Equal(t, 65000.0, sc.TotalCashNeeded)
	assert.Equal(t, 25000.0, sc.SavingsShortfall)
	assert.InDelta(t, 15000*0.70-sc.TotalMonthlyHousing-500-1500, sc.MonthlyCashFlow, 1e-9)

	t.Run("Effective tax rate drives take-home pay", func(t *testing.T) {
		taxed := profile
		taxed.EffectiveTaxRate = 0.25
		got := solver.EvaluateTarget(500000, 200, taxed, terms)
		assert.InDelta(t, 15000*0.75-got.TotalMonthlyHousing-2000, got.MonthlyCashFlow, 1e-9)
	})

	t.Run("Jumbo loan outside high-cost area", func(t *testing.T) {
		lowCost := terms
		lowCost.IsHighCostArea = false
		got := solver.EvaluateTarget(1_000_000, 0, profile, lowCost)
		assert.True(t, got.IsJumbo)
		assert.Equal(t, 832750.0, got.ConformingLimit)
	})

	t.Run("No target price", func(t *testing.T) {
		got := solver.EvaluateTarget(0, 0, profile, terms)
		assert.Equal(t, 0.0, got.PITI.Total)
		assert.Equal(t, 0.0, got.TotalMonthlyHousing)
		assert.False(t, got.NeedsMortgageInsurance)
	})
}
