package finance

import (
	"math"

	"github.com/jalai-llc/bundongsan/internal/models"
)

// Lender comfort bands for grading a DTI pair.
const (
	excellentFrontDTI  = 0.28
	excellentBackDTI   = 0.36
	acceptableFrontDTI = 0.31
	acceptableBackDTI  = 0.43
)

// GradeDTI returns the comfort band a front/back DTI pair falls into.
func GradeDTI(front, back float64) models.DTIStatus {
	switch {
	case front <= excellentFrontDTI && back <= excellentBackDTI:
		return models.DTIExcellent
	case front <= acceptableFrontDTI && back <= acceptableBackDTI:
		return models.DTIAcceptable
	default:
		return models.DTIRisky
	}
}

// TakeHomeRate is the share of gross income left after taxes.
func (s *Solver) TakeHomeRate(p models.FinancialProfile) float64 {
	if p.EffectiveTaxRate > 0 && p.EffectiveTaxRate < 1 {
		return 1 - p.EffectiveTaxRate
	}
	return s.assumptions.DefaultTakeHomeRate
}

// EvaluateTarget runs the single-home budget calculator for a target price.
func (s *Solver) EvaluateTarget(targetPrice, monthlyHOA float64, p models.FinancialProfile, t models.LoanTerms) models.TargetScenario {
	p = p.Normalize()
	sc := models.TargetScenario{
		TargetPrice:     math.Max(0, targetPrice),
		MonthlyHOA:      math.Max(0, monthlyHOA),
		ConformingLimit: s.assumptions.ConformingLimit(t.IsHighCostArea),
	}
	sc.DownPayment = sc.TargetPrice * t.DownPaymentFraction()
	sc.LoanAmount = math.Max(0, sc.TargetPrice-sc.DownPayment)
	sc.LTV = LTV(sc.LoanAmount, sc.TargetPrice)
	sc.NeedsMortgageInsurance = ExceedsLTV(sc.LoanAmount, sc.TargetPrice, s.assumptions.MortgageInsuranceLTV)
	sc.IsJumbo = sc.LoanAmount > sc.ConformingLimit

	if sc.TargetPrice > 0 && sc.LoanAmount > 0 {
		sc.PITI = PITI(sc.LoanAmount, t.InterestRate, t.TermYears,
			sc.TargetPrice*t.PropertyTaxRate, sc.TargetPrice*s.assumptions.HomeownersInsuranceRate)
	}
	if sc.NeedsMortgageInsurance {
		sc.MortgageInsurance = MortgageInsurance(sc.LoanAmount, s.assumptions.MortgageInsuranceRate)
	}
	sc.TotalMonthlyHousing = sc.PITI.Total + sc.MortgageInsurance + sc.MonthlyHOA

	gross := p.GrossMonthlyIncome()
	sc.FrontEndDTI = FrontEndDTI(sc.TotalMonthlyHousing, gross)
	sc.BackEndDTI = BackEndDTI(sc.TotalMonthlyHousing, p.MonthlyDebts, gross)
	sc.DTIStatus = GradeDTI(sc.FrontEndDTI, sc.BackEndDTI)

	sc.ClosingCosts = ClosingCostEstimate(sc.TargetPrice, t.ClosingCostRate)
	sc.TotalCashNeeded = sc.DownPayment + sc.ClosingCosts
	sc.SavingsShortfall = math.Max(0, sc.TotalCashNeeded-p.SavingsAvailable)
	sc.MonthlyCashFlow = gross*s.TakeHomeRate(p) - sc.TotalMonthlyHousing - p.MonthlyDebts - p.MonthlyOtherExpenses
	return sc
}
