// Package analytics derives per-property metrics and affordability verdicts and
// ranks a property collection by them.
package analytics

import (
	"slices"

	"github.com/jalai-llc/bundongsan/internal/finance"
	"github.com/jalai-llc/bundongsan/internal/models"
)

// Engine computes the metrics bundle for a single property.
type Engine struct {
	assumptions models.MarketAssumptions
}

// NewEngine creates a metrics engine over the given market assumptions.
func NewEngine(a models.MarketAssumptions) *Engine {
	return &Engine{assumptions: a}
}

// loanFigures are the purchase figures shared by the metrics engine and the checker.
type loanFigures struct {
	price        float64
	downPayment  float64
	loan         float64
	closingCosts float64
	annualTax    float64
	piti         models.PITI
	mi           float64
}

func purchase(p models.Property, a models.MarketAssumptions) loanFigures {
	f := loanFigures{price: p.MedianPrice}
	f.downPayment = p.MedianPrice * (p.DownPaymentPercent / 100)
	f.loan = p.MedianPrice - f.downPayment
	f.closingCosts = finance.ClosingCostEstimate(p.MedianPrice, p.ClosingCostRate/100)
	f.annualTax = p.MedianPrice * (p.PropertyTaxRate / 100)
	f.piti = finance.PITI(f.loan, p.InterestRate/100, p.LoanTermYears, f.annualTax, p.AnnualInsurance)
	if finance.ExceedsLTV(f.loan, p.MedianPrice, a.MortgageInsuranceLTV) {
		f.mi = finance.MortgageInsurance(f.loan, a.MortgageInsuranceRate)
	}
	return f
}

// EffectiveAppreciation returns the annual appreciation fraction used for projections.
// The five-year figure is preferred because it is the steadier signal.
func (e *Engine) EffectiveAppreciation(p models.Property) float64 {
	if p.Appreciation5yr != nil {
		return *p.Appreciation5yr / 100
	}
	if p.AppreciationRate == 0 {
		return e.assumptions.DefaultAppreciationRate
	}
	return p.AppreciationRate / 100
}

// ComputeMetrics overwrites the record's financing with terms and derives every
// ownership and investment figure. profile supplies the user's current rent.
func (e *Engine) ComputeMetrics(p models.Property, terms models.LoanTerms, profile models.FinancialProfile) models.MetricsBundle {
	p = p.ApplyFinancing(terms)
	f := purchase(p, e.assumptions)

	annualRent := p.ExpectedRent * 12
	vacancy := p.VacancyRate / 100
	annualMaintenance := p.MedianPrice * (p.MaintenanceRate / 100)
	annualManagement := annualRent * (p.ManagementFee / 100)
	cashInvested := f.downPayment + f.closingCosts

	m := models.MetricsBundle{
		PITI:                   f.piti,
		MortgageInsurance:      f.mi,
		LTV:                    finance.LTV(f.loan, p.MedianPrice),
		LoanAmount:             f.loan,
		DownPayment:            f.downPayment,
		ClosingCosts:           f.closingCosts,
		CashInvested:           cashInvested,
		ProjectionCashInvested: f.downPayment,
		GrossRentMultiplier:    finance.GrossRentMultiplier(p.MedianPrice, annualRent),
		OnePercentRule:         finance.OnePercentRule(p.MedianPrice, p.ExpectedRent),
	}

	m.CapRate = finance.CapRate(p.MedianPrice, annualRent, vacancy,
		f.annualTax, p.AnnualInsurance, annualMaintenance, p.MonthlyHOA*12, annualManagement)
	m.MonthlyCashFlow = finance.MonthlyCashFlow(p.ExpectedRent, vacancy,
		f.piti.Total, f.mi, p.MonthlyHOA, annualMaintenance/12, annualManagement/12)
	m.AnnualCashFlow = m.MonthlyCashFlow * 12
	m.CashOnCash = finance.CashOnCash(m.AnnualCashFlow, cashInvested)

	m.MonthlyCostOfOwnership = f.piti.Total + f.mi + p.MonthlyHOA + annualMaintenance/12
	m.RentVsBuyDelta = m.MonthlyCostOfOwnership - profile.CurrentRent

	appreciation := e.EffectiveAppreciation(p)
	years := e.projectionYears()
	m.AppreciationRate = appreciation
	m.EquityProjection = slices.Collect(finance.EquityProjection(
		p.MedianPrice, f.downPayment, f.loan, p.InterestRate/100, p.LoanTermYears, appreciation, years))
	m.TotalValueProjection = slices.Collect(finance.TotalValueProjection(
		p.MedianPrice, f.downPayment, f.loan, p.InterestRate/100, p.LoanTermYears, appreciation, m.AnnualCashFlow, years))

	// Appreciation accrues on the whole house while only the cash invested is at risk.
	if cashInvested > 0 {
		m.LeveragedAppreciationReturn = p.MedianPrice * appreciation / cashInvested
	}
	m.TotalAnnualReturn = m.CashOnCash + m.LeveragedAppreciationReturn
	return m
}

func (e *Engine) projectionYears() int {
	if e.assumptions.ProjectionYears > 0 {
		return e.assumptions.ProjectionYears
	}
	return 10
}

// Schedule returns the month-by-month amortization of the record's loan under terms.
func (e *Engine) Schedule(p models.Property, terms models.LoanTerms) models.PaymentSchedule {
	p = p.ApplyFinancing(terms)
	f := purchase(p, e.assumptions)
	sched := models.PaymentSchedule{
		PropertyID:     p.ID,
		LoanAmount:     f.loan,
		MonthlyPayment: f.piti.PrincipalInterest,
		Rows:           slices.Collect(finance.AmortizationSchedule(f.loan, p.InterestRate/100, p.LoanTermYears)),
	}
	for _, r := range sched.Rows {
		sched.TotalInterest += r.Interest
	}
	return sched
}
