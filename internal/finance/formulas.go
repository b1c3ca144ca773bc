// Package finance holds the pure mortgage, tax, insurance and investment-return
// formulas and the max-affordable-price solver built on them.
package finance

import (
	"math"

	"github.com/jalai-llc/bundongsan/internal/models"
)

// MortgageInsuranceLTV is the loan-to-value ratio above which mortgage insurance applies.
const MortgageInsuranceLTV = 0.8

// ltvTolerance absorbs rounding in price*(1-dp)/price so that exactly 20% down
// never reads as 80.0000000001% LTV.
const ltvTolerance = 1e-9

// AmortizedPayment returns the monthly principal and interest payment.
//
//	M = P * r(1+r)^n / ((1+r)^n - 1)
//
// A zero rate falls back to straight-line repayment.
func AmortizedPayment(principal, annualRate float64, termYears int) float64 {
	if principal <= 0 || termYears <= 0 {
		return 0
	}
	r := annualRate / 12
	n := float64(termYears * 12)
	if r == 0 {
		return principal / n
	}
	growth := math.Pow(1+r, n)
	return principal * (r * growth) / (growth - 1)
}

// PITI returns the full monthly payment breakdown. Tax and insurance are annual inputs.
func PITI(principal, annualRate float64, termYears int, annualTax, annualInsurance float64) models.PITI {
	pi := AmortizedPayment(principal, annualRate, termYears)
	tax := annualTax / 12
	insurance := annualInsurance / 12
	return models.PITI{
		PrincipalInterest: pi,
		Tax:               tax,
		Insurance:         insurance,
		Total:             pi + tax + insurance,
	}
}

// MortgageInsurance returns the monthly premium. It does not check LTV; callers gate
// it with NeedsMortgageInsurance.
func MortgageInsurance(loanAmount, annualRate float64) float64 {
	return loanAmount * annualRate / 12
}

// LTV returns loan/price, or 0 for a non-positive price.
func LTV(loanAmount, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return loanAmount / price
}

// NeedsMortgageInsurance reports whether LTV exceeds the insurance threshold.
func NeedsMortgageInsurance(loanAmount, price float64) bool {
	return ExceedsLTV(loanAmount, price, MortgageInsuranceLTV)
}

// ExceedsLTV reports whether loan/price is above threshold.
func ExceedsLTV(loanAmount, price, threshold float64) bool {
	return LTV(loanAmount, price) > threshold+ltvTolerance
}

// FrontEndDTI is monthly housing cost over gross monthly income.
func FrontEndDTI(housingCost, grossMonthlyIncome float64) float64 {
	if grossMonthlyIncome <= 0 {
		return 0
	}
	return housingCost / grossMonthlyIncome
}

// BackEndDTI is housing cost plus other debts over gross monthly income.
func BackEndDTI(housingCost, otherDebts, grossMonthlyIncome float64) float64 {
	if grossMonthlyIncome <= 0 {
		return 0
	}
	return (housingCost + otherDebts) / grossMonthlyIncome
}

// CapRate is net operating income over purchase price.
func CapRate(price, annualGrossRent, vacancyRate, annualTax, annualInsurance, annualMaintenance, annualHOA, annualManagement float64) float64 {
	if price <= 0 {
		return 0
	}
	effectiveGrossIncome := annualGrossRent * (1 - vacancyRate)
	operatingExpenses := annualTax + annualInsurance + annualMaintenance + annualHOA + annualManagement
	return (effectiveGrossIncome - operatingExpenses) / price
}

// CashOnCash is annual pre-tax cash flow over total cash invested.
func CashOnCash(annualCashFlow, cashInvested float64) float64 {
	if cashInvested <= 0 {
		return 0
	}
	return annualCashFlow / cashInvested
}

// GrossRentMultiplier is price over annual rent; +Inf when there is no rent.
func GrossRentMultiplier(price, annualGrossRent float64) float64 {
	if annualGrossRent <= 0 {
		return math.Inf(1)
	}
	return price / annualGrossRent
}

// MonthlyCashFlow is effective rent minus every monthly carrying cost.
func MonthlyCashFlow(monthlyRent, vacancyRate, pitiTotal, mortgageInsurance, monthlyHOA, monthlyMaintenance, monthlyManagement float64) float64 {
	effectiveRent := monthlyRent * (1 - vacancyRate)
	expenses := pitiTotal + mortgageInsurance + monthlyHOA + monthlyMaintenance + monthlyManagement
	return effectiveRent - expenses
}

// OnePercentRule checks monthly rent against 1% of the purchase price.
func OnePercentRule(price, monthlyRent float64) models.OnePercentRule {
	target := price * 0.01
	return models.OnePercentRule{Target: target, Actual: monthlyRent, Passes: monthlyRent >= target}
}

// ClosingCostEstimate is price times the closing cost rate.
func ClosingCostEstimate(price, rate float64) float64 {
	return price * rate
}
