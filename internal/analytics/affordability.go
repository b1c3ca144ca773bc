package analytics

import (
	"fmt"
	"math"

	"github.com/jalai-llc/bundongsan/internal/finance"
	"github.com/jalai-llc/bundongsan/internal/format"
	"github.com/jalai-llc/bundongsan/internal/models"
)

// Checker decides whether a profile can buy a property.
type Checker struct {
	assumptions models.MarketAssumptions
}

// NewChecker creates an affordability checker over the given market assumptions.
func NewChecker(a models.MarketAssumptions) *Checker {
	return &Checker{assumptions: a}
}

// Check evaluates the cash and back-end DTI tests. Without usable financials the
// verdict is Unknown and no reasons are given.
func (c *Checker) Check(p models.Property, profile models.FinancialProfile, terms models.LoanTerms) models.AffordabilityResult {
	if !profile.HasFinancials() {
		return models.AffordabilityResult{Affordable: models.Unknown, Reasons: []string{}}
	}

	p = p.ApplyFinancing(terms)
	f := purchase(p, c.assumptions)

	res := models.AffordabilityResult{Reasons: []string{}}
	res.TotalCashNeeded = f.downPayment + f.closingCosts
	res.CanAffordCash = profile.SavingsAvailable >= res.TotalCashNeeded
	res.CashShortfall = math.Max(0, res.TotalCashNeeded-profile.SavingsAvailable)

	res.TotalMonthlyHousing = f.piti.Total + f.mi + p.MonthlyHOA
	res.BackEndDTI = finance.BackEndDTI(res.TotalMonthlyHousing, profile.MonthlyDebts, profile.GrossMonthlyIncome())
	res.CanAffordDTI = res.BackEndDTI <= c.assumptions.BackEndDTIMax
	res.IsJumbo = f.loan > c.assumptions.ConformingLimit(terms.IsHighCostArea)

	if !res.CanAffordCash {
		res.Reasons = append(res.Reasons, fmt.Sprintf("Need %s cash (have %s)",
			format.Currency(res.TotalCashNeeded), format.Currency(profile.SavingsAvailable)))
	}
	if !res.CanAffordDTI {
		res.Reasons = append(res.Reasons, fmt.Sprintf("DTI %s exceeds %s limit",
			format.Percent(res.BackEndDTI), format.Percent(c.assumptions.BackEndDTIMax)))
	}
	res.Affordable = models.TristateOf(res.CanAffordCash && res.CanAffordDTI)
	return res
}
