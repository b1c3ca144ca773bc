package finance

import (
	"math"

	"github.com/jalai-llc/bundongsan/internal/models"
)

// Solver finds the most expensive home a profile can carry under the given terms.
type Solver struct {
	assumptions models.MarketAssumptions
}

// NewSolver creates a solver over the given market assumptions.
func NewSolver(a models.MarketAssumptions) *Solver {
	return &Solver{assumptions: a}
}

// Assumptions returns the tables the solver was built with.
func (s *Solver) Assumptions() models.MarketAssumptions {
	return s.assumptions
}

// MonthlyHousingCeiling is the most restrictive of the front-end DTI, back-end DTI
// and budget limits. It may be negative.
func (s *Solver) MonthlyHousingCeiling(p models.FinancialProfile) float64 {
	gross := p.GrossMonthlyIncome()
	preset := s.assumptions.Preset(p.ComfortLevel)

	front := gross * preset.FrontEndDTI
	back := gross*preset.BackEndDTI - p.MonthlyDebts
	// Current rent is left out because it goes away once the home is bought.
	budget := gross - p.MonthlyDebts - p.MonthlyOtherExpenses - gross*preset.BufferRate

	return math.Min(front, math.Min(back, budget))
}

// CashConstraintPrice is the price at which savings exactly cover down payment and
// closing costs.
func CashConstraintPrice(savings, downPaymentFraction, closingCostFraction float64) float64 {
	denom := downPaymentFraction + closingCostFraction
	if denom <= 0 {
		return 0
	}
	return savings / denom
}

// MonthlyPaymentAt returns PITI plus mortgage insurance for a purchase at price.
func (s *Solver) MonthlyPaymentAt(price float64, t models.LoanTerms) models.MonthlyPayment {
	if price <= 0 {
		return models.MonthlyPayment{}
	}
	loan := price * (1 - t.DownPaymentFraction())
	piti := PITI(loan, t.InterestRate, t.TermYears, price*t.PropertyTaxRate, price*s.assumptions.HomeownersInsuranceRate)
	mi := 0.0
	if ExceedsLTV(loan, price, s.assumptions.MortgageInsuranceLTV) {
		mi = MortgageInsurance(loan, s.assumptions.MortgageInsuranceRate)
	}
	return models.MonthlyPayment{
		PrincipalInterest: piti.PrincipalInterest,
		Taxes:             piti.Tax,
		Insurance:         piti.Insurance,
		MortgageInsurance: mi,
		Total:             piti.Total + mi,
	}
}

// IncomeConstraintPrice binary-searches [0, bracket] for the highest price whose
// monthly payment stays under ceiling. The search always runs the configured number
// of iterations, and the answer is floored to a whole currency unit.
func (s *Solver) IncomeConstraintPrice(ceiling float64, t models.LoanTerms, bracket float64) float64 {
	if ceiling <= 0 {
		return 0
	}
	lo, hi := 0.0, bracket
	for i := 0; i < s.iterations(); i++ {
		mid := (lo + hi) / 2
		// Tax and insurance still count when the loan is zero.
		if s.MonthlyPaymentAt(mid, t).Total < ceiling {
			lo = mid
		} else {
			hi = mid
		}
	}
	return math.Floor(lo)
}

func (s *Solver) iterations() int {
	if s.assumptions.SearchIterations > 0 {
		return s.assumptions.SearchIterations
	}
	return 50
}

// MaxAffordablePrice combines the cash and income constraints.
func (s *Solver) MaxAffordablePrice(p models.FinancialProfile, t models.LoanTerms) models.BuyingPower {
	return s.maxAffordable(p, t, s.assumptions.SearchBracket)
}

func (s *Solver) maxAffordable(p models.FinancialProfile, t models.LoanTerms, bracket float64) models.BuyingPower {
	p = p.Normalize()
	bp := models.BuyingPower{LimitingConstraint: models.ConstraintIncome, MonthsToAfford: 0}
	if p.GrossMonthlyIncome() <= 0 {
		bp.MonthsToAfford = monthsToAfford(0, p)
		bp.SavingsProgress = 100
		return bp
	}

	ceiling := s.MonthlyHousingCeiling(p)
	bp.MonthlyHousingCeiling = ceiling
	bp.MonthlyHousingBudget = math.Max(0, ceiling)
	bp.CashConstraintPrice = CashConstraintPrice(p.SavingsAvailable, t.DownPaymentFraction(), t.ClosingCostRate)
	bp.IncomeConstraintPrice = s.IncomeConstraintPrice(ceiling, t, bracket)

	if bp.CashConstraintPrice <= bp.IncomeConstraintPrice {
		bp.MaxPrice = bp.CashConstraintPrice
		bp.LimitingConstraint = models.ConstraintCash
	} else {
		bp.MaxPrice = bp.IncomeConstraintPrice
	}

	housing := 0.0
	if bp.MaxPrice > 0 {
		payment := s.MonthlyPaymentAt(bp.MaxPrice, t)
		bp.PaymentAtMax = &payment
		housing = payment.Total
	}
	bp.MonthlyCushion = p.GrossMonthlyIncome() - p.MonthlyDebts - p.MonthlyOtherExpenses - housing
	bp.CashNeededAtMax = bp.MaxPrice * (t.DownPaymentFraction() + t.ClosingCostRate)

	// Savings goals track the income-limited price: that is the home the household
	// could carry once the cash is there.
	bp.CashNeededAtIncomePrice = bp.IncomeConstraintPrice * (t.DownPaymentFraction() + t.ClosingCostRate)
	bp.MonthsToAfford = monthsToAfford(bp.CashNeededAtIncomePrice, p)
	bp.SavingsProgress = savingsProgress(bp.CashNeededAtIncomePrice, p.SavingsAvailable)
	return bp
}

func monthsToAfford(needed float64, p models.FinancialProfile) int {
	if p.SavingsAvailable >= needed {
		return 0
	}
	if p.MonthlySavingsRate <= 0 {
		return models.MonthsNever
	}
	return int(math.Ceil((needed - p.SavingsAvailable) / p.MonthlySavingsRate))
}

func savingsProgress(needed, have float64) float64 {
	if needed <= 0 {
		return 100
	}
	return math.Min(100, have/needed*100)
}
