package models

// LoanTerms represents the financing the user is shopping with.
// InterestRate, PropertyTaxRate and ClosingCostRate are fractions (0.0675 = 6.75%);
// DownPaymentPercent is 0-100.
type LoanTerms struct {
	InterestRate       float64 `json:"interest_rate"`
	TermYears          int     `json:"term_years"`
	DownPaymentPercent float64 `json:"down_payment_percent"`
	PropertyTaxRate    float64 `json:"property_tax_rate"`
	ClosingCostRate    float64 `json:"closing_cost_rate"`
	IsHighCostArea     bool    `json:"is_high_cost_area"`
}

// DefaultLoanTerms returns the financing defaults for a new session.
func DefaultLoanTerms() LoanTerms {
	return LoanTerms{
		InterestRate:       0.0675,
		TermYears:          30,
		DownPaymentPercent: 20,
		PropertyTaxRate:    0.0125,
		ClosingCostRate:    0.03,
		IsHighCostArea:     true,
	}
}

// DownPaymentFraction converts the percent field to a fraction.
func (t LoanTerms) DownPaymentFraction() float64 {
	return t.DownPaymentPercent / 100
}

// Validate checks the ranges the solver and metrics engine rely on.
func (t LoanTerms) Validate() error {
	switch {
	case t.TermYears <= 0:
		return ErrInvalidTerm
	case t.DownPaymentPercent < 0 || t.DownPaymentPercent > 100:
		return ErrInvalidDownPayment
	case t.InterestRate < 0 || t.PropertyTaxRate < 0 || t.ClosingCostRate < 0:
		return ErrNegativeRate
	}
	return nil
}
