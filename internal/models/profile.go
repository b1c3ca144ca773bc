package models

// ComfortLevel selects how much of the household income may go to housing.
type ComfortLevel string

const (
	ComfortConservative ComfortLevel = "conservative"
	ComfortStandard     ComfortLevel = "standard"
	ComfortAggressive   ComfortLevel = "aggressive"
)

// ComfortPreset holds the DTI targets and cash cushion for a comfort level.
type ComfortPreset struct {
	Label       string  `json:"label" yaml:"label"`
	FrontEndDTI float64 `json:"front_end_dti" yaml:"front_end_dti"`
	BackEndDTI  float64 `json:"back_end_dti" yaml:"back_end_dti"`
	BufferRate  float64 `json:"buffer_rate" yaml:"buffer_rate"`
}

// FinancialProfile represents the household's income, obligations and savings
type FinancialProfile struct {
	GrossAnnualIncome    float64      `json:"gross_annual_income"`
	MonthlyDebts         float64      `json:"monthly_debts"`
	MonthlyOtherExpenses float64      `json:"monthly_other_expenses"`
	CurrentRent          float64      `json:"current_rent"`
	SavingsAvailable     float64      `json:"savings_available"`
	MonthlySavingsRate   float64      `json:"monthly_savings_rate"`
	EffectiveTaxRate     float64      `json:"effective_tax_rate"`
	ComfortLevel         ComfortLevel `json:"comfort_level"`
}

// DefaultFinancialProfile returns the empty profile used before the user enters anything.
func DefaultFinancialProfile() FinancialProfile {
	return FinancialProfile{ComfortLevel: ComfortStandard}
}

// GrossMonthlyIncome is the annual income spread over twelve months.
func (p FinancialProfile) GrossMonthlyIncome() float64 {
	return p.GrossAnnualIncome / 12
}

// HasFinancials reports whether the profile carries enough data to judge affordability.
func (p FinancialProfile) HasFinancials() bool {
	return p.GrossAnnualIncome > 0 && p.SavingsAvailable > 0
}

// Normalize clamps negative amounts to zero and resolves unknown comfort levels.
func (p FinancialProfile) Normalize() FinancialProfile {
	p.GrossAnnualIncome = nonNegative(p.GrossAnnualIncome)
	p.MonthlyDebts = nonNegative(p.MonthlyDebts)
	p.MonthlyOtherExpenses = nonNegative(p.MonthlyOtherExpenses)
	p.CurrentRent = nonNegative(p.CurrentRent)
	p.SavingsAvailable = nonNegative(p.SavingsAvailable)
	p.MonthlySavingsRate = nonNegative(p.MonthlySavingsRate)
	p.EffectiveTaxRate = nonNegative(p.EffectiveTaxRate)
	switch p.ComfortLevel {
	case ComfortConservative, ComfortStandard, ComfortAggressive:
	default:
		p.ComfortLevel = ComfortStandard
	}
	return p
}

func nonNegative(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	return v
}
