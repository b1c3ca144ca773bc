package models

// Constraint names the limit that binds the max affordable price.
type Constraint string

const (
	ConstraintCash   Constraint = "cash"
	ConstraintIncome Constraint = "income"
)

// MonthsNever marks a savings goal that cannot be reached at the current savings rate.
const MonthsNever = -1

// MonthlyPayment is the full monthly housing payment including mortgage insurance.
type MonthlyPayment struct {
	PrincipalInterest float64 `json:"principal_interest"`
	Taxes             float64 `json:"taxes"`
	Insurance         float64 `json:"insurance"`
	MortgageInsurance float64 `json:"mortgage_insurance"`
	Total             float64 `json:"total"`
}

// BuyingPower is the result of the max-affordable-price solve.
type BuyingPower struct {
	MaxPrice                float64         `json:"max_price"`
	CashConstraintPrice     float64         `json:"cash_constraint_price"`
	IncomeConstraintPrice   float64         `json:"income_constraint_price"`
	LimitingConstraint      Constraint      `json:"limiting_constraint"`
	MonthlyHousingCeiling   float64         `json:"monthly_housing_ceiling"`
	MonthlyHousingBudget    float64         `json:"monthly_housing_budget"`
	PaymentAtMax            *MonthlyPayment `json:"payment_at_max,omitempty"`
	MonthlyCushion          float64         `json:"monthly_cushion"`
	CashNeededAtMax         float64         `json:"cash_needed_at_max"`
	CashNeededAtIncomePrice float64         `json:"cash_needed_at_income_price"`
	MonthsToAfford          int             `json:"months_to_afford"`
	SavingsProgress         float64         `json:"savings_progress"`
}

// DownPaymentOption is one row of the down payment sweep.
type DownPaymentOption struct {
	DownPaymentPercent     float64        `json:"down_payment_percent"`
	MaxPrice               float64        `json:"max_price"`
	LimitingConstraint     Constraint     `json:"limiting_constraint"`
	CashNeeded             float64        `json:"cash_needed"`
	Payment                MonthlyPayment `json:"payment"`
	NeedsMortgageInsurance bool           `json:"needs_mortgage_insurance"`
}

// DownPaymentSweep lists the options and the one that buys the most house.
type DownPaymentSweep struct {
	Options []DownPaymentOption `json:"options"`
	Best    *DownPaymentOption  `json:"best,omitempty"`
}

// DTIStatus grades a pair of front/back ratios.
type DTIStatus string

const (
	DTIExcellent  DTIStatus = "excellent"
	DTIAcceptable DTIStatus = "acceptable"
	DTIRisky      DTIStatus = "risky"
)

// TargetScenario evaluates a single target purchase price against the profile.
type TargetScenario struct {
	TargetPrice            float64   `json:"target_price"`
	DownPayment            float64   `json:"down_payment"`
	LoanAmount             float64   `json:"loan_amount"`
	LTV                    float64   `json:"ltv"`
	NeedsMortgageInsurance bool      `json:"needs_mortgage_insurance"`
	IsJumbo                bool      `json:"is_jumbo"`
	ConformingLimit        float64   `json:"conforming_limit"`
	PITI                   PITI      `json:"piti"`
	MortgageInsurance      float64   `json:"mortgage_insurance"`
	MonthlyHOA             float64   `json:"monthly_hoa"`
	TotalMonthlyHousing    float64   `json:"total_monthly_housing"`
	FrontEndDTI            float64   `json:"front_end_dti"`
	BackEndDTI             float64   `json:"back_end_dti"`
	DTIStatus              DTIStatus `json:"dti_status"`
	ClosingCosts           float64   `json:"closing_costs"`
	TotalCashNeeded        float64   `json:"total_cash_needed"`
	SavingsShortfall       float64   `json:"savings_shortfall"`
	MonthlyCashFlow        float64   `json:"monthly_cash_flow"`
}
