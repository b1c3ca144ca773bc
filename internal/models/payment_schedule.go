package models

// AmortizationRow is one scheduled payment of a loan.
type AmortizationRow struct {
	Month     int     `json:"month"`
	Payment   float64 `json:"payment"`
	Interest  float64 `json:"interest"`
	Principal float64 `json:"principal"`
	Balance   float64 `json:"balance"`
}

// PaymentSchedule represents the full amortization of a property's loan
type PaymentSchedule struct {
	PropertyID     string            `json:"property_id"`
	LoanAmount     float64           `json:"loan_amount"`
	MonthlyPayment float64           `json:"monthly_payment"`
	TotalInterest  float64           `json:"total_interest"`
	Rows           []AmortizationRow `json:"rows"`
}
