package models

import (
	"encoding/json"
	"math"
)

// PITI is the monthly principal+interest, tax and insurance breakdown.
type PITI struct {
	PrincipalInterest float64 `json:"principal_interest"`
	Tax               float64 `json:"tax"`
	Insurance         float64 `json:"insurance"`
	Total             float64 `json:"total"`
}

// OnePercentRule compares monthly rent against 1% of the purchase price.
type OnePercentRule struct {
	Target float64 `json:"target"`
	Actual float64 `json:"actual"`
	Passes bool    `json:"passes"`
}

// EquitySnapshot is the ownership position at the end of a projection year.
type EquitySnapshot struct {
	Year             int     `json:"year"`
	HomeValue        float64 `json:"home_value"`
	RemainingBalance float64 `json:"remaining_balance"`
	Equity           float64 `json:"equity"`
	AppreciationGain float64 `json:"appreciation_gain"`
	PrincipalPaid    float64 `json:"principal_paid"`
}

// ValueSnapshot extends an equity snapshot with collected cash flow and returns.
type ValueSnapshot struct {
	EquitySnapshot
	CumulativeCashFlow float64 `json:"cumulative_cash_flow"`
	TotalValue         float64 `json:"total_value"`
	NetGain            float64 `json:"net_gain"`
	TotalROI           float64 `json:"total_roi"`
	AnnualizedROI      float64 `json:"annualized_roi"`
}

// MetricsBundle holds every derived ownership and investment figure for one property.
// It is recomputed on demand and never stored.
type MetricsBundle struct {
	CapRate             float64        `json:"cap_rate"`
	CashOnCash          float64        `json:"cash_on_cash"`
	MonthlyCashFlow     float64        `json:"monthly_cash_flow"`
	AnnualCashFlow      float64        `json:"annual_cash_flow"`
	GrossRentMultiplier float64        `json:"gross_rent_multiplier"` // +Inf when rent is zero
	OnePercentRule      OnePercentRule `json:"one_percent_rule"`
	PITI                PITI           `json:"piti"`
	MortgageInsurance   float64        `json:"mortgage_insurance"`
	LTV                 float64        `json:"ltv"`
	LoanAmount          float64        `json:"loan_amount"`
	DownPayment         float64        `json:"down_payment"`
	ClosingCosts        float64        `json:"closing_costs"`
	// CashInvested includes closing costs; ProjectionCashInvested is the down payment
	// alone, the baseline used by TotalValueProjection.
	CashInvested                float64          `json:"cash_invested"`
	ProjectionCashInvested      float64          `json:"projection_cash_invested"`
	MonthlyCostOfOwnership      float64          `json:"monthly_cost_of_ownership"`
	RentVsBuyDelta              float64          `json:"rent_vs_buy_delta"`
	AppreciationRate            float64          `json:"appreciation_rate"`
	EquityProjection            []EquitySnapshot `json:"equity_projection"`
	TotalValueProjection        []ValueSnapshot  `json:"total_value_projection"`
	LeveragedAppreciationReturn float64          `json:"leveraged_appreciation_return"`
	TotalAnnualReturn           float64          `json:"total_annual_return"`
}

// NetGainAt returns the projected net gain at the given year, or 0 when the
// projection does not reach it.
func (m MetricsBundle) NetGainAt(year int) float64 {
	for _, s := range m.TotalValueProjection {
		if s.Year == year {
			return s.NetGain
		}
	}
	return 0
}

// MarshalJSON encodes an undefined gross rent multiplier as null.
func (m MetricsBundle) MarshalJSON() ([]byte, error) {
	type plain MetricsBundle
	out := struct {
		plain
		GrossRentMultiplier *float64 `json:"gross_rent_multiplier"`
	}{plain: plain(m)}
	if !math.IsInf(m.GrossRentMultiplier, 0) && !math.IsNaN(m.GrossRentMultiplier) {
		grm := m.GrossRentMultiplier
		out.GrossRentMultiplier = &grm
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a null gross rent multiplier as +Inf.
func (m *MetricsBundle) UnmarshalJSON(data []byte) error {
	type plain MetricsBundle
	in := struct {
		*plain
		GrossRentMultiplier *float64 `json:"gross_rent_multiplier"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.GrossRentMultiplier == nil {
		m.GrossRentMultiplier = math.Inf(1)
	} else {
		m.GrossRentMultiplier = *in.GrossRentMultiplier
	}
	return nil
}
