package finance

import (
	"iter"
	"math"

	"github.com/jalai-llc/bundongsan/internal/models"
)

// amortizer walks a loan month by month. The balance never goes below zero.
type amortizer struct {
	monthlyRate float64
	payment     float64
	balance     float64
}

func newAmortizer(loan, annualRate float64, termYears int) *amortizer {
	return &amortizer{
		monthlyRate: annualRate / 12,
		payment:     AmortizedPayment(loan, annualRate, termYears),
		balance:     loan,
	}
}

// step applies one payment and returns the interest and principal portions.
func (a *amortizer) step() (interest, principal float64) {
	if a.balance <= 0 {
		return 0, 0
	}
	interest = a.balance * a.monthlyRate
	principal = a.payment - interest
	if principal > a.balance {
		principal = a.balance
	}
	a.balance = math.Max(0, a.balance-principal)
	return interest, principal
}

func (a *amortizer) year() {
	for m := 0; m < 12 && a.balance > 0; m++ {
		a.step()
	}
}

// EquityProjection yields one snapshot per year for the given number of years.
// Each range over the sequence restarts the simulation from the purchase.
func EquityProjection(price, downPayment, loan, annualRate float64, termYears int, annualAppreciation float64, years int) iter.Seq[models.EquitySnapshot] {
	return func(yield func(models.EquitySnapshot) bool) {
		am := newAmortizer(loan, annualRate, termYears)
		for year := 1; year <= years; year++ {
			am.year()
			if !yield(equitySnapshot(price, loan, annualAppreciation, year, am.balance)) {
				return
			}
		}
	}
}

// TotalValueProjection yields equity plus cumulative cash flow per year. Cash invested
// here is the down payment alone; closing costs are accounted for elsewhere.
func TotalValueProjection(price, downPayment, loan, annualRate float64, termYears int, annualAppreciation, annualCashFlow float64, years int) iter.Seq[models.ValueSnapshot] {
	return func(yield func(models.ValueSnapshot) bool) {
		am := newAmortizer(loan, annualRate, termYears)
		cashInvested := downPayment
		cumulative := 0.0
		for year := 1; year <= years; year++ {
			am.year()
			cumulative += annualCashFlow

			eq := equitySnapshot(price, loan, annualAppreciation, year, am.balance)
			totalValue := eq.Equity + cumulative
			netGain := totalValue - cashInvested
			totalROI := 0.0
			if cashInvested > 0 {
				totalROI = netGain / cashInvested
			}
			snap := models.ValueSnapshot{
				EquitySnapshot:     eq,
				CumulativeCashFlow: cumulative,
				TotalValue:         totalValue,
				NetGain:            netGain,
				TotalROI:           totalROI,
				AnnualizedROI:      totalROI / float64(year),
			}
			if !yield(snap) {
				return
			}
		}
	}
}

// AmortizationSchedule yields every monthly payment until the loan is repaid.
func AmortizationSchedule(principal, annualRate float64, termYears int) iter.Seq[models.AmortizationRow] {
	return func(yield func(models.AmortizationRow) bool) {
		am := newAmortizer(principal, annualRate, termYears)
		for month := 1; month <= termYears*12 && am.balance > 0; month++ {
			interest, paid := am.step()
			row := models.AmortizationRow{
				Month:     month,
				Payment:   interest + paid,
				Interest:  interest,
				Principal: paid,
				Balance:   am.balance,
			}
			if !yield(row) {
				return
			}
		}
	}
}

func equitySnapshot(price, loan, appreciation float64, year int, balance float64) models.EquitySnapshot {
	homeValue := price * math.Pow(1+appreciation, float64(year))
	return models.EquitySnapshot{
		Year:             year,
		HomeValue:        homeValue,
		RemainingBalance: balance,
		Equity:           homeValue - balance,
		AppreciationGain: homeValue - price,
		PrincipalPaid:    loan - balance,
	}
}
