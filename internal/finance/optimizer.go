package finance

import "github.com/jalai-llc/bundongsan/internal/models"

// DownPaymentOptions sweeps down payment percents and solves the max price for each,
// searching the wider sweep bracket. An empty percents list uses the configured sweep.
func (s *Solver) DownPaymentOptions(p models.FinancialProfile, t models.LoanTerms, percents []float64) models.DownPaymentSweep {
	if len(percents) == 0 {
		percents = s.assumptions.DownPaymentSweep
	}
	bracket := s.assumptions.SweepBracket
	if bracket <= 0 {
		bracket = s.assumptions.SearchBracket
	}

	sweep := models.DownPaymentSweep{Options: make([]models.DownPaymentOption, 0, len(percents))}
	for _, pct := range percents {
		if pct < 0 || pct > 100 {
			continue
		}
		terms := t
		terms.DownPaymentPercent = pct
		bp := s.maxAffordable(p, terms, bracket)

		opt := models.DownPaymentOption{
			DownPaymentPercent: pct,
			MaxPrice:           bp.MaxPrice,
			LimitingConstraint: bp.LimitingConstraint,
			CashNeeded:         bp.CashNeededAtMax,
		}
		if bp.PaymentAtMax != nil {
			opt.Payment = *bp.PaymentAtMax
			opt.NeedsMortgageInsurance = bp.PaymentAtMax.MortgageInsurance > 0
		}
		sweep.Options = append(sweep.Options, opt)
	}

	for i := range sweep.Options {
		if sweep.Best == nil || sweep.Options[i].MaxPrice > sweep.Best.MaxPrice {
			sweep.Best = &sweep.Options[i]
		}
	}
	return sweep
}
