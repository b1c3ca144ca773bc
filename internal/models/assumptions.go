package models

// MarketAssumptions are the lookup tables and constants shared by the solver,
// metrics engine and affordability checker. Rates are fractions.
type MarketAssumptions struct {
	HomeownersInsuranceRate float64                        `yaml:"homeowners_insurance_rate" json:"homeowners_insurance_rate"`
	MortgageInsuranceRate   float64                        `yaml:"mortgage_insurance_rate" json:"mortgage_insurance_rate"`
	MortgageInsuranceLTV    float64                        `yaml:"mortgage_insurance_ltv" json:"mortgage_insurance_ltv"`
	ConformingLoanLimit     float64                        `yaml:"conforming_loan_limit" json:"conforming_loan_limit"`
	ConformingLimitHighCost float64                        `yaml:"conforming_loan_limit_high_cost" json:"conforming_loan_limit_high_cost"`
	BackEndDTIMax           float64                        `yaml:"back_end_dti_max" json:"back_end_dti_max"`
	DefaultAppreciationRate float64                        `yaml:"default_appreciation_rate" json:"default_appreciation_rate"`
	DefaultTakeHomeRate     float64                        `yaml:"default_take_home_rate" json:"default_take_home_rate"`
	ProjectionYears         int                            `yaml:"projection_years" json:"projection_years"`
	SearchBracket           float64                        `yaml:"search_bracket" json:"search_bracket"`
	SweepBracket            float64                        `yaml:"sweep_bracket" json:"sweep_bracket"`
	SearchIterations        int                            `yaml:"search_iterations" json:"search_iterations"`
	DownPaymentSweep        []float64                      `yaml:"down_payment_sweep" json:"down_payment_sweep"`
	ComfortPresets          map[ComfortLevel]ComfortPreset `yaml:"comfort_presets" json:"comfort_presets"`
}

// DefaultMarketAssumptions returns the California 2026 defaults.
func DefaultMarketAssumptions() MarketAssumptions {
	return MarketAssumptions{
		HomeownersInsuranceRate: 0.0035,
		MortgageInsuranceRate:   0.007,
		MortgageInsuranceLTV:    0.8,
		ConformingLoanLimit:     832750,
		ConformingLimitHighCost: 1249125,
		BackEndDTIMax:           0.43,
		DefaultAppreciationRate: 0.03,
		DefaultTakeHomeRate:     0.70,
		ProjectionYears:         10,
		SearchBracket:           5_000_000,
		SweepBracket:            10_000_000,
		SearchIterations:        50,
		DownPaymentSweep:        []float64{3, 5, 10, 15, 20, 25, 30},
		ComfortPresets: map[ComfortLevel]ComfortPreset{
			ComfortConservative: {Label: "Conservative", FrontEndDTI: 0.25, BackEndDTI: 0.33, BufferRate: 0.15},
			ComfortStandard:     {Label: "Standard", FrontEndDTI: 0.28, BackEndDTI: 0.36, BufferRate: 0.10},
			ComfortAggressive:   {Label: "Aggressive", FrontEndDTI: 0.31, BackEndDTI: 0.43, BufferRate: 0.05},
		},
	}
}

// Preset resolves a comfort level, falling back to standard.
func (a MarketAssumptions) Preset(level ComfortLevel) ComfortPreset {
	if p, ok := a.ComfortPresets[level]; ok {
		return p
	}
	if p, ok := a.ComfortPresets[ComfortStandard]; ok {
		return p
	}
	return DefaultMarketAssumptions().ComfortPresets[ComfortStandard]
}

// ConformingLimit selects the loan ceiling for the area.
func (a MarketAssumptions) ConformingLimit(highCost bool) float64 {
	if highCost {
		return a.ConformingLimitHighCost
	}
	return a.ConformingLoanLimit
}
