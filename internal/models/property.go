package models

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LifestyleScores are 1-10 display ratings attached by catalog enrichment.
// They are never read by any formula.
type LifestyleScores struct {
	School int `json:"school_score"`
	Safety int `json:"safety_score"`
	Walk   int `json:"walk_score"`
}

// Property represents a market record (usually one zipcode) in the user's collection.
// All rate fields are percents: 1.25 means 1.25%.
type Property struct {
	ID               string           `json:"id"`
	Zipcode          string           `json:"zipcode,omitempty"`
	Name             string           `json:"name"`
	City             string           `json:"city"`
	Region           string           `json:"region,omitempty"`
	MedianPrice      float64          `json:"median_price"`
	ExpectedRent     float64          `json:"expected_rent"`
	PropertyTaxRate  float64          `json:"property_tax_rate"`
	MonthlyHOA       float64          `json:"monthly_hoa"`
	AnnualInsurance  float64          `json:"annual_insurance"`
	VacancyRate      float64          `json:"vacancy_rate"`
	MaintenanceRate  float64          `json:"maintenance_rate"`
	ManagementFee    float64          `json:"management_fee"`
	AppreciationRate float64          `json:"appreciation_rate"`
	Appreciation5yr  *float64         `json:"appreciation_5yr,omitempty"`
	Coordinate       *Coordinate      `json:"coordinate,omitempty"`
	Scores           *LifestyleScores `json:"scores,omitempty"`

	// Financing snapshot, overwritten from the active LoanTerms before every computation.
	DownPaymentPercent float64 `json:"down_payment_percent"`
	InterestRate       float64 `json:"interest_rate"`
	LoanTermYears      int     `json:"loan_term_years"`
	ClosingCostRate    float64 `json:"closing_cost_rate"`
}

// Key is the identity used for deduplication: zipcode, falling back to name for legacy records.
func (p Property) Key() string {
	if p.Zipcode != "" {
		return p.Zipcode
	}
	return p.Name
}

// Usable reports whether the record can be priced at all.
func (p Property) Usable() bool {
	return p.MedianPrice > 0
}

// Validate checks the fields required to add a record by hand.
func (p Property) Validate() error {
	if p.City == "" {
		return ErrMissingCity
	}
	if p.MedianPrice <= 0 {
		return ErrMissingPrice
	}
	return nil
}

// ApplyFinancing returns a copy of the record carrying the given loan terms.
func (p Property) ApplyFinancing(t LoanTerms) Property {
	p.DownPaymentPercent = t.DownPaymentPercent
	p.InterestRate = t.InterestRate * 100
	p.LoanTermYears = t.TermYears
	p.ClosingCostRate = t.ClosingCostRate * 100
	return p
}

// DefaultProperty returns the form defaults for a hand-entered record.
func DefaultProperty(taxRatePct float64) Property {
	return Property{
		PropertyTaxRate:  taxRatePct,
		AnnualInsurance:  1500,
		VacancyRate:      5,
		MaintenanceRate:  1,
		AppreciationRate: 3,
	}
}
