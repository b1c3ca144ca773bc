package models

// SortKey selects the metric a ranked view is ordered by.
type SortKey string

const (
	SortCapRate         SortKey = "capRate"
	SortCashOnCash      SortKey = "cashOnCash"
	SortMonthlyCashFlow SortKey = "monthlyCashFlow"
	SortTotalReturn     SortKey = "totalReturn"
	SortPrice           SortKey = "price"
	SortPriceDesc       SortKey = "priceDesc"
	SortNetGain5        SortKey = "netGain5"
	SortNetGain10       SortKey = "netGain10"
	SortAppreciation    SortKey = "appreciation"
	SortCity            SortKey = "city"
)

// SortDirection orders a ranked view.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ProximityFilter limits a view to records within RadiusMiles of a postal code.
type ProximityFilter struct {
	Zipcode     string  `json:"zipcode"`
	RadiusMiles float64 `json:"radius_miles"`
}

// Active reports whether the filter was requested.
func (f *ProximityFilter) Active() bool {
	return f != nil && f.RadiusMiles > 0
}

// ViewFilters are the user's filter and sort selections.
type ViewFilters struct {
	Proximity      *ProximityFilter `json:"proximity,omitempty"`
	Region         string           `json:"region,omitempty"`
	City           string           `json:"city,omitempty"`
	Query          string           `json:"query,omitempty"`
	AffordableOnly bool             `json:"affordable_only,omitempty"`
	SortBy         SortKey          `json:"sort_by"`
	Direction      SortDirection    `json:"direction"`
}

// ViewInputs is the complete, consistent snapshot a ranking pass runs against.
type ViewInputs struct {
	Profile FinancialProfile `json:"profile"`
	Terms   LoanTerms        `json:"terms"`
	Filters ViewFilters      `json:"filters"`
}

// RankedProperty is a record annotated with its derived figures.
type RankedProperty struct {
	Property
	DistanceMiles *float64            `json:"distance_miles,omitempty"`
	Metrics       MetricsBundle       `json:"metrics"`
	Affordability AffordabilityResult `json:"affordability"`
}

// RankedView is the filtered, annotated and sorted collection.
type RankedView struct {
	Items        []RankedProperty `json:"items"`
	TotalRecords int              `json:"total_records"`
	SortBy       SortKey          `json:"sort_by"`
	Direction    SortDirection    `json:"direction"`
}

// TopPicks highlights the strongest records of a view.
type TopPicks struct {
	BestCapRate        *RankedProperty `json:"best_cap_rate,omitempty"`
	BestCashFlow       *RankedProperty `json:"best_cash_flow,omitempty"`
	BestTotalReturn    *RankedProperty `json:"best_total_return,omitempty"`
	CheapestAffordable *RankedProperty `json:"cheapest_affordable,omitempty"`
}

// Facets lists the distinct regions and cities available for filtering.
type Facets struct {
	Regions         []string `json:"regions"`
	Cities          []string `json:"cities"`
	AffordableCount int      `json:"affordable_count"`
}
