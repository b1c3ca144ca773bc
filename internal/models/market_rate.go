package models

import "time"

// MarketRate is an observed average 30-year fixed mortgage rate.
type MarketRate struct {
	ObservedOn time.Time `json:"observed_on"`
	Rate       float64   `json:"rate"` // fraction
	Source     string    `json:"source"`
}
