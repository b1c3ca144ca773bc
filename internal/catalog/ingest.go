package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jalai-llc/bundongsan/internal/models"
)

// CountyDefault carries the per-county values ingestion cannot read from the feed.
type CountyDefault struct {
	Region      string  `json:"region" yaml:"region"`
	TaxRate     float64 `json:"tax_rate" yaml:"tax_rate"`
	VacancyRate float64 `json:"vacancy_rate" yaml:"vacancy_rate"`
}

// CountyDefaults selects the counties to ingest and their defaults. Rates are percents.
type CountyDefaults struct {
	State                   string                   `json:"state" yaml:"state"`
	Counties                map[string]CountyDefault `json:"counties" yaml:"counties"`
	FallbackRegion          string                   `json:"fallback_region" yaml:"fallback_region"`
	FallbackTaxRate         float64                  `json:"fallback_tax_rate" yaml:"fallback_tax_rate"`
	FallbackVacancyRate     float64                  `json:"fallback_vacancy_rate" yaml:"fallback_vacancy_rate"`
	DefaultAppreciationRate float64                  `json:"default_appreciation_rate" yaml:"default_appreciation_rate"`
	InsuranceRate           float64                  `json:"insurance_rate" yaml:"insurance_rate"`
	MaintenanceRate         float64                  `json:"maintenance_rate" yaml:"maintenance_rate"`
}

// DefaultCountyDefaults returns the Southern California county table.
func DefaultCountyDefaults() CountyDefaults {
	return CountyDefaults{
		State: "CA",
		Counties: map[string]CountyDefault{
			"Los Angeles County":    {Region: "SoCal - LA", TaxRate: 1.16, VacancyRate: 4},
			"Orange County":         {Region: "SoCal - OC", TaxRate: 1.08, VacancyRate: 3},
			"Riverside County":      {Region: "Inland Empire", TaxRate: 1.25, VacancyRate: 5},
			"San Bernardino County": {Region: "Inland Empire", TaxRate: 1.28, VacancyRate: 6},
			"San Diego County":      {Region: "SoCal - SD", TaxRate: 1.13, VacancyRate: 4},
		},
		FallbackRegion:          "SoCal",
		FallbackTaxRate:         1.16,
		FallbackVacancyRate:     5,
		DefaultAppreciationRate: 2,
		InsuranceRate:           0.0035,
		MaintenanceRate:         1,
	}
}

var dateColumn = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// marketTable is a wide Zillow export: identifying columns followed by one column per month.
type marketTable struct {
	columns map[string]int
	dates   []string // newest first
	rows    [][]string
}

func readMarketTable(r io.Reader) (*marketTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := &marketTable{columns: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		t.columns[h] = i
		if dateColumn.MatchString(h) {
			t.dates = append(t.dates, h)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(t.dates)))

	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

func (t *marketTable) field(row []string, name string) string {
	i, ok := t.columns[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *marketTable) value(row []string, date string) (float64, bool) {
	v, err := strconv.ParseFloat(t.field(row, date), 64)
	if err != nil || !(v > 0) {
		return 0, false
	}
	return v, true
}

// latest returns the newest positive observation and its date.
func (t *marketTable) latest(row []string) (float64, string, bool) {
	for _, d := range t.dates {
		if v, ok := t.value(row, d); ok {
			return v, d, true
		}
	}
	return 0, "", false
}

// yearAgo returns the observation twelve months before date, if the feed has that exact column.
func (t *marketTable) yearAgo(row []string, date string) (float64, bool) {
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0, false
	}
	return t.value(row, fmt.Sprintf("%04d%s", year-1, date[4:]))
}

// Ingest turns a home value export (ZHVI) and a rent export (ZORI), both keyed by
// zipcode in RegionName, into property records sorted by region, city and zipcode.
// Zipcodes without a price are dropped; a missing rent becomes 0.
func Ingest(values, rents io.Reader, d CountyDefaults) ([]models.Property, error) {
	zhvi, err := readMarketTable(values)
	if err != nil {
		return nil, fmt.Errorf("failed to parse home values: %w", err)
	}
	zori, err := readMarketTable(rents)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rents: %w", err)
	}

	rentByZip := make(map[string][]string, len(zori.rows))
	for _, row := range zori.rows {
		if zori.field(row, "State") == d.State {
			rentByZip[zori.field(row, "RegionName")] = row
		}
	}

	var out []models.Property
	for _, row := range zhvi.rows {
		county := zhvi.field(row, "CountyName")
		cd, ok := d.Counties[county]
		if zhvi.field(row, "State") != d.State || !ok {
			continue
		}
		raw, date, ok := zhvi.latest(row)
		if !ok {
			continue
		}
		price := math.Round(raw)

		appreciation := d.DefaultAppreciationRate
		if prev, ok := zhvi.yearAgo(row, date); ok {
			appreciation = math.Round((price/prev-1)*100*10) / 10
		}

		rent := 0.0
		if rentRow, ok := rentByZip[zhvi.field(row, "RegionName")]; ok {
			if v, _, ok := zori.latest(rentRow); ok {
				rent = math.Round(v)
			}
		}

		city := zhvi.field(row, "City")
		if city == "" {
			city = "Unknown"
		}
		out = append(out, models.Property{
			Zipcode:          zhvi.field(row, "RegionName"),
			Name:             city,
			City:             city,
			Region:           firstNonEmpty(cd.Region, d.FallbackRegion),
			MedianPrice:      price,
			ExpectedRent:     rent,
			PropertyTaxRate:  firstPositive(cd.TaxRate, d.FallbackTaxRate),
			AnnualInsurance:  math.Round(price * d.InsuranceRate),
			VacancyRate:      firstPositive(cd.VacancyRate, d.FallbackVacancyRate),
			MaintenanceRate:  d.MaintenanceRate,
			AppreciationRate: appreciation,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Region != b.Region {
			return a.Region < b.Region
		}
		if a.City != b.City {
			return a.City < b.City
		}
		return a.Zipcode < b.Zipcode
	})
	return out, nil
}

func firstNonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func firstPositive(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}
