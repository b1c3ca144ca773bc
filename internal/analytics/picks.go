package analytics

import (
	"sort"

	"github.com/jalai-llc/bundongsan/internal/models"
)

// TopPicks selects the standout records of a view. The return-based picks only
// consider records with a rent estimate.
func TopPicks(view models.RankedView) models.TopPicks {
	var picks models.TopPicks
	for i := range view.Items {
		item := &view.Items[i]
		if item.ExpectedRent > 0 {
			if picks.BestCapRate == nil || item.Metrics.CapRate > picks.BestCapRate.Metrics.CapRate {
				picks.BestCapRate = item
			}
			if picks.BestCashFlow == nil || item.Metrics.MonthlyCashFlow > picks.BestCashFlow.Metrics.MonthlyCashFlow {
				picks.BestCashFlow = item
			}
			if picks.BestTotalReturn == nil || item.Metrics.TotalAnnualReturn > picks.BestTotalReturn.Metrics.TotalAnnualReturn {
				picks.BestTotalReturn = item
			}
		}
		if item.Affordability.Affordable.IsTrue() {
			if picks.CheapestAffordable == nil || item.MedianPrice < picks.CheapestAffordable.MedianPrice {
				picks.CheapestAffordable = item
			}
		}
	}
	return picks
}

// AffordableCount counts the records the household can buy. Without financials
// nothing rules a record out, so every record counts.
func AffordableCount(view models.RankedView) int {
	n := 0
	for _, item := range view.Items {
		if item.Affordability.Affordable != models.No {
			n++
		}
	}
	return n
}

// Facets lists the distinct regions of the collection and the cities within region
// (all cities when region is empty), both sorted.
func Facets(records []models.Property, region string) models.Facets {
	regions := map[string]struct{}{}
	cities := map[string]struct{}{}
	for _, p := range records {
		if p.Region != "" {
			regions[p.Region] = struct{}{}
		}
		if p.City != "" && (region == "" || p.Region == region) {
			cities[p.City] = struct{}{}
		}
	}
	return models.Facets{Regions: sortedKeys(regions), Cities: sortedKeys(cities)}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
