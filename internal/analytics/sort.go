package analytics

import (
	"sort"

	"github.com/jalai-llc/bundongsan/internal/models"
)

// NormalizeSort resolves an unknown key to capRate and an unknown direction to desc.
func NormalizeSort(key models.SortKey, dir models.SortDirection) (models.SortKey, models.SortDirection) {
	if _, ok := sortValues[key]; !ok && key != models.SortCity {
		key = models.SortCapRate
	}
	if dir != models.SortAsc {
		dir = models.SortDesc
	}
	return key, dir
}

var sortValues = map[models.SortKey]func(models.RankedProperty) float64{
	models.SortCapRate:         func(r models.RankedProperty) float64 { return r.Metrics.CapRate },
	models.SortCashOnCash:      func(r models.RankedProperty) float64 { return r.Metrics.CashOnCash },
	models.SortMonthlyCashFlow: func(r models.RankedProperty) float64 { return r.Metrics.MonthlyCashFlow },
	models.SortTotalReturn:     func(r models.RankedProperty) float64 { return r.Metrics.TotalAnnualReturn },
	models.SortPrice:           func(r models.RankedProperty) float64 { return r.MedianPrice },
	models.SortPriceDesc:       func(r models.RankedProperty) float64 { return r.MedianPrice },
	models.SortNetGain5:        func(r models.RankedProperty) float64 { return r.Metrics.NetGainAt(5) },
	models.SortNetGain10:       func(r models.RankedProperty) float64 { return r.Metrics.NetGainAt(10) },
	models.SortAppreciation:    func(r models.RankedProperty) float64 { return r.Metrics.AppreciationRate },
}

// sortRanked orders items in place. Equal keys keep their collection order.
// priceDesc is always descending and city always ascending.
func sortRanked(items []models.RankedProperty, key models.SortKey, dir models.SortDirection) {
	if key == models.SortCity {
		sort.SliceStable(items, func(i, j int) bool { return items[i].City < items[j].City })
		return
	}
	value := sortValues[key]
	desc := dir == models.SortDesc || key == models.SortPriceDesc
	sort.SliceStable(items, func(i, j int) bool {
		a, b := value(items[i]), value(items[j])
		if desc {
			return a > b
		}
		return a < b
	})
}
