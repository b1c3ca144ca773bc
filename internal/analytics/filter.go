package analytics

import (
	"strings"

	"github.com/jalai-llc/bundongsan/internal/geo"
	"github.com/jalai-llc/bundongsan/internal/models"
)

// candidate is a record that survived the cheap filters, with its distance when
// a proximity filter is active.
type candidate struct {
	property models.Property
	distance *float64
}

// filterProximity keeps records within the radius of the reference postal code.
// An unresolvable reference yields no records.
func filterProximity(records []models.Property, f *models.ProximityFilter, idx *geo.Index) []candidate {
	if !f.Active() {
		out := make([]candidate, 0, len(records))
		for _, p := range records {
			out = append(out, candidate{property: p})
		}
		return out
	}

	origin, ok := idx.Lookup(f.Zipcode)
	if !ok {
		return []candidate{}
	}

	out := make([]candidate, 0, len(records))
	for _, p := range records {
		c, ok := idx.Resolve(p)
		if !ok {
			continue
		}
		d := geo.DistanceMiles(origin, c)
		if d <= f.RadiusMiles {
			out = append(out, candidate{property: p, distance: &d})
		}
	}
	return out
}

func filterLocation(in []candidate, region, city string) []candidate {
	if region == "" && city == "" {
		return in
	}
	out := in[:0:0]
	for _, c := range in {
		if region != "" && c.property.Region != region {
			continue
		}
		if city != "" && c.property.City != city {
			continue
		}
		out = append(out, c)
	}
	return out
}

func filterQuery(in []candidate, query string) []candidate {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return in
	}
	out := in[:0:0]
	for _, c := range in {
		if matchesQuery(c.property, q) {
			out = append(out, c)
		}
	}
	return out
}

func matchesQuery(p models.Property, q string) bool {
	for _, field := range []string{p.Name, p.City, p.Zipcode, p.Region} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
