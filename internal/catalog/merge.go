package catalog

import (
	"github.com/google/uuid"

	"github.com/jalai-llc/bundongsan/internal/models"
)

// MergeResult reports what a seed merge changed.
type MergeResult struct {
	Added      int `json:"added"`
	Backfilled int `json:"backfilled"`
	Skipped    int `json:"skipped"`
}

// MergeSeed adds seed records whose identity key is not yet in the collection.
// Records already present keep every value the user set; only fields they lack
// are filled in from the seed. Merging the same seed again changes nothing.
func (c *Collection) MergeSeed(seed []models.Property, terms models.LoanTerms) MergeResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	byKey := make(map[string]int, len(c.items))
	for i, p := range c.items {
		if k := p.Key(); k != "" {
			byKey[k] = i
		}
	}

	var res MergeResult
	for _, s := range seed {
		key := s.Key()
		if key == "" || !s.Usable() {
			res.Skipped++
			continue
		}
		if i, ok := byKey[key]; ok {
			if backfill(&c.items[i], s) {
				res.Backfilled++
			}
			continue
		}
		s = s.ApplyFinancing(terms)
		s.ID = uuid.New().String()
		if s.Name == "" {
			s.Name = s.City
		}
		byKey[key] = len(c.items)
		c.items = append(c.items, s)
		res.Added++
	}

	if res.Added > 0 || res.Backfilled > 0 {
		c.version++
	}
	return res
}

// backfill copies the fields dst does not have from src.
func backfill(dst *models.Property, src models.Property) bool {
	changed := false
	fill := func(d *string, s string) {
		if *d == "" && s != "" {
			*d = s
			changed = true
		}
	}
	fill(&dst.Zipcode, src.Zipcode)
	fill(&dst.Name, src.Name)
	fill(&dst.City, src.City)
	fill(&dst.Region, src.Region)

	if dst.Appreciation5yr == nil && src.Appreciation5yr != nil {
		v := *src.Appreciation5yr
		dst.Appreciation5yr = &v
		changed = true
	}
	if dst.Coordinate == nil && src.Coordinate != nil {
		v := *src.Coordinate
		dst.Coordinate = &v
		changed = true
	}
	if dst.Scores == nil && src.Scores != nil {
		v := *src.Scores
		dst.Scores = &v
		changed = true
	}
	return changed
}

// ClearSeeded removes every record whose identity key appears in the seed and
// returns how many were removed.
func (c *Collection) ClearSeeded(seed []models.Property) int {
	keys := make(map[string]struct{}, len(seed))
	for _, s := range seed {
		if k := s.Key(); k != "" {
			keys[k] = struct{}{}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0]
	removed := 0
	for _, p := range c.items {
		if _, ok := keys[p.Key()]; ok {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	c.items = kept
	if removed > 0 {
		c.version++
	}
	return removed
}
