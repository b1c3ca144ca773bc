package analytics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jalai-llc/bundongsan/internal/geo"
	"github.com/jalai-llc/bundongsan/internal/models"
	"github.com/jalai-llc/bundongsan/internal/monitoring"
)

// Ranker produces the filtered, annotated and sorted view of a collection.
type Ranker struct {
	engine  *Engine
	checker *Checker
	index   *geo.Index
	logger  *logrus.Logger
	metrics *monitoring.Metrics
}

// NewRanker wires a ranker. idx may be nil, in which case only records carrying
// their own coordinate can pass a proximity filter.
func NewRanker(a models.MarketAssumptions, idx *geo.Index, logger *logrus.Logger, metrics *monitoring.Metrics) *Ranker {
	return &Ranker{
		engine:  NewEngine(a),
		checker: NewChecker(a),
		index:   idx,
		logger:  logger,
		metrics: metrics,
	}
}

// Engine returns the metrics engine used by the ranker.
func (r *Ranker) Engine() *Engine { return r.engine }

// Checker returns the affordability checker used by the ranker.
func (r *Ranker) Checker() *Checker { return r.checker }

// Annotate computes metrics and affordability for one record.
func (r *Ranker) Annotate(p models.Property, profile models.FinancialProfile, terms models.LoanTerms) models.RankedProperty {
	return models.RankedProperty{
		Property:      p.ApplyFinancing(terms),
		Metrics:       r.engine.ComputeMetrics(p, terms, profile),
		Affordability: r.checker.Check(p, profile, terms),
	}
}

// Rank runs the pipeline: proximity, region and city, text search, metrics and
// affordability for the survivors, the affordable-only filter, then a stable sort.
func (r *Ranker) Rank(records []models.Property, in models.ViewInputs) models.RankedView {
	start := time.Now()
	profile := in.Profile.Normalize()
	key, dir := NormalizeSort(in.Filters.SortBy, in.Filters.Direction)

	survivors := filterProximity(records, in.Filters.Proximity, r.index)
	survivors = filterLocation(survivors, in.Filters.Region, in.Filters.City)
	survivors = filterQuery(survivors, in.Filters.Query)

	affordableOnly := in.Filters.AffordableOnly && profile.HasFinancials()
	items := make([]models.RankedProperty, 0, len(survivors))
	for _, c := range survivors {
		item := r.Annotate(c.property, profile, in.Terms)
		item.DistanceMiles = c.distance
		if affordableOnly && !item.Affordability.Affordable.IsTrue() {
			continue
		}
		items = append(items, item)
	}

	sortRanked(items, key, dir)

	elapsed := time.Since(start)
	r.metrics.RecordRanking(elapsed, len(items))
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{
			"records":  len(records),
			"ranked":   len(items),
			"sort_by":  key,
			"duration": elapsed.String(),
		}).Debug("Ranked property view")
	}

	return models.RankedView{
		Items:        items,
		TotalRecords: len(records),
		SortBy:       key,
		Direction:    dir,
	}
}

// ViewCache stores ranked views by fingerprint. Get returns nil, nil on a miss.
type ViewCache interface {
	Get(ctx context.Context, key string) (*models.RankedView, error)
	Set(ctx context.Context, key string, view models.RankedView) error
}

// CachedRanker memoizes ranked views by a fingerprint of every input, so a view
// is only reused when nothing it depends on has changed.
type CachedRanker struct {
	ranker *Ranker
	cache  ViewCache
}

// NewCachedRanker wraps ranker with cache.
func NewCachedRanker(ranker *Ranker, cache ViewCache) *CachedRanker {
	return &CachedRanker{ranker: ranker, cache: cache}
}

// Ranker returns the underlying ranker.
func (c *CachedRanker) Ranker() *Ranker { return c.ranker }

// Rank returns the cached view for the inputs or computes and stores it. scope
// separates collections (one per user); version must change whenever the
// collection does. Cache failures are logged and never fail the request.
func (c *CachedRanker) Rank(ctx context.Context, scope string, version uint64, records []models.Property, in models.ViewInputs) models.RankedView {
	key, err := Fingerprint(scope, version, in)
	if err != nil || c.cache == nil {
		return c.ranker.Rank(records, in)
	}

	cached, err := c.cache.Get(ctx, key)
	if err != nil {
		c.warn(err, "Failed to read ranked view cache")
	}
	if cached != nil {
		c.ranker.metrics.RecordViewCache(true)
		return *cached
	}
	c.ranker.metrics.RecordViewCache(false)

	view := c.ranker.Rank(records, in)
	if err := c.cache.Set(ctx, key, view); err != nil {
		c.warn(err, "Failed to store ranked view")
	}
	return view
}

func (c *CachedRanker) warn(err error, msg string) {
	if c.ranker.logger != nil {
		c.ranker.logger.WithError(err).Warn(msg)
	}
}

// Fingerprint hashes a ranking pass's inputs into a cache key.
func Fingerprint(scope string, version uint64, in models.ViewInputs) (string, error) {
	payload, err := json.Marshal(struct {
		Scope   string            `json:"scope"`
		Version uint64            `json:"version"`
		Inputs  models.ViewInputs `json:"inputs"`
	}{scope, version, in})
	if err != nil {
		return "", fmt.Errorf("failed to encode view inputs: %w", err)
	}
	sum := sha256.Sum256(payload)
	return "view:" + hex.EncodeToString(sum[:]), nil
}
