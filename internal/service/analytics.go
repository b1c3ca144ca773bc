package service

import (
	"context"
	"fmt"

	"github.com/jalai-llc/bundongsan/internal/analytics"
	"github.com/jalai-llc/bundongsan/internal/models"
)

// BuyingPower solves the caller's maximum affordable price
func (s *Service) BuyingPower(ctx context.Context) (models.BuyingPower, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return models.BuyingPower{}, err
	}
	bp := s.solver.MaxAffordablePrice(snap.Profile, snap.Terms)
	s.metrics.RecordSolver(string(bp.LimitingConstraint))
	return bp, nil
}

// DownPaymentOptions sweeps the configured down payment percents
func (s *Service) DownPaymentOptions(ctx context.Context) (models.DownPaymentSweep, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return models.DownPaymentSweep{}, err
	}
	return s.solver.DownPaymentOptions(snap.Profile, snap.Terms, s.config.Assumptions.DownPaymentSweep), nil
}

// BudgetScenario evaluates a single target price against the caller's profile
func (s *Service) BudgetScenario(ctx context.Context, targetPrice, monthlyHOA float64) (models.TargetScenario, error) {
	if targetPrice <= 0 {
		return models.TargetScenario{}, fmt.Errorf("%w: target price must be positive", ErrInvalidInput)
	}
	if monthlyHOA < 0 {
		return models.TargetScenario{}, fmt.Errorf("%w: monthly HOA must not be negative", ErrInvalidInput)
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return models.TargetScenario{}, err
	}
	return s.solver.EvaluateTarget(targetPrice, monthlyHOA, snap.Profile, snap.Terms), nil
}

// rank runs a ranking pass against one snapshot.
func (s *Service) rank(ctx context.Context, snap WorkspaceSnapshot, filters models.ViewFilters) models.RankedView {
	in := models.ViewInputs{Profile: snap.Profile, Terms: snap.Terms, Filters: filters}
	return s.ranker.Rank(ctx, snap.scope(), snap.Version, snap.Records, in)
}

// RankedView returns the caller's filtered, annotated and sorted collection
func (s *Service) RankedView(ctx context.Context, filters models.ViewFilters) (models.RankedView, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return models.RankedView{}, err
	}
	return s.rank(ctx, snap, filters), nil
}

// TopPicks highlights the strongest records of the filtered view
func (s *Service) TopPicks(ctx context.Context, filters models.ViewFilters) (models.TopPicks, error) {
	view, err := s.RankedView(ctx, filters)
	if err != nil {
		return models.TopPicks{}, err
	}
	return analytics.TopPicks(view), nil
}

// Facets lists the regions and cities of the caller's collection and how many
// records are affordable
func (s *Service) Facets(ctx context.Context, region string) (models.Facets, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return models.Facets{}, err
	}
	facets := analytics.Facets(snap.Records, region)
	facets.AffordableCount = analytics.AffordableCount(s.rank(ctx, snap, models.ViewFilters{}))
	return facets, nil
}

// PropertyMetrics annotates one record with its metrics and affordability
func (s *Service) PropertyMetrics(ctx context.Context, id string) (models.RankedProperty, error) {
	snap, p, err := s.lookup(ctx, id)
	if err != nil {
		return models.RankedProperty{}, err
	}
	return s.ranker.Ranker().Annotate(p, snap.Profile, snap.Terms), nil
}

// PaymentSchedule returns the month-by-month amortization of one record's loan
func (s *Service) PaymentSchedule(ctx context.Context, id string) (models.PaymentSchedule, error) {
	snap, p, err := s.lookup(ctx, id)
	if err != nil {
		return models.PaymentSchedule{}, err
	}
	return s.ranker.Ranker().Engine().Schedule(p, snap.Terms), nil
}
