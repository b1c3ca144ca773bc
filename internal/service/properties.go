package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jalai-llc/bundongsan/internal/catalog"
	"github.com/jalai-llc/bundongsan/internal/models"
)

// mapCatalogError translates collection errors to service sentinels.
func mapCatalogError(err error) error {
	switch {
	case errors.Is(err, catalog.ErrPropertyNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, models.ErrMissingCity), errors.Is(err, models.ErrMissingPrice):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return err
}

// lookup finds one record in the caller's snapshot.
func (s *Service) lookup(ctx context.Context, id string) (WorkspaceSnapshot, models.Property, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return WorkspaceSnapshot{}, models.Property{}, err
	}
	for _, p := range snap.Records {
		if p.ID == id {
			return snap, p, nil
		}
	}
	return WorkspaceSnapshot{}, models.Property{}, mapCatalogError(catalog.ErrPropertyNotFound)
}

// mutate applies fn to a copy of the caller's collection, persists the copy and
// only then makes it current. A failed change or save leaves the workspace as it was.
func (s *Service) mutate(ctx context.Context, fn func(c *catalog.Collection, terms models.LoanTerms) error) error {
	ws, err := s.current(ctx)
	if err != nil {
		return err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()

	staged := ws.collection.Clone()
	if err := fn(staged, ws.terms); err != nil {
		return mapCatalogError(err)
	}
	records, _ := staged.Snapshot()
	if err := s.repo.ReplaceProperties(ctx, ws.userID, records); err != nil {
		return fmt.Errorf("failed to save properties: %w", err)
	}
	ws.collection = staged
	return nil
}

// AddProperty adds a hand-entered record to the caller's collection
func (s *Service) AddProperty(ctx context.Context, p models.Property) (models.Property, error) {
	var added models.Property
	err := s.mutate(ctx, func(c *catalog.Collection, terms models.LoanTerms) error {
		if p.PropertyTaxRate == 0 {
			p.PropertyTaxRate = terms.PropertyTaxRate * 100
		}
		var err error
		added, err = c.Add(p.ApplyFinancing(terms))
		return err
	})
	if err != nil {
		return models.Property{}, err
	}
	s.log.WithField("property_id", added.ID).Info("Property added")
	return added, nil
}

// UpdateProperty replaces a record of the caller's collection
func (s *Service) UpdateProperty(ctx context.Context, p models.Property) (models.Property, error) {
	var updated models.Property
	err := s.mutate(ctx, func(c *catalog.Collection, terms models.LoanTerms) error {
		var err error
		updated, err = c.Update(p.ApplyFinancing(terms))
		return err
	})
	if err != nil {
		return models.Property{}, err
	}
	return updated, nil
}

// DeleteProperty removes a record from the caller's collection
func (s *Service) DeleteProperty(ctx context.Context, id string) error {
	return s.mutate(ctx, func(c *catalog.Collection, _ models.LoanTerms) error {
		return c.Remove(id)
	})
}

// MergeSeed merges the seed catalog into the caller's collection
func (s *Service) MergeSeed(ctx context.Context) (catalog.MergeResult, error) {
	if len(s.seed) == 0 {
		return catalog.MergeResult{}, fmt.Errorf("%w: no seed catalog loaded", ErrNotFound)
	}
	var res catalog.MergeResult
	err := s.mutate(ctx, func(c *catalog.Collection, terms models.LoanTerms) error {
		res = c.MergeSeed(s.seed, terms)
		return nil
	})
	if err != nil {
		return catalog.MergeResult{}, err
	}
	s.log.WithFields(logrus.Fields{
		"added":      res.Added,
		"backfilled": res.Backfilled,
		"skipped":    res.Skipped,
	}).Info("Seed catalog merged")
	return res, nil
}

// ClearSeeded removes every record whose identity key appears in the seed catalog
func (s *Service) ClearSeeded(ctx context.Context) (int, error) {
	var removed int
	err := s.mutate(ctx, func(c *catalog.Collection, _ models.LoanTerms) error {
		removed = c.ClearSeeded(s.seed)
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Infof("Cleared %d seeded properties", removed)
	return removed, nil
}
