package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/jalai-llc/bundongsan/internal/catalog"
	"github.com/jalai-llc/bundongsan/internal/models"
	"github.com/jalai-llc/bundongsan/internal/repository"
)

// Workspace is one user's mutable state: profile, loan terms and collection.
// Writers hold mu for the whole change so a snapshot never mixes old and new values.
type Workspace struct {
	mu         sync.Mutex
	userID     int64
	loadedAt   int64
	profile    models.FinancialProfile
	terms      models.LoanTerms
	collection *catalog.Collection
}

// WorkspaceSnapshot is a consistent copy of a workspace.
type WorkspaceSnapshot struct {
	UserID  int64
	Epoch   int64
	Profile models.FinancialProfile
	Terms   models.LoanTerms
	Records []models.Property
	Version uint64
}

// Snapshot copies the workspace atomically.
func (w *Workspace) Snapshot() WorkspaceSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	records, version := w.collection.Snapshot()
	return WorkspaceSnapshot{
		UserID:  w.userID,
		Epoch:   w.loadedAt,
		Profile: w.profile,
		Terms:   w.terms,
		Records: records,
		Version: version,
	}
}

// scope keys cached views for the snapshot's user. Collection versions restart
// when a workspace is loaded, so the load time is part of the scope.
func (s WorkspaceSnapshot) scope() string {
	return strconv.FormatInt(s.UserID, 10) + ":" + strconv.FormatInt(s.Epoch, 10)
}

// workspace returns the user's workspace, loading it from the store on first use.
// Missing profile or terms fall back to defaults.
func (s *Service) workspace(ctx context.Context, userID int64) (*Workspace, error) {
	s.mu.Lock()
	ws, ok := s.workspaces[userID]
	s.mu.Unlock()
	if ok {
		return ws, nil
	}

	profile, err := s.repo.GetProfile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		profile, err = models.DefaultFinancialProfile(), nil
	}
	if err != nil {
		return nil, err
	}

	terms, err := s.repo.GetLoanTerms(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		terms, err = models.DefaultLoanTerms(), nil
	}
	if err != nil {
		return nil, err
	}

	records, err := s.repo.ListProperties(ctx, userID)
	if err != nil {
		return nil, err
	}

	loaded := &Workspace{
		userID:     userID,
		loadedAt:   time.Now().UnixNano(),
		profile:    profile.Normalize(),
		terms:      terms,
		collection: catalog.NewCollection(records),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have loaded it meanwhile; keep the first.
	if ws, ok := s.workspaces[userID]; ok {
		return ws, nil
	}
	s.workspaces[userID] = loaded
	s.log.WithField("user_id", userID).Debugf("Loaded workspace with %d properties", len(records))
	return loaded, nil
}

// current resolves the caller's workspace.
func (s *Service) current(ctx context.Context) (*Workspace, error) {
	id, err := userID(ctx)
	if err != nil {
		return nil, err
	}
	return s.workspace(ctx, id)
}

// snapshot resolves the caller's workspace and copies it.
func (s *Service) snapshot(ctx context.Context) (WorkspaceSnapshot, error) {
	ws, err := s.current(ctx)
	if err != nil {
		return WorkspaceSnapshot{}, err
	}
	return ws.Snapshot(), nil
}

// GetProfile returns the caller's financial profile
func (s *Service) GetProfile(ctx context.Context) (models.FinancialProfile, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return models.FinancialProfile{}, err
	}
	return snap.Profile, nil
}

// UpdateProfile normalizes and stores the caller's financial profile
func (s *Service) UpdateProfile(ctx context.Context, p models.FinancialProfile) (models.FinancialProfile, error) {
	ws, err := s.current(ctx)
	if err != nil {
		return models.FinancialProfile{}, err
	}
	p = p.Normalize()

	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := s.repo.SaveProfile(ctx, ws.userID, p); err != nil {
		return models.FinancialProfile{}, err
	}
	ws.profile = p
	s.log.WithField("user_id", ws.userID).Info("Financial profile updated")
	return p, nil
}

// GetLoanTerms returns the caller's loan terms
func (s *Service) GetLoanTerms(ctx context.Context) (models.LoanTerms, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return models.LoanTerms{}, err
	}
	return snap.Terms, nil
}

// UpdateLoanTerms validates and stores the caller's loan terms and restamps the
// collection with them. Terms and collection are saved together; on failure the
// workspace keeps its previous state.
func (s *Service) UpdateLoanTerms(ctx context.Context, t models.LoanTerms) (models.LoanTerms, error) {
	if err := t.Validate(); err != nil {
		return models.LoanTerms{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	ws, err := s.current(ctx)
	if err != nil {
		return models.LoanTerms{}, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	staged := ws.collection.Clone()
	staged.ApplyFinancing(t)
	records, _ := staged.Snapshot()
	if err := s.repo.SaveFinancing(ctx, ws.userID, t, records); err != nil {
		return models.LoanTerms{}, err
	}
	ws.terms = t
	ws.collection = staged
	s.log.WithField("user_id", ws.userID).Info("Loan terms updated")
	return t, nil
}
