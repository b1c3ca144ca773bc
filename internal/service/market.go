package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jalai-llc/bundongsan/internal/analytics"
	"github.com/jalai-llc/bundongsan/internal/models"
	"github.com/jalai-llc/bundongsan/internal/repository"
	"github.com/jalai-llc/bundongsan/internal/utils/email"
)

// MarketRate returns the latest stored market mortgage rate
func (s *Service) MarketRate(ctx context.Context) (models.MarketRate, error) {
	rate, err := s.repo.LatestMarketRate(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return models.MarketRate{}, fmt.Errorf("%w: no market rate recorded", ErrNotFound)
	}
	return rate, err
}

// RefreshMarketRate fetches the current rate from the feed and stores it
func (s *Service) RefreshMarketRate(ctx context.Context) (models.MarketRate, error) {
	if s.rates == nil {
		return models.MarketRate{}, errors.New("no rate source configured")
	}
	rate, err := s.rates.LatestRate(ctx)
	if err != nil {
		s.metrics.RecordError("rate_feed")
		return models.MarketRate{}, fmt.Errorf("failed to fetch market rate: %w", err)
	}
	if err := s.repo.SaveMarketRate(ctx, rate); err != nil {
		return models.MarketRate{}, err
	}
	s.metrics.SetMarketRate(rate.Rate)
	s.log.WithFields(logrus.Fields{
		"rate":   rate.Rate,
		"date":   rate.ObservedOn.Format("2006-01-02"),
		"source": rate.Source,
	}).Info("Market rate refreshed")
	return rate, nil
}

// SendDigests mails every user their buying power and top picks. Users whose
// profile is still empty are skipped. It returns the number of digests sent.
func (s *Service) SendDigests(ctx context.Context) (int, error) {
	if s.mailer == nil {
		return 0, errors.New("no mailer configured")
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return 0, err
	}

	var marketRate *models.MarketRate
	if rate, err := s.repo.LatestMarketRate(ctx); err == nil {
		marketRate = &rate
	}

	sent := 0
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		ws, err := s.workspace(ctx, u.ID)
		if err != nil {
			s.log.WithError(err).WithField("user_id", u.ID).Error("Failed to load workspace for digest")
			continue
		}
		snap := ws.Snapshot()
		if !snap.Profile.HasFinancials() {
			continue
		}

		view := s.rank(ctx, snap, models.ViewFilters{})
		digest := email.Digest{
			BuyingPower:     s.solver.MaxAffordablePrice(snap.Profile, snap.Terms),
			Picks:           analytics.TopPicks(view),
			AffordableCount: analytics.AffordableCount(view),
			TotalRecords:    view.TotalRecords,
			MarketRate:      marketRate,
		}
		if err := s.mailer.SendDigest(u.Email, u.Username, digest); err != nil {
			s.metrics.RecordError("digest")
			s.log.WithError(err).WithField("user_id", u.ID).Warn("Failed to send digest")
			continue
		}
		s.metrics.RecordDigest()
		sent++
	}

	s.log.Infof("Sent %d of %d digests", sent, len(users))
	return sent, nil
}
