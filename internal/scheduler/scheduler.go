// Package scheduler runs the periodic market-rate refresh and digest jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/jalai-llc/bundongsan/internal/models"
)

// Jobs is the work the scheduler triggers.
type Jobs interface {
	RefreshMarketRate(ctx context.Context) (models.MarketRate, error)
	SendDigests(ctx context.Context) (int, error)
}

// Scheduler wraps a cron runner
type Scheduler struct {
	cron    *cron.Cron
	jobs    Jobs
	log     *logrus.Logger
	timeout time.Duration
}

// New creates a scheduler. Each job run is bounded by timeout.
func New(jobs Jobs, log *logrus.Logger, timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		jobs:    jobs,
		log:     log,
		timeout: timeout,
	}
}

// ScheduleRateRefresh registers the market-rate refresh. An empty spec disables it.
func (s *Scheduler) ScheduleRateRefresh(spec string) error {
	return s.add("rate_refresh", spec, func(ctx context.Context) error {
		_, err := s.jobs.RefreshMarketRate(ctx)
		return err
	})
}

// ScheduleDigests registers the weekly digest mail. An empty spec disables it.
func (s *Scheduler) ScheduleDigests(spec string) error {
	return s.add("digest", spec, func(ctx context.Context) error {
		sent, err := s.jobs.SendDigests(ctx)
		s.log.WithField("job", "digest").Infof("Digests sent: %d", sent)
		return err
	})
}

func (s *Scheduler) add(name, spec string, job func(ctx context.Context) error) error {
	if spec == "" {
		s.log.WithField("job", name).Info("Job disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, job) }); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	s.log.WithFields(logrus.Fields{"job": name, "schedule": spec}).Info("Job scheduled")
	return nil
}

// run executes one job invocation with a timeout and logs the outcome.
func (s *Scheduler) run(name string, job func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	entry := s.log.WithField("job", name)
	if err := job(ctx); err != nil {
		entry.WithError(err).Error("Job failed")
		return
	}
	entry.WithField("duration", time.Since(start).String()).Debug("Job finished")
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs up to ctx's deadline
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("Scheduler stopped before jobs finished")
	}
}

// Entries reports the number of scheduled jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
