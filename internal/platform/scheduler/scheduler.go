// Package scheduler drives the periodic maintenance jobs: dashboard
// refresh, cache sweep and source health probe.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robfig/cron/v3"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/logging"
)

// Jobs holds the callbacks the scheduler fires. Refresh and Probe run
// with a deadline derived from the refresh interval.
type Jobs struct {
	Refresh func(ctx context.Context) error
	Sweep   func() int
	Probe   func(ctx context.Context)
}

// Config selects the cadence of each job. SweepSchedule is a five-field
// cron expression.
type Config struct {
	RefreshInterval time.Duration
	SweepSchedule   string
	ProbeInterval   time.Duration
}

// Status is a snapshot of the scheduler for the health endpoint.
type Status struct {
	Running     bool      `json:"running"`
	NextRefresh time.Time `json:"nextRefresh"`
	NextSweep   time.Time `json:"nextSweep"`
	LastRefresh time.Time `json:"lastRefresh"`
	LastError   string    `json:"lastError,omitempty"`
}

type Scheduler struct {
	cron   *cron.Cron
	jobs   Jobs
	logger *logging.Logger

	refreshEntry cron.EntryID
	sweepEntry   cron.EntryID

	mu          sync.Mutex
	running     bool
	lastRefresh time.Time
	lastError   error
}

func New(cfg Config, jobs Jobs, logger *logging.Logger) (*Scheduler, error) {
	if cfg.RefreshInterval <= 0 {
		return nil, errors.New("refresh interval must be > 0")
	}
	if cfg.ProbeInterval <= 0 {
		return nil, errors.New("probe interval must be > 0")
	}

	s := &Scheduler{
		cron:   cron.New(),
		jobs:   jobs,
		logger: logger,
	}

	var err error
	s.refreshEntry, err = s.cron.AddFunc(fmt.Sprintf("@every %s", cfg.RefreshInterval), s.runRefresh)
	if err != nil {
		return nil, errors.Wrap(err, "schedule refresh job")
	}

	s.sweepEntry, err = s.cron.AddFunc(cfg.SweepSchedule, s.runSweep)
	if err != nil {
		return nil, errors.Wrapf(err, "schedule sweep job %q", cfg.SweepSchedule)
	}

	if _, err = s.cron.AddFunc(fmt.Sprintf("@every %s", cfg.ProbeInterval), s.runProbe); err != nil {
		return nil, errors.Wrap(err, "schedule probe job")
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("scheduler started")
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "stop scheduler")
	}
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Running:     s.running,
		LastRefresh: s.lastRefresh,
	}
	if s.lastError != nil {
		status.LastError = s.lastError.Error()
	}
	if s.running {
		status.NextRefresh = s.cron.Entry(s.refreshEntry).Next
		status.NextSweep = s.cron.Entry(s.sweepEntry).Next
	}

	return status
}

func (s *Scheduler) runRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	err := s.jobs.Refresh(ctx)

	s.mu.Lock()
	s.lastRefresh = time.Now()
	s.lastError = err
	s.mu.Unlock()

	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled refresh failed", "error", err)
		return
	}
	s.logger.InfoContext(ctx, "scheduled refresh completed")
}

func (s *Scheduler) runSweep() {
	removed := s.jobs.Sweep()
	s.logger.Info("cache sweep completed", "removed", removed)
}

func (s *Scheduler) runProbe() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s.jobs.Probe(ctx)
}
