package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/covid-charts/internal/covid"
	"github.com/i474232898/covid-charts/internal/logger"
)

// Refresher re-fetches the global dataset from upstream, renewing the shared copy.
type Refresher interface {
	URL() string
	Refresh(ctx context.Context) (covid.GlobalDataset, error)
}

// Sweeper drops expired sessions.
type Sweeper interface {
	Sweep() int
}

// Scheduler runs the background upkeep jobs: refreshing the shared copy of
// the global dataset and pruning idle sessions.
type Scheduler struct {
	scheduler *gocron.Scheduler
	global    Refresher
	sessions  Sweeper

	refreshInterval time.Duration
	sweepInterval   time.Duration
	fetchTimeout    time.Duration
}

// New creates a Scheduler. A nil global or a non-positive refreshInterval
// disables the refresh job.
func New(global Refresher, refreshInterval time.Duration, sessions Sweeper, sweepInterval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler:       s,
		global:          global,
		sessions:        sessions,
		refreshInterval: refreshInterval,
		sweepInterval:   sweepInterval,
		fetchTimeout:    time.Minute,
	}
}

// Start schedules the jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.global != nil && s.refreshInterval > 0 {
		_, err := s.scheduler.Every(s.refreshInterval).Do(s.refreshGlobal)
		if err != nil {
			return err
		}
	} else {
		logger.Log.Info("scheduler: shared cache disabled; not refreshing global dataset")
	}

	if s.sessions != nil && s.sweepInterval > 0 {
		_, err := s.scheduler.Every(s.sweepInterval).Do(s.sweepSessions)
		if err != nil {
			return err
		}
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) refreshGlobal() {
	ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
	defer cancel()

	url := s.global.URL()
	d, err := s.global.Refresh(ctx)
	if err != nil {
		logger.Log.WithError(err).WithField("url", url).Warn("scheduler: global refresh failed")
		return
	}
	logger.Log.WithField("countries", d.Len()).Info("scheduler: global dataset refreshed")
}

func (s *Scheduler) sweepSessions() {
	if n := s.sessions.Sweep(); n > 0 {
		logger.Log.WithField("removed", n).Debug("scheduler: swept idle sessions")
	}
}
