package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/mollier-diagram/internal/mollier"
)

// Refresher is the part of mollier.Service the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context) (mollier.Diagram, error)
}

// Scheduler periodically refreshes the diagram.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Refresher
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler. Each run is bounded by timeout; a
// non-positive timeout defaults to the interval.
func New(service Refresher, interval, timeout time.Duration, logger *slog.Logger) *Scheduler {
	if timeout <= 0 {
		timeout = interval
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start schedules the refresh job, runs it once immediately and starts the
// underlying scheduler. A run still in progress when the next one is due
// makes the scheduler skip that tick.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return errors.New("scheduler: refresh interval must be positive")
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "interval", s.interval)
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	d, err := s.service.Refresh(ctx)
	switch {
	case errors.Is(err, mollier.ErrSuperseded):
		s.logger.Info("scheduled refresh superseded")
	case err != nil:
		s.logger.Error("scheduled refresh failed", "error", err)
	default:
		s.logger.Debug("scheduled refresh done", "diagram_id", d.ID)
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
