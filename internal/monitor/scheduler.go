package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

// ErrCycleInProgress is returned when a cycle is requested while one is
// already running. Overlapping invocations are skipped, never queued.
var ErrCycleInProgress = errors.New("monitoring cycle already in progress")

// CycleRunner runs one monitoring pass
type CycleRunner interface {
	Run(ctx context.Context) error
}

// Scheduler invokes the monitoring cycle on a recurring cadence and exposes
// a manual trigger. A single-flight gate ensures no two cycles ever overlap;
// this is the only concurrency guard the core relies on.
type Scheduler struct {
	cycle    CycleRunner
	interval time.Duration
	running  atomic.Bool
	logger   *slog.Logger

	// market-hours window; nil location disables the gate
	loc *time.Location
	now func() time.Time
}

// NewScheduler creates a scheduler that runs the cycle every interval
func NewScheduler(cycle CycleRunner, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cycle:    cycle,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// RestrictToMarketHours limits scheduled runs to Mon-Fri 9:00-16:59 in the
// given location. Manual RunOnce calls are not gated.
func (s *Scheduler) RestrictToMarketHours(loc *time.Location) {
	s.loc = loc
}

// RunOnce executes a single cycle unless one is already in flight, in which
// case it is a logged no-op returning ErrCycleInProgress
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Info("monitor already running, skipping this cycle")
		return ErrCycleInProgress
	}
	defer s.running.Store(false)

	return s.cycle.Run(ctx)
}

// Start runs an immediate cycle and then one per interval until the context
// is cancelled
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("scheduled monitoring started", "interval", s.interval)

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shutting down")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if s.loc != nil && !withinMarketHours(s.now().In(s.loc)) {
		s.logger.Debug("outside market hours, skipping cycle")
		return
	}

	if err := s.RunOnce(ctx); err != nil && !errors.Is(err, ErrCycleInProgress) {
		s.logger.Error("monitoring cycle failed", "error", err)
	}
}

func withinMarketHours(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return t.Hour() >= 9 && t.Hour() <= 16
}
