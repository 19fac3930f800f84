// Package scheduler drives the periodic status sweeps: a daily tick at
// midnight that materializes the new day's progress rows and an hourly tick
// that expires overdue tasks.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/julianstephens/routinely/internal/constants"
	"github.com/julianstephens/routinely/internal/logger"
)

// Sweeper is the slice of the status service the scheduler needs.
type Sweeper interface {
	UpdateDailyTaskStatuses(userID string) error
	UpdateExpiredTasks(userID string) error
}

type Scheduler struct {
	sweeper Sweeper

	// Now is the clock used to compute the next midnight, injectable for tests.
	Now func() time.Time

	// ExpiryInterval is the spacing of expiry ticks.
	ExpiryInterval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(sweeper Sweeper) *Scheduler {
	return &Scheduler{
		sweeper:        sweeper,
		Now:            time.Now,
		ExpiryInterval: constants.ExpirySweepInterval,
	}
}

// StartScheduledTasks launches the tick loop. It runs one full catch-up sweep
// immediately, then materializes at each local midnight and expires on the
// configured interval. Calling Start on a running scheduler is a no-op.
func (s *Scheduler) StartScheduledTasks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, s.done)
}

// Stop halts the tick loop and waits for any in-flight sweep to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// RunManualUpdate performs the complete catch-up sweep synchronously:
// materialize today's rows for every user, then expire overdue tasks. Safe to
// call at any time, including while the tick loop is running.
func (s *Scheduler) RunManualUpdate() error {
	if err := s.sweeper.UpdateDailyTaskStatuses(""); err != nil {
		return err
	}
	return s.sweeper.UpdateExpiredTasks("")
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	// Catch up immediately on startup.
	s.tick("startup")

	midnight := time.NewTimer(s.untilNextMidnight())
	defer midnight.Stop()

	expiry := time.NewTicker(s.ExpiryInterval)
	defer expiry.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Scheduler shutting down")
			return
		case <-midnight.C:
			s.tick("daily")
			midnight.Reset(s.untilNextMidnight())
		case <-expiry.C:
			s.expireTick()
		}
	}
}

// tick runs the full sweep. A panic in one tick must not kill the loop.
func (s *Scheduler) tick(reason string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic in scheduler tick", "reason", reason, "panic", r)
		}
	}()

	logger.Debug("Running scheduled sweep", "reason", reason)
	if err := s.sweeper.UpdateDailyTaskStatuses(""); err != nil {
		logger.Error("Daily materialization failed", "reason", reason, "error", err)
	}
	if err := s.sweeper.UpdateExpiredTasks(""); err != nil {
		logger.Error("Expiry sweep failed", "reason", reason, "error", err)
	}
}

func (s *Scheduler) expireTick() {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic in expiry tick", "panic", r)
		}
	}()

	if err := s.sweeper.UpdateExpiredTasks(""); err != nil {
		logger.Error("Expiry sweep failed", "error", err)
	}
}

func (s *Scheduler) untilNextMidnight() time.Duration {
	now := s.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return next.Sub(now)
}
