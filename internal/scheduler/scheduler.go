// Package scheduler turns due reminders into notifications on a fixed
// interval for one session.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/robfig/cron/v3"

	"planner/internal/model"
)

// DefaultInterval is used when New gets a non-positive interval.
const DefaultInterval = time.Minute

// Target is the session the scheduler fires reminders for.
type Target interface {
	DueReminders(now time.Time) []model.Reminder
	FireReminder(ctx context.Context, r model.Reminder) error
	ReloadReminders(ctx context.Context) error
}

type Scheduler struct {
	target   Target
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
}

func New(target Target, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{target: target, interval: interval, logger: logger, now: time.Now}
}

// SetClock replaces the time source, for tests.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// Start runs one pass right away and then one per interval until Stop is
// called or ctx is done. Overlapping passes are skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	job := cron.FuncJob(func() { s.run(ctx) })
	if _, err := c.AddJob(fmt.Sprintf("@every %s", s.interval), job); err != nil {
		cancel()
		return fmt.Errorf("schedule reminders: %w", err)
	}

	s.cron = c
	s.cancel = cancel
	s.run(ctx)
	c.Start()
	return nil
}

// Stop halts the timer and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	cancel()
	<-c.Stop().Done()
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	fired, err := s.Tick(ctx, s.now())
	if err != nil {
		s.logger.Error("reminder pass failed", "fired", fired, "error", err)
		return
	}
	if fired > 0 {
		s.logger.Info("reminders fired", "count", fired)
	}
}

// Tick fires every reminder due at now and reports how many fired. A
// reminder whose triggered flag could not be saved fires again on the next
// pass. Failures of one pass are returned together.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (int, error) {
	due := s.target.DueReminders(now)
	if len(due) == 0 {
		return 0, nil
	}

	var errs *multierror.Error
	fired := 0
	for _, r := range due {
		if err := s.target.FireReminder(ctx, r); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		fired++
	}

	if err := s.target.ReloadReminders(ctx); err != nil {
		errs = multierror.Append(errs, err)
	}
	return fired, errs.ErrorOrNil()
}
