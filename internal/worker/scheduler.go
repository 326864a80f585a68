package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"smartspend/internal/core"
)

// SchedulerConfig holds the timer intervals.
type SchedulerConfig struct {
	// RecurringInterval is how often due recurring transactions are materialized (default: 24h)
	RecurringInterval time.Duration

	// AlertInterval is how often budgets are checked against thresholds (default: 1h)
	AlertInterval time.Duration
}

// DefaultSchedulerConfig returns the daily scan and hourly alert cadence.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		RecurringInterval: 24 * time.Hour,
		AlertInterval:     time.Hour,
	}
}

// RecurringRunner materializes due recurring transactions.
type RecurringRunner interface {
	ProcessDue(ctx context.Context, now time.Time) (int, error)
}

// AlertChecker evaluates budget thresholds and returns newly raised alerts.
type AlertChecker interface {
	Check(ctx context.Context) []core.BudgetAlert
}

// Scheduler drives the two background timers. The recurring scan also runs
// once immediately on start.
type Scheduler struct {
	recurring RecurringRunner
	alerts    AlertChecker
	config    SchedulerConfig
	now       func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewScheduler creates a scheduler. Either job may be nil to disable it.
func NewScheduler(recurring RecurringRunner, alerts AlertChecker, config SchedulerConfig) *Scheduler {
	def := DefaultSchedulerConfig()
	if config.RecurringInterval <= 0 {
		config.RecurringInterval = def.RecurringInterval
	}
	if config.AlertInterval <= 0 {
		config.AlertInterval = def.AlertInterval
	}
	return &Scheduler{
		recurring: recurring,
		alerts:    alerts,
		config:    config,
		now:       time.Now,
	}
}

// Start launches the loop in the background. Returns an error if already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.doneCh)
		s.loop(ctx)
	}()

	slog.InfoContext(ctx, "Scheduler started",
		"recurring_interval", s.config.RecurringInterval,
		"alert_interval", s.config.AlertInterval)

	return nil
}

// Stop signals the loop and waits for it to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Scheduler stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Scheduler stop timed out")
		return ctx.Err()
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	return nil
}

// IsRunning returns whether the loop is active
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Run blocks until ctx is cancelled. It suits errgroup-managed processes.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		return err
	}
	return nil
}

func (s *Scheduler) loop(ctx context.Context) {
	recurringTicker := time.NewTicker(s.config.RecurringInterval)
	defer recurringTicker.Stop()

	alertTicker := time.NewTicker(s.config.AlertInterval)
	defer alertTicker.Stop()

	s.RunRecurring(ctx)

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-recurringTicker.C:
			s.RunRecurring(ctx)
		case <-alertTicker.C:
			s.RunAlerts(ctx)
		}
	}
}

// RunRecurring performs one recurring scan.
func (s *Scheduler) RunRecurring(ctx context.Context) {
	if s.recurring == nil {
		return
	}
	n, err := s.recurring.ProcessDue(ctx, s.now())
	if err != nil {
		slog.ErrorContext(ctx, "Recurring scan failed", "error", err)
		return
	}
	slog.InfoContext(ctx, "Recurring scan finished", "created", n)
}

// RunAlerts performs one budget check.
func (s *Scheduler) RunAlerts(ctx context.Context) {
	if s.alerts == nil {
		return
	}
	raised := s.alerts.Check(ctx)
	slog.DebugContext(ctx, "Budget check finished", "alerts", len(raised))
}
