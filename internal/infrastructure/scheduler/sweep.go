// Package scheduler runs periodic background sweeps: flagging overdue
// payment plan instalments and expiring lapsed subscriptions.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/elimu/backend/internal/domain/identity"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSweepRunnerNotRunning is returned when triggering a stopped runner
var ErrSweepRunnerNotRunning = errors.New("sweep runner is not running")

// OverdueSweeper flags overdue instalments for a single school
type OverdueSweeper interface {
	SweepOverdue(ctx context.Context, schoolID uuid.UUID, asOf time.Time) (int, error)
}

// SubscriptionExpirer expires subscriptions past their period end
type SubscriptionExpirer interface {
	ExpireLapsed(ctx context.Context, asOf time.Time) (int, error)
}

// SchoolLister lists the schools to sweep
type SchoolLister interface {
	FindAll(ctx context.Context, filter identity.SchoolFilter) ([]identity.School, error)
}

// SweepConfig holds sweep runner configuration
type SweepConfig struct {
	Interval          time.Duration
	Timeout           time.Duration
	OverdueSweep      bool
	SubscriptionSweep bool
}

// DefaultSweepConfig returns default sweep configuration
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Interval:          time.Hour,
		Timeout:           5 * time.Minute,
		OverdueSweep:      true,
		SubscriptionSweep: true,
	}
}

// SweepRunner periodically runs the configured sweeps across all active
// schools.
type SweepRunner struct {
	config    SweepConfig
	schools   SchoolLister
	overdue   OverdueSweeper
	subs      SubscriptionExpirer
	logger    *zap.Logger
	now       func() time.Time
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSweepRunner creates a new sweep runner
func NewSweepRunner(
	config SweepConfig,
	schools SchoolLister,
	overdue OverdueSweeper,
	subs SubscriptionExpirer,
	logger *zap.Logger,
) *SweepRunner {
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Minute
	}
	return &SweepRunner{
		config:  config,
		schools: schools,
		overdue: overdue,
		subs:    subs,
		logger:  logger,
		now:     time.Now,
	}
}

// Start starts the periodic sweep loop
func (r *SweepRunner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return nil
	}
	r.isRunning = true
	r.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go r.runLoop(ctx)

	r.logger.Info("Sweep runner started",
		zap.Duration("interval", r.config.Interval),
		zap.Bool("overdue_sweep", r.config.OverdueSweep),
		zap.Bool("subscription_sweep", r.config.SubscriptionSweep),
	)
	return nil
}

// Stop gracefully stops the sweep loop
func (r *SweepRunner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return nil
	}
	r.isRunning = false
	r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("Sweep runner stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("Sweep runner stop timed out")
		return ctx.Err()
	}
}

// TriggerNow runs a sweep immediately, outside the normal schedule
func (r *SweepRunner) TriggerNow(ctx context.Context) error {
	r.mu.Lock()
	running := r.isRunning
	r.mu.Unlock()
	if !running {
		return ErrSweepRunnerNotRunning
	}
	r.runSweeps(ctx)
	return nil
}

func (r *SweepRunner) runLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runSweeps(ctx)
		}
	}
}

// runSweeps executes one pass of all enabled sweeps. Failures are logged
// and never abort the remaining sweeps.
func (r *SweepRunner) runSweeps(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	asOf := r.now()

	if r.config.SubscriptionSweep && r.subs != nil {
		expired, err := r.subs.ExpireLapsed(sweepCtx, asOf)
		if err != nil {
			r.logger.Error("Subscription expiry sweep failed", zap.Error(err))
		} else if expired > 0 {
			r.logger.Info("Subscription expiry sweep completed",
				zap.Int("expired", expired),
			)
		}
	}

	if r.config.OverdueSweep && r.overdue != nil {
		r.sweepOverdueInstalments(sweepCtx, asOf)
	}
}

func (r *SweepRunner) sweepOverdueInstalments(ctx context.Context, asOf time.Time) {
	active := identity.SchoolStatusActive
	schools, err := r.schools.FindAll(ctx, identity.SchoolFilter{Status: &active})
	if err != nil {
		r.logger.Error("Failed to list schools for overdue sweep", zap.Error(err))
		return
	}

	totalFlagged := 0
	for i := range schools {
		flagged, err := r.overdue.SweepOverdue(ctx, schools[i].ID, asOf)
		if err != nil {
			r.logger.Error("Overdue instalment sweep failed for school",
				zap.String("school_id", schools[i].ID.String()),
				zap.Error(err),
			)
			continue
		}
		totalFlagged += flagged
	}

	if totalFlagged > 0 {
		r.logger.Info("Overdue instalment sweep completed",
			zap.Int("schools", len(schools)),
			zap.Int("flagged", totalFlagged),
		)
	}
}
