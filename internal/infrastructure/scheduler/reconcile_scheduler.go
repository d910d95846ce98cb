package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	appshipping "github.com/shopfront/backend/internal/application/shipping"
	"go.uber.org/zap"
)

// ErrInvalidConfig is returned when scheduler configuration is invalid
var ErrInvalidConfig = errors.New("invalid scheduler configuration")

// ReconcileSchedulerConfig holds configuration for the periodic tracking
// reconciliation sweep
type ReconcileSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// Interval is how often the sweep runs
	Interval time.Duration

	// StaleAfter is how long a shipment may go untouched before its order
	// is picked up for reconciliation
	StaleAfter time.Duration

	// BatchLimit caps how many orders one sweep processes
	BatchLimit int

	// RunTimeout is the maximum time one sweep may run
	RunTimeout time.Duration
}

// DefaultReconcileSchedulerConfig returns default configuration
func DefaultReconcileSchedulerConfig() ReconcileSchedulerConfig {
	return ReconcileSchedulerConfig{
		Enabled:    true,
		Interval:   30 * time.Minute,
		StaleAfter: 6 * time.Hour,
		BatchLimit: 50,
		RunTimeout: 5 * time.Minute,
	}
}

// Validate validates the configuration
func (c *ReconcileSchedulerConfig) Validate() error {
	if c.Interval <= 0 {
		return ErrInvalidConfig
	}
	if c.StaleAfter <= 0 {
		return ErrInvalidConfig
	}
	if c.BatchLimit <= 0 {
		return ErrInvalidConfig
	}
	if c.RunTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ReconcileScheduler periodically sweeps orders whose shipments have gone
// quiet and re-pulls their tracking state from the carrier. It covers the
// gap left by lost or delayed webhooks.
type ReconcileScheduler struct {
	service   *appshipping.ReconcileService
	config    ReconcileSchedulerConfig
	logger    *zap.Logger
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewReconcileScheduler creates a new reconcile scheduler
func NewReconcileScheduler(service *appshipping.ReconcileService, config ReconcileSchedulerConfig, logger *zap.Logger) (*ReconcileScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ReconcileScheduler{
		service: service,
		config:  config,
		logger:  logger,
	}, nil
}

// Start starts the scheduler
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("reconcile scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("reconcile scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("stale_after", s.config.StaleAfter),
		zap.Int("batch_limit", s.config.BatchLimit),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *ReconcileScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("reconcile scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("reconcile scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *ReconcileScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep runs one bounded reconciliation pass
func (s *ReconcileScheduler) sweep(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	cutoff := time.Now().Add(-s.config.StaleAfter)
	reconciled, err := s.service.ReconcileStale(runCtx, cutoff, s.config.BatchLimit)
	if err != nil {
		s.logger.Error("reconciliation sweep failed",
			zap.Int("reconciled", reconciled),
			zap.Error(err))
		return
	}

	if reconciled > 0 {
		s.logger.Info("reconciliation sweep completed",
			zap.Int("reconciled", reconciled))
	}
}
