package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper drops expired sessions; session.Registry implements it.
type Sweeper interface {
	Sweep(ctx context.Context) int
}

// SessionSweeper runs Sweeper on a cron schedule.
type SessionSweeper struct {
	registry Sweeper
	interval time.Duration
	onSwept  func(n int)
	logger   *zap.Logger
	cron     *cron.Cron

	mu      sync.Mutex
	running bool
}

// SweeperOption customises a SessionSweeper.
type SweeperOption func(*SessionSweeper)

// WithSweepReporter is called with the number of sessions removed by each run.
func WithSweepReporter(fn func(n int)) SweeperOption {
	return func(s *SessionSweeper) {
		s.onSwept = fn
	}
}

func NewSessionSweeper(registry Sweeper, interval time.Duration, logger *zap.Logger, opts ...SweeperOption) (*SessionSweeper, error) {
	if interval < time.Second {
		interval = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &SessionSweeper{
		registry: registry,
		interval: interval,
		logger:   logger,
		cron:     cron.New(cron.WithSeconds()),
	}
	for _, opt := range opts {
		opt(s)
	}

	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	if _, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		s.RunOnce(ctx)
	}); err != nil {
		return nil, fmt.Errorf("session sweeper: schedule %q: %w", schedule, err)
	}
	return s, nil
}

// RunOnce sweeps immediately and returns the number of removed sessions.
func (s *SessionSweeper) RunOnce(ctx context.Context) int {
	n := s.registry.Sweep(ctx)
	if n > 0 {
		s.logger.Info("expired sessions swept", zap.Int("count", n))
	}
	if s.onSwept != nil {
		s.onSwept(n)
	}
	return n
}

// Start launches the cron scheduler.
func (s *SessionSweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
	s.logger.Info("session sweeper started", zap.Duration("interval", s.interval))
}

// Stop waits for a running sweep to finish or ctx to expire.
func (s *SessionSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	s.logger.Info("session sweeper stopped")
	return nil
}
