package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultProbeTimeout = 3 * time.Second

// ProbeFunc reports whether a dependency is reachable.
type ProbeFunc func(ctx context.Context) error

type probe struct {
	name    string
	fn      ProbeFunc
	timeout time.Duration
}

type Monitor struct {
	probes []probe

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		logger:   logger,
		status:   Status{Services: map[string]bool{}},
	}
}

// Register adds a named probe. It must be called before Start.
func (m *Monitor) Register(name string, fn ProbeFunc, timeout time.Duration) {
	if fn == nil {
		return
	}
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	m.probes = append(m.probes, probe{name: name, fn: fn, timeout: timeout})
}

// WatchPostgres registers a ping probe for the pool.
func (m *Monitor) WatchPostgres(pool *pgxpool.Pool) {
	if pool == nil {
		return
	}
	m.Register("postgresql", pool.Ping, 3*time.Second)
}

// WatchRedis registers a ping probe for the client.
func (m *Monitor) WatchRedis(client redislib.UniversalClient) {
	if client == nil {
		return
	}
	m.Register("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}, 2*time.Second)
}

func (m *Monitor) Start() {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	m.Refresh()
	go m.loop()
}

// Stop ends the probe loop and waits for it to exit. Safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
	if m.started.Load() {
		<-m.doneCh
	}
}

func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	services := make(map[string]bool, len(m.status.Services))
	for k, v := range m.status.Services {
		services[k] = v
	}
	return Status{Services: services, LastCheck: m.status.LastCheck}
}

func (m *Monitor) loop() {
	defer close(m.doneCh)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every probe once and stores the result.
func (m *Monitor) Refresh() {
	services := make(map[string]bool, len(m.probes))
	for _, p := range m.probes {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		err := p.fn(ctx)
		cancel()
		if err != nil {
			m.logger.Warn("dependency probe failed", zap.String("service", p.name), zap.Error(err))
		}
		services[p.name] = err == nil
	}

	m.mu.Lock()
	m.status = Status{Services: services, LastCheck: time.Now()}
	m.mu.Unlock()
}
