// Package manager runs the periodic driver behind every transient store:
// one process-wide check timer that replays parked lock waits, sweeps
// expired entries, and occasionally probes memory.
package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/propstore/propstore/internal/bytesize"
	"github.com/propstore/propstore/internal/logger"
	"github.com/propstore/propstore/pkg/registry"
)

// Defaults for the periodic driver.
const (
	DefaultTimeoutCheckPeriod = 500 * time.Millisecond
	DefaultMemoryCheckPeriod  = 10 * time.Second
	DefaultMemoryThreshold    = bytesize.GiB
)

// Config contains the driver settings.
type Config struct {
	// TimeoutCheckPeriod is the cadence of the check timer. Each tick drains
	// the lock-wait queue and then the timeout queue of every registered
	// store.
	TimeoutCheckPeriod time.Duration `mapstructure:"timeout_check_period" yaml:"timeout_check_period"`

	// MemoryCheckPeriod is the minimum interval between memory probes. Must
	// be greater than TimeoutCheckPeriod.
	MemoryCheckPeriod time.Duration `mapstructure:"memory_check_period" yaml:"memory_check_period"`

	// MemoryThreshold is the heap-in-use level above which the manager
	// requests a collection and raises the advisory memory-low flag.
	// Zero disables the probe.
	MemoryThreshold bytesize.ByteSize `mapstructure:"memory_threshold" yaml:"memory_threshold"`
}

// DefaultConfig returns the default driver configuration.
func DefaultConfig() Config {
	return Config{
		TimeoutCheckPeriod: DefaultTimeoutCheckPeriod,
		MemoryCheckPeriod:  DefaultMemoryCheckPeriod,
		MemoryThreshold:    DefaultMemoryThreshold,
	}
}

// Validate checks the periods and their ordering.
func (c Config) Validate() error {
	if c.TimeoutCheckPeriod <= 0 {
		return fmt.Errorf("timeout_check_period must be positive, got %s", c.TimeoutCheckPeriod)
	}
	if c.MemoryCheckPeriod <= c.TimeoutCheckPeriod {
		return fmt.Errorf("memory_check_period (%s) must be greater than timeout_check_period (%s)",
			c.MemoryCheckPeriod, c.TimeoutCheckPeriod)
	}
	return nil
}

// Metrics receives driver-level observations. May be nil.
type Metrics interface {
	// ObserveTick records one completed tick and its duration.
	ObserveTick(duration time.Duration)

	// TickSkipped records a tick suppressed because the previous one was
	// still running.
	TickSkipped()

	// SetMemoryLow publishes the advisory memory-low flag.
	SetMemoryLow(low bool)
}

// Manager drives the sweepers of all registered stores from a single
// periodic timer.
type Manager struct {
	cfg      Config
	registry *registry.Registry
	metrics  Metrics

	// tickMu suppresses re-entrancy: a tick that fires while the previous
	// one is still running is skipped, not queued.
	tickMu sync.Mutex

	mem memoryState

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// New creates a manager for the given registry.
func New(reg *registry.Registry, cfg Config, metrics Metrics) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Manager{
		cfg:      cfg,
		registry: reg,
		metrics:  metrics,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the check timer goroutine. It returns immediately; the
// timer runs until Stop or context cancellation.
func (m *Manager) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		go m.run(ctx)
	})
}

// Stop halts the check timer and waits for an in-flight tick to finish.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
	<-m.done
}

// MemoryLow reports the advisory flag from the last memory probe.
// Operations do not consult it; it is exposed for health reporting.
func (m *Manager) MemoryLow() bool {
	return m.mem.low.Load()
}

func (m *Manager) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.cfg.TimeoutCheckPeriod)
	defer ticker.Stop()

	logger.Info("sweep driver started",
		"timeout_check_period", m.cfg.TimeoutCheckPeriod,
		"memory_check_period", m.cfg.MemoryCheckPeriod,
	)

	for {
		select {
		case <-ticker.C:
			m.tick()
		case <-ctx.Done():
			logger.Info("sweep driver stopped", logger.KeyError, ctx.Err())
			return
		case <-m.stop:
			logger.Info("sweep driver stopped")
			return
		}
	}
}

// tick runs one driver iteration: lock-wait replay, then timeout sweep, for
// every registered store, then the occasional memory probe.
func (m *Manager) tick() {
	if !m.tickMu.TryLock() {
		if m.metrics != nil {
			m.metrics.TickSkipped()
		}
		logger.Debug("sweep tick skipped, previous tick still running")
		return
	}
	defer m.tickMu.Unlock()

	start := time.Now()
	for _, store := range m.registry.Stores() {
		store.ProcessLockWaitQueue()
		store.ProcessTimeOuts()
	}

	m.maybeCheckMemory(start)

	if m.metrics != nil {
		m.metrics.ObserveTick(time.Since(start))
	}
}
