package manager

import (
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/propstore/propstore/internal/logger"
)

// memoryState tracks the advisory memory probe.
type memoryState struct {
	lastCheck time.Time
	low       atomic.Bool
}

// maybeCheckMemory probes heap usage at most once per MemoryCheckPeriod.
// When heap-in-use exceeds the threshold it requests a full collection,
// returns retained pages to the OS, and re-probes. The resulting flag is
// purely advisory; store operations never consult it.
func (m *Manager) maybeCheckMemory(now time.Time) {
	if m.cfg.MemoryThreshold == 0 {
		return
	}
	if !m.mem.lastCheck.IsZero() && now.Sub(m.mem.lastCheck) < m.cfg.MemoryCheckPeriod {
		return
	}
	m.mem.lastCheck = now

	threshold := m.cfg.MemoryThreshold.Uint64()
	inUse := heapInUse()
	if inUse > threshold {
		debug.FreeOSMemory()
		inUse = heapInUse()
	}

	low := inUse > threshold
	if low != m.mem.low.Load() {
		if low {
			logger.Warn("memory low",
				logger.KeyMemory, inUse,
				logger.KeyThreshold, threshold,
			)
		} else {
			logger.Info("memory recovered",
				logger.KeyMemory, inUse,
				logger.KeyThreshold, threshold,
			)
		}
	}
	m.mem.low.Store(low)
	if m.metrics != nil {
		m.metrics.SetMemoryLow(low)
	}
}

func heapInUse() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapInuse
}
