package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/propstore/propstore/pkg/manager"
	"github.com/propstore/propstore/pkg/metrics"
)

// managerMetrics is the Prometheus implementation of manager.Metrics.
type managerMetrics struct {
	tickDuration prometheus.Histogram
	tickSkips    prometheus.Counter
	memoryLow    prometheus.Gauge
}

func newManagerMetrics() manager.Metrics {
	reg := metrics.GetRegistry()
	if reg == nil {
		return nil
	}

	return &managerMetrics{
		tickDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "propstore_sweep_tick_duration_milliseconds",
			Help:    "Duration of sweep driver ticks in milliseconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500},
		}),
		tickSkips: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "propstore_sweep_tick_skips_total",
			Help: "Driver ticks skipped because the previous tick was still running",
		}),
		memoryLow: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "propstore_memory_low",
			Help: "Advisory memory-low flag from the last probe (1 = low)",
		}),
	}
}

func (m *managerMetrics) ObserveTick(duration time.Duration) {
	m.tickDuration.Observe(float64(duration.Microseconds()) / 1000.0)
}

func (m *managerMetrics) TickSkipped() {
	m.tickSkips.Inc()
}

func (m *managerMetrics) SetMemoryLow(low bool) {
	if low {
		m.memoryLow.Set(1)
	} else {
		m.memoryLow.Set(0)
	}
}
