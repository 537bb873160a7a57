// Package prometheus implements the metrics interfaces on the process
// Prometheus registry. Importing it (for side effects) registers the
// constructors with pkg/metrics.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/propstore/propstore/pkg/metrics"
	"github.com/propstore/propstore/pkg/transient"
)

func init() {
	metrics.RegisterStoreMetricsConstructor(newStoreMetrics)
	metrics.RegisterManagerMetricsConstructor(newManagerMetrics)
}

// storeMetrics is the Prometheus implementation of transient.StoreMetrics.
// All vectors are pre-curried with the store label so the hot path only
// resolves the op/status labels.
type storeMetrics struct {
	operations      *prometheus.CounterVec
	opDuration      *prometheus.HistogramVec
	lockWaitParks   prometheus.Counter
	lockWaitReplays prometheus.Counter
	evictions       prometheus.Counter
	entries         prometheus.Gauge
	timeoutQueue    prometheus.Gauge
	lockWaitQueue   prometheus.Gauge
}

func newStoreMetrics(store string) transient.StoreMetrics {
	reg := metrics.GetRegistry()
	if reg == nil {
		return nil
	}

	constLabels := prometheus.Labels{"store": store}

	return &storeMetrics{
		operations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name:        "propstore_operations_total",
				Help:        "Total store operations by op and result status",
				ConstLabels: constLabels,
			},
			[]string{"op", "status"},
		),
		opDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "propstore_operation_duration_milliseconds",
				Help:        "Duration of store operations in milliseconds",
				ConstLabels: constLabels,
				Buckets: []float64{
					0.01, // in-memory fast path
					0.05,
					0.1,
					0.5,
					1,
					10,
					100,  // one or two sweep ticks of lock-wait
					1000, // long contention
					10000,
				},
			},
			[]string{"op"},
		),
		lockWaitParks: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name:        "propstore_lock_wait_parks_total",
			Help:        "Contended requests parked for sweeper replay",
			ConstLabels: constLabels,
		}),
		lockWaitReplays: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name:        "propstore_lock_wait_replays_total",
			Help:        "Parked retries replayed by the sweeper",
			ConstLabels: constLabels,
		}),
		evictions: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name:        "propstore_entries_evicted_total",
			Help:        "Entries evicted by the timeout sweep",
			ConstLabels: constLabels,
		}),
		entries: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name:        "propstore_entries",
			Help:        "Live entries in the store map",
			ConstLabels: constLabels,
		}),
		timeoutQueue: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name:        "propstore_timeout_queue_depth",
			Help:        "Pending timeout records",
			ConstLabels: constLabels,
		}),
		lockWaitQueue: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name:        "propstore_lock_wait_queue_depth",
			Help:        "Parked lock-wait retries",
			ConstLabels: constLabels,
		}),
	}
}

func (m *storeMetrics) ObserveOp(op string, status transient.ErrorCode, duration time.Duration) {
	m.operations.WithLabelValues(op, status.String()).Inc()
	m.opDuration.WithLabelValues(op).Observe(float64(duration.Microseconds()) / 1000.0)
}

func (m *storeMetrics) LockWaitParked() {
	m.lockWaitParks.Inc()
}

func (m *storeMetrics) LockWaitReplayed() {
	m.lockWaitReplays.Inc()
}

func (m *storeMetrics) EntryEvicted() {
	m.evictions.Inc()
}

func (m *storeMetrics) SetDepths(entries, timeoutRecords, lockWaiters int) {
	m.entries.Set(float64(entries))
	m.timeoutQueue.Set(float64(timeoutRecords))
	m.lockWaitQueue.Set(float64(lockWaiters))
}
