package metrics

import (
	"github.com/propstore/propstore/pkg/manager"
	"github.com/propstore/propstore/pkg/transient"
)

// NewStoreMetrics creates a Prometheus-backed StoreMetrics for the named
// store.
//
// Returns nil if metrics are not enabled (InitRegistry not called). When
// nil is returned, callers pass nil to the store, which results in zero
// overhead.
func NewStoreMetrics(store string) transient.StoreMetrics {
	if !IsEnabled() || newPrometheusStoreMetrics == nil {
		return nil
	}
	return newPrometheusStoreMetrics(store)
}

// NewManagerMetrics creates a Prometheus-backed Metrics for the sweep
// driver. Returns nil if metrics are not enabled.
func NewManagerMetrics() manager.Metrics {
	if !IsEnabled() || newPrometheusManagerMetrics == nil {
		return nil
	}
	return newPrometheusManagerMetrics()
}

// Constructors are implemented in pkg/metrics/prometheus and registered
// during its package initialization. The indirection avoids an import cycle
// while keeping this package's API clean.
var (
	newPrometheusStoreMetrics   func(store string) transient.StoreMetrics
	newPrometheusManagerMetrics func() manager.Metrics
)

// RegisterStoreMetricsConstructor registers the Prometheus store metrics
// constructor. Called by pkg/metrics/prometheus during init.
func RegisterStoreMetricsConstructor(constructor func(store string) transient.StoreMetrics) {
	newPrometheusStoreMetrics = constructor
}

// RegisterManagerMetricsConstructor registers the Prometheus manager
// metrics constructor. Called by pkg/metrics/prometheus during init.
func RegisterManagerMetricsConstructor(constructor func() manager.Metrics) {
	newPrometheusManagerMetrics = constructor
}
