package metrics_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/propstore/propstore/pkg/metrics"
	"github.com/propstore/propstore/pkg/transient"

	// Register the Prometheus constructors
	_ "github.com/propstore/propstore/pkg/metrics/prometheus"
)

func TestStoreMetricsLifecycle(t *testing.T) {
	// Before InitRegistry everything is disabled
	if metrics.NewStoreMetrics("early") != nil {
		t.Fatal("store metrics created while disabled")
	}
	if metrics.NewManagerMetrics() != nil {
		t.Fatal("manager metrics created while disabled")
	}

	metrics.InitRegistry()
	if !metrics.IsEnabled() {
		t.Fatal("registry not enabled after InitRegistry")
	}
	// Idempotent
	metrics.InitRegistry()

	sm := metrics.NewStoreMetrics("sessions")
	if sm == nil {
		t.Fatal("store metrics nil while enabled")
	}
	sm.ObserveOp(transient.OpGet, transient.ErrNone, time.Millisecond)
	sm.ObserveOp(transient.OpPut, transient.ErrLockIdMismatch, time.Millisecond)
	sm.LockWaitParked()
	sm.LockWaitReplayed()
	sm.EntryEvicted()
	sm.SetDepths(3, 2, 1)

	mm := metrics.NewManagerMetrics()
	if mm == nil {
		t.Fatal("manager metrics nil while enabled")
	}
	mm.ObserveTick(time.Millisecond)
	mm.TickSkipped()
	mm.SetMemoryLow(true)
	mm.SetMemoryLow(false)

	// The handler serves the scrape endpoint
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	metrics.Handler().ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Errorf("metrics endpoint = %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("metrics endpoint returned no body")
	}
}
