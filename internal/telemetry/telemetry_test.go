package telemetry

import (
	"context"
	"testing"
)

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("Init with disabled config: %v", err)
	}
	if shutdown == nil {
		t.Fatal("shutdown function should not be nil")
	}
	if IsEnabled() {
		t.Error("telemetry should report disabled")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestNoopSpan(t *testing.T) {
	ctx := context.Background()
	ctx, span := StartStoreSpan(ctx, "sessions", "get", LockID(7))
	defer span.End()

	// No provider configured: span context carries no ids
	if TraceID(ctx) != "" {
		t.Errorf("expected empty trace id, got %q", TraceID(ctx))
	}
	if SpanID(ctx) != "" {
		t.Errorf("expected empty span id, got %q", SpanID(ctx))
	}

	// These must not panic on a no-op span
	AddEvent(ctx, "parked")
	SetAttributes(ctx, Status("locked"))
	RecordError(ctx, nil)
}

func TestInitProfilingDisabled(t *testing.T) {
	shutdown, err := InitProfiling(ProfilingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("InitProfiling with disabled config: %v", err)
	}
	if IsProfilingEnabled() {
		t.Error("profiling should report disabled")
	}
	if err := shutdown(); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestParseProfileType(t *testing.T) {
	valid := []string{
		"cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space",
		"goroutines", "mutex_count", "mutex_duration", "block_count", "block_duration",
	}
	for _, pt := range valid {
		if _, err := parseProfileType(pt); err != nil {
			t.Errorf("parseProfileType(%q): %v", pt, err)
		}
	}
	if _, err := parseProfileType("bogus"); err == nil {
		t.Error("expected error for unknown profile type")
	}
}
