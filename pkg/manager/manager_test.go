package manager

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/propstore/propstore/pkg/registry"
	"github.com/propstore/propstore/pkg/transient"
)

func testConfig() Config {
	return Config{
		TimeoutCheckPeriod: 50 * time.Millisecond,
		MemoryCheckPeriod:  time.Second,
		// Memory probe disabled in tests
		MemoryThreshold: 0,
	}
}

func newStoreAndRegistry(t *testing.T, timeout, lockTimeout time.Duration) (*transient.Store, *registry.Registry) {
	t.Helper()
	reg := registry.NewRegistry()
	store, err := transient.NewStore("test", []string{"p0"}, transient.Config{
		TimeOut:     timeout,
		LockTimeOut: lockTimeout,
	}, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := reg.Add("test", store); err != nil {
		t.Fatalf("Add: %v", err)
	}
	return store, reg
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if err := (Config{TimeoutCheckPeriod: 0, MemoryCheckPeriod: time.Second}).Validate(); err == nil {
		t.Error("zero check period accepted")
	}
	if err := (Config{TimeoutCheckPeriod: time.Second, MemoryCheckPeriod: time.Second}).Validate(); err == nil {
		t.Error("memory period must exceed the check period")
	}
}

func TestSweepEvictsExpiredEntries(t *testing.T) {
	store, reg := newStoreAndRegistry(t, 200*time.Millisecond, 100*time.Millisecond)

	mgr, err := New(reg, testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mgr.Start(context.Background())
	defer mgr.Stop()

	store.Create([]byte("k"))
	if exists, _ := store.Exists([]byte("k")); !exists {
		t.Fatal("entry missing right after create")
	}

	// TimeOut + check period + margin
	time.Sleep(500 * time.Millisecond)
	if exists, _ := store.Exists([]byte("k")); exists {
		t.Fatal("entry survived past TimeOut with the driver running")
	}
}

func TestSweepReplaysParkedRetry(t *testing.T) {
	store, reg := newStoreAndRegistry(t, 5*time.Second, time.Second)

	mgr, err := New(reg, testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mgr.Start(context.Background())
	defer mgr.Stop()

	// A holds Update on prop 0 but releases within a few ticks
	a, err := store.Get(context.Background(), []byte("k"), []transient.PropRequest{{Index: 0, Mode: transient.LockModeUpdate}}, 0, false)
	if err != nil || a.Status != transient.ErrNone {
		t.Fatalf("first get: %v %v", a.Status, err)
	}
	ia := a.Props[0].LockID

	go func() {
		time.Sleep(300 * time.Millisecond)
		_, _ = store.Put(context.Background(), []byte("k"),
			[]transient.PropEntry{{Index: 0, LockID: ia, Value: []byte("prior")}})
	}()

	// B waits up to 2 seconds; the driver replays it after A's Put
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	b, err := store.Get(ctx, []byte("k"), []transient.PropRequest{{Index: 0, Mode: transient.LockModeUpdate}}, 2*time.Second, false)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if b.Status != transient.ErrNone {
		t.Fatalf("second get status = %v", b.Status)
	}
	if b.Props[0].LockID == ia {
		t.Error("second get must carry a fresh lock id")
	}
	if !bytes.Equal(b.Props[0].Value, []byte("prior")) {
		t.Errorf("second get value = %q, want %q", b.Props[0].Value, "prior")
	}
}

func TestStopJoinsDriver(t *testing.T) {
	_, reg := newStoreAndRegistry(t, time.Minute, time.Second)
	mgr, err := New(reg, testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mgr.Start(context.Background())

	done := make(chan struct{})
	go func() {
		mgr.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestMemoryProbeDisabled(t *testing.T) {
	_, reg := newStoreAndRegistry(t, time.Minute, time.Second)
	mgr, err := New(reg, testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	mgr.maybeCheckMemory(time.Now())
	if mgr.MemoryLow() {
		t.Error("disabled probe raised the memory flag")
	}
}

func TestMemoryProbeFlags(t *testing.T) {
	_, reg := newStoreAndRegistry(t, time.Minute, time.Second)
	cfg := testConfig()
	// One byte: any heap exceeds it even after a forced collection
	cfg.MemoryThreshold = 1
	mgr, err := New(reg, cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	mgr.maybeCheckMemory(time.Now())
	if !mgr.MemoryLow() {
		t.Error("probe with 1-byte threshold did not raise the flag")
	}
}
