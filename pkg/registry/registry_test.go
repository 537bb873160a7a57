package registry

import (
	"testing"
	"time"

	"github.com/propstore/propstore/pkg/transient"
)

func mustCreateStore(t *testing.T, name string) *transient.Store {
	t.Helper()
	store, err := transient.NewStore(name, []string{"p0", "p1"}, transient.Config{
		TimeOut:     time.Minute,
		LockTimeOut: 10 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if reg.Count() != 0 {
		t.Errorf("Expected 0 stores, got %d", reg.Count())
	}
}

func TestAdd(t *testing.T) {
	reg := NewRegistry()
	store := mustCreateStore(t, "sessions")

	if err := reg.Add("sessions", store); err != nil {
		t.Fatalf("Failed to register store: %v", err)
	}
	if reg.Count() != 1 {
		t.Errorf("Expected 1 store, got %d", reg.Count())
	}

	// Duplicate name rejected
	if err := reg.Add("sessions", mustCreateStore(t, "sessions")); err == nil {
		t.Error("Expected error for duplicate name")
	}

	// Nil store and empty name rejected
	if err := reg.Add("other", nil); err == nil {
		t.Error("Expected error for nil store")
	}
	if err := reg.Add("", mustCreateStore(t, "x")); err == nil {
		t.Error("Expected error for empty name")
	}
}

func TestGet(t *testing.T) {
	reg := NewRegistry()
	store := mustCreateStore(t, "sessions")
	if err := reg.Add("sessions", store); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := reg.Get("sessions")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != store {
		t.Error("Get returned a different store")
	}

	if _, err := reg.Get("missing"); err == nil {
		t.Error("Expected error for unknown store")
	}
}

func TestRemoveClearsStore(t *testing.T) {
	reg := NewRegistry()
	store := mustCreateStore(t, "sessions")
	if err := reg.Add("sessions", store); err != nil {
		t.Fatalf("Add: %v", err)
	}
	store.Create([]byte("k"))

	if err := reg.Remove(store); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if reg.Count() != 0 {
		t.Errorf("store still registered after Remove")
	}
	if store.EntryCount() != 0 {
		t.Errorf("store not cleared on Remove")
	}

	if err := reg.Remove(store); err == nil {
		t.Error("Expected error removing an unregistered store")
	}
}

func TestStoreCloseDetaches(t *testing.T) {
	reg := NewRegistry()
	store := mustCreateStore(t, "sessions")
	if err := reg.Add("sessions", store); err != nil {
		t.Fatalf("Add: %v", err)
	}
	store.Create([]byte("k"))

	store.Close()

	if reg.Count() != 0 {
		t.Errorf("Close did not unregister the store")
	}
	if store.EntryCount() != 0 {
		t.Errorf("Close did not clear the store")
	}
}

func TestListSorted(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := reg.Add(name, mustCreateStore(t, name)); err != nil {
			t.Fatalf("Add(%s): %v", name, err)
		}
	}

	names := reg.List()
	if len(names) != 3 || names[0] != "alpha" || names[1] != "mid" || names[2] != "zeta" {
		t.Errorf("List() = %v, want sorted names", names)
	}
}

func TestCloseAll(t *testing.T) {
	reg := NewRegistry()
	s1 := mustCreateStore(t, "a")
	s2 := mustCreateStore(t, "b")
	_ = reg.Add("a", s1)
	_ = reg.Add("b", s2)
	s1.Create([]byte("k"))
	s2.Create([]byte("k"))

	reg.CloseAll()

	if reg.Count() != 0 {
		t.Errorf("stores remain after CloseAll: %d", reg.Count())
	}
	if s1.EntryCount() != 0 || s2.EntryCount() != 0 {
		t.Error("stores not cleared by CloseAll")
	}
}
