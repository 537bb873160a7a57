// Package registry tracks the named transient stores of one process.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/propstore/propstore/pkg/transient"
)

// Registry is the process-level storage manager bookkeeping: thread-safe
// registration and lookup of named stores. All mutations serialize under a
// single mutex.
//
// Example usage:
//
//	reg := NewRegistry()
//	store, _ := transient.NewStore("sessions", []string{"token", "state"}, cfg, nil)
//	reg.Add("sessions", store)
//
//	s, _ := reg.Get("sessions")
type Registry struct {
	mu     sync.RWMutex
	stores map[string]*transient.Store
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		stores: make(map[string]*transient.Store),
	}
}

// Add registers a named store. Returns an error if the name is empty, the
// store is nil, or a store with the same name already exists. The store's
// detach hook is pointed back at this registry so Close unregisters it.
func (r *Registry) Add(name string, store *transient.Store) error {
	if store == nil {
		return fmt.Errorf("cannot register nil store")
	}
	if name == "" {
		return fmt.Errorf("cannot register store with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stores[name]; exists {
		return fmt.Errorf("store %q already registered", name)
	}

	store.OnDetach(r.detach)
	r.stores[name] = store
	return nil
}

// detach drops every registration of the given store without clearing it.
func (r *Registry) detach(store *transient.Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, s := range r.stores {
		if s == store {
			delete(r.stores, name)
		}
	}
}

// Remove unregisters the store and clears it. Returns an error if the store
// is not registered.
func (r *Registry) Remove(store *transient.Store) error {
	r.mu.Lock()
	found := false
	for name, s := range r.stores {
		if s == store {
			delete(r.stores, name)
			found = true
		}
	}
	r.mu.Unlock()

	if !found {
		return fmt.Errorf("store %q not registered", store.Name())
	}
	store.Clear()
	return nil
}

// Get retrieves a store by name.
func (r *Registry) Get(name string) (*transient.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, exists := r.stores[name]
	if !exists {
		return nil, fmt.Errorf("store %q not found", name)
	}
	return store, nil
}

// List returns all registered store names, sorted. The returned slice is a
// copy and safe to modify.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stores returns the registered stores themselves. The slice is a copy; the
// stores are shared.
func (r *Registry) Stores() []*transient.Store {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stores := make([]*transient.Store, 0, len(r.stores))
	for _, s := range r.stores {
		stores = append(stores, s)
	}
	return stores
}

// Count returns the number of registered stores.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}

// CloseAll clears and unregisters every store. Used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	stores := make([]*transient.Store, 0, len(r.stores))
	for _, s := range r.stores {
		stores = append(stores, s)
	}
	r.stores = make(map[string]*transient.Store)
	r.mu.Unlock()

	for _, s := range stores {
		s.Clear()
	}
}
