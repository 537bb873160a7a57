package transient

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/propstore/propstore/internal/logger"
)

// Store is a named transient property store: a concurrent map from key bytes
// to KeyEntry, the two queues driving expiration and contention retry, and
// the store-global lock id counter.
//
// All operations come in an asynchronous form returning a buffered result
// channel (the completion handle) plus a context-aware blocking wrapper.
// The only true suspension point is lock-wait parking: when contention is
// seen and waiting is permitted, the handle stays unresolved and the request
// is replayed on a later sweeper tick. Everything else resolves before the
// async call returns.
type Store struct {
	name      string
	id        string
	propNames []string
	cfg       storeConfig

	lockID   atomic.Int32
	entries  *entryMap
	timeouts timeoutQueue
	waiters  lockWaitQueue

	metrics StoreMetrics

	// onDetach unregisters this store from its registry; set by the
	// registry on Add.
	onDetach func(*Store)
}

// NewStore creates a store with the given property descriptors. Property
// indices in requests refer to positions in propNames. The metrics receiver
// may be nil.
func NewStore(name string, propNames []string, cfg Config, metrics StoreMetrics) (*Store, error) {
	if len(propNames) == 0 {
		return nil, ErrNoProps
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Store{
		name:      name,
		id:        uuid.New().String(),
		propNames: append([]string(nil), propNames...),
		entries:   newEntryMap(),
		metrics:   metrics,
	}
	s.cfg.timeOut = cfg.TimeOut
	s.cfg.lockTimeOut = cfg.LockTimeOut
	return s, nil
}

// Name returns the store name.
func (s *Store) Name() string { return s.name }

// ID returns the unique instance id assigned at creation.
func (s *Store) ID() string { return s.id }

// PropNames returns a copy of the property descriptors.
func (s *Store) PropNames() []string {
	return append([]string(nil), s.propNames...)
}

// PropCount returns the number of property descriptors.
func (s *Store) PropCount() int { return len(s.propNames) }

// EntryCount returns the number of live entries.
func (s *Store) EntryCount() int { return s.entries.count() }

// TimeOut returns the current entry timeout.
func (s *Store) TimeOut() time.Duration { return s.cfg.TimeOut() }

// LockTimeOut returns the current lock timeout.
func (s *Store) LockTimeOut() time.Duration { return s.cfg.LockTimeOut() }

// SetTimeOut changes the entry timeout. The change is rejected, preserving
// the prior value, if d is negative or smaller than twice the lock timeout.
func (s *Store) SetTimeOut(d time.Duration) error { return s.cfg.setTimeOut(d) }

// SetLockTimeOut changes the lock timeout. The change is rejected,
// preserving the prior value, if d is negative or more than half the entry
// timeout.
func (s *Store) SetLockTimeOut(d time.Duration) error { return s.cfg.setLockTimeOut(d) }

// nextLockID draws a fresh lock id from the store-global counter. The int32
// namespace wraps; long-lived stores accept the wrap.
func (s *Store) nextLockID() int32 {
	return s.lockID.Add(1)
}

// getOrInsert returns the live entry for key, creating and registering a
// fresh one (with its timeout record) when absent.
func (s *Store) getOrInsert(key []byte) *KeyEntry {
	if e := s.entries.get(key); e != nil {
		return e
	}
	now := nowTick()
	fresh := newKeyEntry(key, len(s.propNames), now)
	e, inserted := s.entries.insertIfAbsent(key, fresh)
	if inserted {
		s.timeouts.push(fresh, now)
	}
	return e
}

// touchAndEnqueue restarts the entry's expiration timer: the entry timestamp
// and the new timeout record carry the same tick, which is what the sweeper's
// equality check keys on.
func (s *Store) touchAndEnqueue(e *KeyEntry) {
	now := nowTick()
	e.mu.Lock()
	e.touch(now)
	e.mu.Unlock()
	s.timeouts.push(e, now)
}

// park defers a contended request for replay on the next sweeper tick.
func (s *Store) park(retry func()) {
	s.waiters.push(retry)
	if s.metrics != nil {
		s.metrics.LockWaitParked()
	}
}

// ============================================================================
// Public Operations
// ============================================================================

// Create inserts a fresh entry for key if absent and reports whether the
// insert won. Property indexes are not validated here.
func (s *Store) Create(key []byte) bool {
	started := time.Now()
	now := nowTick()
	fresh := newKeyEntry(key, len(s.propNames), now)
	_, inserted := s.entries.insertIfAbsent(key, fresh)
	if inserted {
		s.timeouts.push(fresh, now)
		s.observeOp(OpCreate, ErrNone, started)
	} else {
		s.observeOp(OpCreate, ErrAlreadyExists, started)
	}
	return inserted
}

// Exists reports whether key is present and, if so, the whole seconds
// elapsed since the entry was last touched. Note this is elapsed-since-touch,
// not remaining-until-expiry; the behavior is kept for compatibility.
func (s *Store) Exists(key []byte) (bool, int64) {
	started := time.Now()
	e := s.entries.get(key)
	if e == nil {
		s.observeOp(OpExists, ErrDoesNotExist, started)
		return false, 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tombstoned() {
		s.observeOp(OpExists, ErrDoesNotExist, started)
		return false, 0
	}
	s.observeOp(OpExists, ErrNone, started)
	return true, (nowTick() - e.timestamp) / 1000
}

// GetAsync acquires the requested property locks and reads current values.
//
// The key's entry is created if absent. When a requested property is blocked
// by a live lock, the request waits up to maxWait (zero means no wait),
// parked on the lock-wait queue and replayed from the top on sweeper ticks
// so the budget decays against the original arrival tick. When the budget
// runs out the result is ErrLockWaitTimeOut, unless force is set, in which
// case the locks are taken over regardless.
func (s *Store) GetAsync(key []byte, requests []PropRequest, maxWait time.Duration, force bool) <-chan GetResult {
	ch := make(chan GetResult, 1)
	s.runGet(key, requests, maxWait, force, nowTick(), time.Now(), ch)
	return ch
}

// Get is the blocking form of GetAsync.
func (s *Store) Get(ctx context.Context, key []byte, requests []PropRequest, maxWait time.Duration, force bool) (GetResult, error) {
	select {
	case res := <-s.GetAsync(key, requests, maxWait, force):
		return res, nil
	case <-ctx.Done():
		return GetResult{}, ctx.Err()
	}
}

func (s *Store) runGet(key []byte, requests []PropRequest, maxWait time.Duration, force bool, startTick int64, started time.Time, ch chan<- GetResult) {
	for {
		e := s.getOrInsert(key)
		e.mu.Lock()
		if e.tombstoned() {
			// A sweep or delete won the race; the map no longer holds this
			// entry, so re-enter and create a fresh one.
			e.mu.Unlock()
			continue
		}
		now := nowTick()
		if e.countLocked(requests, now, s.cfg.LockTimeOut()) == 0 {
			props := e.lockAndGet(requests, s.nextLockID(), now)
			e.mu.Unlock()
			s.observeOp(OpGet, ErrNone, started)
			ch <- GetResult{Status: ErrNone, Props: props}
			return
		}
		if maxWait == 0 || now-startTick > maxWait.Milliseconds() {
			if force {
				props := e.lockAndGet(requests, s.nextLockID(), now)
				e.mu.Unlock()
				s.observeOp(OpGet, ErrNone, started)
				ch <- GetResult{Status: ErrNone, Props: props}
				return
			}
			e.mu.Unlock()
			s.observeOp(OpGet, ErrLockWaitTimeOut, started)
			ch <- GetResult{Status: ErrLockWaitTimeOut}
			return
		}
		e.mu.Unlock()
		s.park(func() {
			s.runGet(key, requests, maxWait, force, startTick, started, ch)
		})
		return
	}
}

// PutAsync stores new values (or clears locks) under previously granted lock
// identities and opens the touched locks.
//
// A Put against a known key restarts the entry's expiration timer before the
// per-prop lock checks run, so even a Put that fails with a lock error
// extends the key's lifetime.
func (s *Store) PutAsync(key []byte, values []PropEntry) <-chan PutResult {
	ch := make(chan PutResult, 1)
	started := time.Now()
	e := s.entries.get(key)
	if e == nil {
		s.observeOp(OpPut, ErrDoesNotExist, started)
		ch <- PutResult{Status: ErrDoesNotExist}
		return ch
	}
	s.touchAndEnqueue(e)
	e.mu.Lock()
	if e.tombstoned() {
		e.mu.Unlock()
		s.observeOp(OpPut, ErrDoesNotExist, started)
		ch <- PutResult{Status: ErrDoesNotExist}
		return ch
	}
	code := e.set(values)
	e.mu.Unlock()
	s.observeOp(OpPut, code, started)
	ch <- PutResult{Status: code}
	return ch
}

// Put is the blocking form of PutAsync.
func (s *Store) Put(ctx context.Context, key []byte, values []PropEntry) (PutResult, error) {
	select {
	case res := <-s.PutAsync(key, values):
		return res, nil
	case <-ctx.Done():
		return PutResult{}, ctx.Err()
	}
}

// DeleteAsync removes the entry for key once no property holds a live lock,
// with the same wait/force protocol as GetAsync. Deleted reports whether the
// map removal itself succeeded; a concurrent sweep may get there first.
func (s *Store) DeleteAsync(key []byte, maxWait time.Duration, force bool) <-chan DeleteResult {
	ch := make(chan DeleteResult, 1)
	s.runDelete(key, maxWait, force, nowTick(), time.Now(), ch)
	return ch
}

// Delete is the blocking form of DeleteAsync.
func (s *Store) Delete(ctx context.Context, key []byte, maxWait time.Duration, force bool) (DeleteResult, error) {
	select {
	case res := <-s.DeleteAsync(key, maxWait, force):
		return res, nil
	case <-ctx.Done():
		return DeleteResult{}, ctx.Err()
	}
}

func (s *Store) runDelete(key []byte, maxWait time.Duration, force bool, startTick int64, started time.Time, ch chan<- DeleteResult) {
	e := s.entries.get(key)
	if e == nil {
		s.observeOp(OpDelete, ErrDoesNotExist, started)
		ch <- DeleteResult{Status: ErrDoesNotExist}
		return
	}
	e.mu.Lock()
	if e.tombstoned() {
		e.mu.Unlock()
		s.observeOp(OpDelete, ErrDoesNotExist, started)
		ch <- DeleteResult{Status: ErrDoesNotExist}
		return
	}
	now := nowTick()
	if e.countAllLocked(now, s.cfg.LockTimeOut()) > 0 {
		if maxWait != 0 && now-startTick <= maxWait.Milliseconds() {
			e.mu.Unlock()
			s.park(func() {
				s.runDelete(key, maxWait, force, startTick, started, ch)
			})
			return
		}
		if !force {
			e.mu.Unlock()
			s.observeOp(OpDelete, ErrLockWaitTimeOut, started)
			ch <- DeleteResult{Status: ErrLockWaitTimeOut}
			return
		}
	}
	e.setDeleted()
	e.mu.Unlock()
	deleted := s.entries.remove(key, e)
	s.observeOp(OpDelete, ErrNone, started)
	ch <- DeleteResult{Status: ErrNone, Deleted: deleted}
}

// RemoveAsync is DeleteAsync plus a final read: every assigned property is
// emitted before the entry is removed. When the final map removal loses to a
// concurrent sweep, or the key is absent to begin with, the status is
// ErrDoesNotExist.
func (s *Store) RemoveAsync(key []byte, maxWait time.Duration, force bool) <-chan GetResult {
	ch := make(chan GetResult, 1)
	s.runRemove(key, maxWait, force, nowTick(), time.Now(), ch)
	return ch
}

// Remove is the blocking form of RemoveAsync.
func (s *Store) Remove(ctx context.Context, key []byte, maxWait time.Duration, force bool) (GetResult, error) {
	select {
	case res := <-s.RemoveAsync(key, maxWait, force):
		return res, nil
	case <-ctx.Done():
		return GetResult{}, ctx.Err()
	}
}

func (s *Store) runRemove(key []byte, maxWait time.Duration, force bool, startTick int64, started time.Time, ch chan<- GetResult) {
	e := s.entries.get(key)
	if e == nil {
		s.observeOp(OpRemove, ErrDoesNotExist, started)
		ch <- GetResult{Status: ErrDoesNotExist}
		return
	}
	e.mu.Lock()
	if e.tombstoned() {
		e.mu.Unlock()
		s.observeOp(OpRemove, ErrDoesNotExist, started)
		ch <- GetResult{Status: ErrDoesNotExist}
		return
	}
	now := nowTick()
	if e.countAllLocked(now, s.cfg.LockTimeOut()) > 0 {
		if maxWait != 0 && now-startTick <= maxWait.Milliseconds() {
			e.mu.Unlock()
			s.park(func() {
				s.runRemove(key, maxWait, force, startTick, started, ch)
			})
			return
		}
		if !force {
			e.mu.Unlock()
			s.observeOp(OpRemove, ErrLockWaitTimeOut, started)
			ch <- GetResult{Status: ErrLockWaitTimeOut}
			return
		}
	}
	props := make([]PropEntry, len(e.props))
	n := e.getAll(props)
	e.setDeleted()
	e.mu.Unlock()
	if !s.entries.remove(key, e) {
		s.observeOp(OpRemove, ErrDoesNotExist, started)
		ch <- GetResult{Status: ErrDoesNotExist}
		return
	}
	s.observeOp(OpRemove, ErrNone, started)
	ch <- GetResult{Status: ErrNone, Props: props[:n]}
}

// ============================================================================
// Store Lifecycle
// ============================================================================

// Clear drains the map and both queues without respecting locks. Parked
// retries are discarded; their completion handles never resolve, so callers
// using the blocking wrappers observe their context deadline.
func (s *Store) Clear() {
	dropped := s.entries.clear()
	s.timeouts.clear()
	s.waiters.clear()
	if s.metrics != nil {
		s.metrics.SetDepths(0, 0, 0)
	}
	logger.Info("store cleared", logger.KeyStore, s.name, logger.KeyEntries, dropped)
}

// OnDetach installs the registry unregistration hook invoked by Close.
func (s *Store) OnDetach(fn func(*Store)) {
	s.onDetach = fn
}

// Close unregisters the store from its registry and clears it.
func (s *Store) Close() {
	if s.onDetach != nil {
		s.onDetach(s)
	}
	s.Clear()
}
