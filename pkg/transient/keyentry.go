package transient

import (
	"sync"
	"time"
)

// emptyValue is the sentinel stored when a property is locked before any
// value has been written. It keeps such a Prop distinguishable from one that
// was never touched: a nil Value means Unassigned, emptyValue (or any
// non-nil slice) means Assigned. The transition Unassigned -> Assigned-Empty
// happens on lock acquisition and is visible to getAll.
var emptyValue = make([]byte, 0)

// Prop is one slot in a key's record: the current lock and the current
// value. The zero Prop is Unassigned.
type Prop struct {
	Lock  PropLock
	Value []byte
}

// assigned reports whether the property exists, i.e. has ever been written
// or locked. Unassigned props are never considered locked regardless of any
// lock record.
func (p *Prop) assigned() bool {
	return p.Value != nil
}

// blocks reports whether the currently held lock blocks a request for the
// given mode. Requested None never blocks. A Read request against a held
// Read lock does not block; granting it replaces the old Read lock.
// Update and Create both lock exclusively.
func (p *Prop) blocks(requested LockMode, now int64, lockSpan time.Duration) bool {
	if requested == LockModeNone {
		return false
	}
	if !p.assigned() {
		return false
	}
	if p.Lock.Mode == LockModeNone {
		return false
	}
	if p.Lock.Expired(now, lockSpan) {
		return false
	}
	if p.Lock.Mode == LockModeRead && requested == LockModeRead {
		return false
	}
	return true
}

// KeyEntry is the record for one key: a fixed-size array of Props, the key
// bytes, and an entry-level timestamp. It is the unit of mutual exclusion;
// every operation on an entry serializes on mu. The props slice length is
// constant for the lifetime of the entry and equals the enclosing store's
// descriptor count.
//
// A nil key tombstones the entry: no further writes may occur and it must
// not remain reachable from the store map.
type KeyEntry struct {
	mu        sync.Mutex
	key       []byte
	props     []Prop
	timestamp int64
}

// newKeyEntry builds a live entry for the given key. The key bytes are
// copied; keys are immutable after insertion.
func newKeyEntry(key []byte, propCount int, now int64) *KeyEntry {
	k := make([]byte, len(key))
	copy(k, key)
	return &KeyEntry{
		key:       k,
		props:     make([]Prop, propCount),
		timestamp: now,
	}
}

// tombstoned reports whether the entry has been logically removed.
// Callers must hold mu.
func (e *KeyEntry) tombstoned() bool {
	return e.key == nil
}

// touch updates the entry timestamp. Callers must hold mu.
func (e *KeyEntry) touch(now int64) {
	e.timestamp = now
}

// countLocked counts the requested props that currently block the request
// per the lock compatibility rules. Out-of-range indices never block.
// Callers must hold mu.
func (e *KeyEntry) countLocked(requests []PropRequest, now int64, lockSpan time.Duration) int {
	n := 0
	for _, req := range requests {
		if req.Index < 0 || req.Index >= len(e.props) {
			continue
		}
		if e.props[req.Index].blocks(req.Mode, now, lockSpan) {
			n++
		}
	}
	return n
}

// countAllLocked counts every prop currently holding a live lock, without a
// request filter. Callers must hold mu.
func (e *KeyEntry) countAllLocked(now int64, lockSpan time.Duration) int {
	n := 0
	for i := range e.props {
		p := &e.props[i]
		if !p.assigned() || p.Lock.Mode == LockModeNone {
			continue
		}
		if p.Lock.Expired(now, lockSpan) {
			continue
		}
		n++
	}
	return n
}

// lockAndGet installs a fresh lock on each requested prop and reports the
// granted entries in request order. A prop that was Unassigned becomes
// Assigned-Empty, preserving the new lock's identity across the first write.
// The reported value is nil for Create requests, otherwise the current
// value. Out-of-range indices are silently skipped and do not appear in the
// output. Callers must hold mu.
func (e *KeyEntry) lockAndGet(requests []PropRequest, newLockID int32, now int64) []PropEntry {
	out := make([]PropEntry, 0, len(requests))
	for _, req := range requests {
		if req.Index < 0 || req.Index >= len(e.props) {
			continue
		}
		p := &e.props[req.Index]
		p.Lock = PropLock{ID: newLockID, Mode: req.Mode, Timestamp: now}
		if p.Value == nil {
			p.Value = emptyValue
		}
		var value []byte
		if req.Mode != LockModeCreate {
			value = p.Value
		}
		out = append(out, PropEntry{Index: req.Index, LockID: newLockID, Value: value})
	}
	return out
}

// getAll writes one PropEntry per assigned prop into out, index-ascending,
// regardless of lock state, and returns the count. The caller-supplied
// buffer must hold at least len(props) entries. Callers must hold mu.
func (e *KeyEntry) getAll(out []PropEntry) int {
	n := 0
	for i := range e.props {
		p := &e.props[i]
		if !p.assigned() {
			continue
		}
		out[n] = PropEntry{Index: i, LockID: p.Lock.ID, Value: p.Value}
		n++
	}
	return n
}

// set applies incoming prop entries. A non-nil value is an update: the prop
// must be assigned and locked, the lock id must match, and the held mode
// must not be Read. A nil value only clears the lock: the id must match, or
// the held lock must be a Read lock (a Read lock may have been replaced out
// from under its original holder, so any id may clear it).
//
// Lock expiry is deliberately not consulted here: an expired lock whose id
// was never replaced still matches, so the original holder's late Put
// succeeds.
//
// After each per-prop check passes the lock is unconditionally opened
// (mode -> None, id preserved). The first failure aborts and returns its
// code; earlier successes in the same call are retained. Callers must
// hold mu.
func (e *KeyEntry) set(newProps []PropEntry) ErrorCode {
	for _, in := range newProps {
		if in.Index < 0 || in.Index >= len(e.props) {
			return ErrGeneral
		}
		p := &e.props[in.Index]
		if in.Value != nil {
			if !p.assigned() || p.Lock.Mode == LockModeNone {
				return ErrNotLocked
			}
			if p.Lock.ID != in.LockID {
				return ErrLockIdMismatch
			}
			if p.Lock.Mode == LockModeRead {
				return ErrInvalidLock
			}
			p.Value = in.Value
		} else {
			if p.Lock.ID != in.LockID && p.Lock.Mode != LockModeRead {
				return ErrLockIdMismatch
			}
		}
		p.Lock.Mode = LockModeNone
	}
	return ErrNone
}

// setDeleted tombstones the entry. Idempotent. Callers must hold mu.
func (e *KeyEntry) setDeleted() {
	e.key = nil
}
