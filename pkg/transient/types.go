// Package transient implements an in-memory, key-value transient property
// store with per-property locking, time-based expiration, and asynchronous
// retry of contended operations.
//
// Keys are arbitrary byte sequences. Each key maps to a fixed-width record of
// named properties whose values are opaque byte sequences. A client acquires
// a lock on one or more properties, optionally reads their current values,
// later writes new values (or clears the lock) under the same lock identity,
// and ultimately lets the entry expire or removes it explicitly.
//
// The store is not durable: there is no on-disk representation and no crash
// recovery. Cross-key transactions do not exist.
package transient

import (
	"fmt"
	"time"
)

// ============================================================================
// Lock Modes
// ============================================================================

// LockMode describes how a property lock is held.
type LockMode int

const (
	// LockModeNone means no lock is held (the lock is "open").
	LockModeNone LockMode = iota

	// LockModeCreate locks exclusively, like Update, but signals that the
	// current value must not be returned to the client. Acquiring a Create
	// lock does not change the stored value.
	LockModeCreate

	// LockModeRead is a shared read lock. Granting a new Read lock over an
	// existing Read lock replaces it; the new requester owns its lifetime.
	LockModeRead

	// LockModeUpdate is an exclusive read-write lock.
	LockModeUpdate
)

// String returns a human-readable name for the lock mode.
func (m LockMode) String() string {
	switch m {
	case LockModeNone:
		return "none"
	case LockModeCreate:
		return "create"
	case LockModeRead:
		return "read"
	case LockModeUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// ParseLockMode parses a lock mode name as used in configuration and API
// payloads.
func ParseLockMode(s string) (LockMode, error) {
	switch s {
	case "none":
		return LockModeNone, nil
	case "create":
		return LockModeCreate, nil
	case "read":
		return LockModeRead, nil
	case "update":
		return LockModeUpdate, nil
	default:
		return LockModeNone, fmt.Errorf("unknown lock mode %q", s)
	}
}

// ============================================================================
// Prop Lock
// ============================================================================

// PropLock is the lock record of a single property. It is a value type and
// cheap to copy. A PropLock with Mode == LockModeNone is open.
type PropLock struct {
	// ID identifies a specific acquisition. It is drawn from a store-global
	// monotonic counter and must match on a later Put.
	ID int32

	// Mode is the held lock mode.
	Mode LockMode

	// Timestamp is the monotonic millisecond tick at acquisition.
	Timestamp int64
}

// Expired reports whether the lock is older than span at the given tick.
// An expired lock is treated as absent for blocking purposes, but its ID is
// preserved until cleared so the original holder's Put can still match.
func (l PropLock) Expired(now int64, span time.Duration) bool {
	return now-l.Timestamp > span.Milliseconds()
}

// ============================================================================
// Requests and Entries
// ============================================================================

// PropRequest names one property (by index) and the lock mode to acquire
// on it.
type PropRequest struct {
	Index int
	Mode  LockMode
}

// PropEntry carries one property across the store boundary: on the way out
// of Get/Remove (index, granted lock id, current value) and on the way into
// Put (index, lock id to prove, new value).
//
// On Put, a nil Value clears the lock without storing anything; a non-nil
// Value (empty included) is stored. On Get, Value is nil when the request
// mode was LockModeCreate.
//
// Value ownership transfers across the boundary: the store does not copy,
// so callers must treat slices as immutable once handed over.
type PropEntry struct {
	Index  int
	LockID int32
	Value  []byte
}

// ============================================================================
// Operation Results
// ============================================================================

// GetResult is the outcome of a Get or Remove operation.
// Status is ErrNone on success, ErrLockWaitTimeOut when the wait budget ran
// out, or a definitive error. Props is nil unless Status is ErrNone.
type GetResult struct {
	Status ErrorCode
	Props  []PropEntry
}

// PutResult is the outcome of a Put operation.
type PutResult struct {
	Status ErrorCode
}

// DeleteResult is the outcome of a Delete operation. Deleted reports whether
// the map removal itself succeeded; a concurrent sweep may have removed the
// entry first.
type DeleteResult struct {
	Status  ErrorCode
	Deleted bool
}
