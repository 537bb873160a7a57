package transient

import "time"

// Operation names used as metric labels.
const (
	OpCreate = "create"
	OpExists = "exists"
	OpGet    = "get"
	OpPut    = "put"
	OpDelete = "delete"
	OpRemove = "remove"
)

// StoreMetrics receives store-level observations. Implementations must be
// safe for concurrent use. A nil StoreMetrics disables instrumentation with
// zero overhead; the store guards every call.
type StoreMetrics interface {
	// ObserveOp records one completed operation with its final status.
	ObserveOp(op string, status ErrorCode, duration time.Duration)

	// LockWaitParked records a contended request parked for retry.
	LockWaitParked()

	// LockWaitReplayed records a parked retry invoked by the sweeper.
	LockWaitReplayed()

	// EntryEvicted records an entry removed by the timeout sweep.
	EntryEvicted()

	// SetDepths publishes the live entry count and queue depths.
	SetDepths(entries, timeoutRecords, lockWaiters int)
}

// observeOp is the nil-safe helper used on every operation path.
func (s *Store) observeOp(op string, status ErrorCode, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveOp(op, status, time.Since(start))
}
