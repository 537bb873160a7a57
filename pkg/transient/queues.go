package transient

import "sync"

// timeoutRecord drives entry-level expiration. The record may outlive the
// map entry; the sweeper reconciles via timestamp equality, not identity
// lifetime, so holding the entry pointer here is safe.
type timeoutRecord struct {
	entry     *KeyEntry
	timestamp int64
}

// timeoutQueue is a multi-producer FIFO of timeout records. Records are
// enqueued on entry creation and on every touch; the sweeper drains expired
// records from the head.
type timeoutQueue struct {
	mu      sync.Mutex
	records []timeoutRecord
}

func (q *timeoutQueue) push(e *KeyEntry, timestamp int64) {
	q.mu.Lock()
	q.records = append(q.records, timeoutRecord{entry: e, timestamp: timestamp})
	q.mu.Unlock()
}

// peek returns the head record without removing it.
func (q *timeoutQueue) peek() (timeoutRecord, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.records) == 0 {
		return timeoutRecord{}, false
	}
	return q.records[0], true
}

func (q *timeoutQueue) pop() (timeoutRecord, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.records) == 0 {
		return timeoutRecord{}, false
	}
	rec := q.records[0]
	q.records[0] = timeoutRecord{}
	q.records = q.records[1:]
	return rec, true
}

func (q *timeoutQueue) clear() {
	q.mu.Lock()
	q.records = nil
	q.mu.Unlock()
}

func (q *timeoutQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records)
}

// lockWaitQueue holds deferred retry continuations for requests that saw
// contention. Retries are invoked only from the sweeper, never from the
// client goroutine that saw contention; that keeps lock-wait handling off
// the critical path. A retry that still sees contention re-parks itself.
type lockWaitQueue struct {
	mu      sync.Mutex
	waiters []func()
}

func (q *lockWaitQueue) push(retry func()) {
	q.mu.Lock()
	q.waiters = append(q.waiters, retry)
	q.mu.Unlock()
}

// drain removes and returns all parked retries in enqueue order.
func (q *lockWaitQueue) drain() []func() {
	q.mu.Lock()
	waiters := q.waiters
	q.waiters = nil
	q.mu.Unlock()
	return waiters
}

func (q *lockWaitQueue) clear() {
	q.mu.Lock()
	q.waiters = nil
	q.mu.Unlock()
}

func (q *lockWaitQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiters)
}
