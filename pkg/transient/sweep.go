package transient

import "github.com/propstore/propstore/internal/logger"

// ProcessTimeOuts drains expired records from the head of the timeout queue
// and evicts their entries. Called from the periodic driver.
//
// An entry is removed only when the dequeued record's timestamp still equals
// the entry's own timestamp and the entry is not tombstoned. The double
// check defends against two races: the entry was touched after this record
// was enqueued (a later record carries the authoritative deadline), and the
// key was deleted and re-created with a new entry at the same key bytes (the
// stale record must not evict the successor).
//
// The configuration invariant TimeOut >= 2*LockTimeOut keeps an entry from
// expiring while it still holds live locks.
func (s *Store) ProcessTimeOuts() {
	timeOut := s.cfg.TimeOut().Milliseconds()
	evicted := 0
	for {
		rec, ok := s.timeouts.peek()
		if !ok {
			break
		}
		if nowTick()-rec.timestamp < timeOut {
			break
		}
		rec, ok = s.timeouts.pop()
		if !ok {
			break
		}
		e := rec.entry
		e.mu.Lock()
		if e.timestamp != rec.timestamp || e.tombstoned() {
			e.mu.Unlock()
			continue
		}
		key := e.key
		e.setDeleted()
		e.mu.Unlock()
		if s.entries.remove(key, e) {
			evicted++
			if s.metrics != nil {
				s.metrics.EntryEvicted()
			}
		}
	}
	if evicted > 0 {
		logger.Debug("expired entries evicted",
			logger.KeyStore, s.name,
			logger.KeyEntries, evicted,
		)
	}
	if s.metrics != nil {
		s.metrics.SetDepths(s.entries.count(), s.timeouts.len(), s.waiters.len())
	}
}

// ProcessLockWaitQueue dequeues every parked retry and invokes it, in
// enqueue order. Each retry re-enters its originating operation from the
// top; one that still sees contention re-parks. There is no coalescing: a
// request may bounce many ticks before succeeding, giving up with
// ErrLockWaitTimeOut, or being forced through.
func (s *Store) ProcessLockWaitQueue() {
	retries := s.waiters.drain()
	for _, retry := range retries {
		if s.metrics != nil {
			s.metrics.LockWaitReplayed()
		}
		retry()
	}
}
