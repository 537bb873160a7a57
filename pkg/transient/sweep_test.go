package transient

import (
	"testing"
	"time"
)

func TestProcessTimeOutsEvictsExpired(t *testing.T) {
	s := newTestStore(t, Config{TimeOut: 200 * time.Millisecond, LockTimeOut: 100 * time.Millisecond})
	key := []byte("k")
	s.Create(key)

	s.ProcessTimeOuts()
	if exists, _ := s.Exists(key); !exists {
		t.Fatal("entry evicted before its timeout")
	}

	time.Sleep(250 * time.Millisecond)
	s.ProcessTimeOuts()
	if exists, _ := s.Exists(key); exists {
		t.Fatal("entry survived past its timeout")
	}
	if s.EntryCount() != 0 {
		t.Errorf("entry count = %d after sweep", s.EntryCount())
	}
}

func TestTouchCarriesAuthoritativeDeadline(t *testing.T) {
	s := newTestStore(t, Config{TimeOut: 300 * time.Millisecond, LockTimeOut: 100 * time.Millisecond})
	key := []byte("k")
	s.Create(key)

	// A Put touches the entry; even an empty one restarts the timer
	time.Sleep(200 * time.Millisecond)
	res := await(t, s.PutAsync(key, nil), time.Second)
	if res.Status != ErrNone {
		t.Fatalf("empty put = %v", res.Status)
	}

	// The original record is now past TimeOut, but it is stale: the touch
	// enqueued a newer record with the authoritative deadline
	time.Sleep(150 * time.Millisecond)
	s.ProcessTimeOuts()
	if exists, _ := s.Exists(key); !exists {
		t.Fatal("stale timeout record evicted a touched entry")
	}

	// Once the fresh record expires too, the entry goes
	time.Sleep(250 * time.Millisecond)
	s.ProcessTimeOuts()
	if exists, _ := s.Exists(key); exists {
		t.Fatal("entry survived past its refreshed timeout")
	}
}

func TestStaleRecordDoesNotEvictRecreatedKey(t *testing.T) {
	s := newTestStore(t, Config{TimeOut: 300 * time.Millisecond, LockTimeOut: 100 * time.Millisecond})
	key := []byte("k")

	s.Create(key)
	res := await(t, s.DeleteAsync(key, 0, true), time.Second)
	if res.Status != ErrNone {
		t.Fatalf("delete = %v", res.Status)
	}

	// Re-create: a new KeyEntry now lives at the same key bytes while the
	// old entry's timeout record is still queued
	time.Sleep(100 * time.Millisecond)
	if !s.Create(key) {
		t.Fatal("re-create failed")
	}

	// Let the stale record pass its deadline, but not the new one
	time.Sleep(250 * time.Millisecond)
	s.ProcessTimeOuts()
	if exists, _ := s.Exists(key); !exists {
		t.Fatal("stale record evicted the re-created entry")
	}

	// The new entry still persists to its own expiration
	time.Sleep(200 * time.Millisecond)
	s.ProcessTimeOuts()
	if exists, _ := s.Exists(key); exists {
		t.Fatal("re-created entry survived its own timeout")
	}
}

func TestProcessTimeOutsStopsAtFreshHead(t *testing.T) {
	s := newTestStore(t, Config{TimeOut: time.Minute, LockTimeOut: time.Second})
	s.Create([]byte("a"))
	s.Create([]byte("b"))

	s.ProcessTimeOuts()
	if s.timeouts.len() != 2 {
		t.Errorf("fresh records dequeued: %d left, want 2", s.timeouts.len())
	}
	if s.EntryCount() != 2 {
		t.Errorf("fresh entries evicted")
	}
}

func TestProcessLockWaitQueueReplaysInOrder(t *testing.T) {
	s := newTestStore(t, defaultTestConfig())

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		s.waiters.push(func() { order = append(order, i) })
	}
	s.ProcessLockWaitQueue()

	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("replay order = %v, want [0 1 2]", order)
	}
	if s.waiters.len() != 0 {
		t.Errorf("waiters not drained")
	}
}

func TestReplayedRetryCanRepark(t *testing.T) {
	s := newTestStore(t, defaultTestConfig())
	key := []byte("k")

	await(t, s.GetAsync(key, []PropRequest{{Index: 0, Mode: LockModeUpdate}}, 0, false), time.Second)

	ch := s.GetAsync(key, []PropRequest{{Index: 0, Mode: LockModeUpdate}}, 10*time.Second, false)
	if s.waiters.len() != 1 {
		t.Fatalf("waiters = %d, want 1", s.waiters.len())
	}

	// Still contended: the retry must re-park rather than resolve
	s.ProcessLockWaitQueue()
	select {
	case res := <-ch:
		t.Fatalf("contended retry resolved: %+v", res)
	default:
	}
	if s.waiters.len() != 1 {
		t.Errorf("retry did not re-park, waiters = %d", s.waiters.len())
	}
}
