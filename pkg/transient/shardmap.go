package transient

import "sync"

// shardCount must be a power of two so the hash can be masked into a shard
// index.
const shardCount = 32

// entryShard is one bucket of the store map. Reads take the read lock;
// insert-if-absent and remove take the write lock.
type entryShard struct {
	mu      sync.RWMutex
	entries map[string]*KeyEntry
}

// entryMap is the concurrent map from key bytes to KeyEntry. Key equality is
// content-based: the in-shard map key is string(key), which compares by
// length and bytes; shard selection uses the FNV-1a hash of the key bytes.
type entryMap struct {
	shards [shardCount]entryShard
}

func newEntryMap() *entryMap {
	m := &entryMap{}
	for i := range m.shards {
		m.shards[i].entries = make(map[string]*KeyEntry)
	}
	return m
}

func (m *entryMap) shardFor(key []byte) *entryShard {
	return &m.shards[FNVHash(key)&(shardCount-1)]
}

// get returns the entry for key, or nil.
func (m *entryMap) get(key []byte) *KeyEntry {
	s := m.shardFor(key)
	s.mu.RLock()
	e := s.entries[string(key)]
	s.mu.RUnlock()
	return e
}

// insertIfAbsent inserts fresh and reports whether the insert won. The
// existing entry is returned when it did not.
func (m *entryMap) insertIfAbsent(key []byte, fresh *KeyEntry) (*KeyEntry, bool) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[string(key)]; ok {
		return e, false
	}
	s.entries[string(key)] = fresh
	return fresh, true
}

// remove deletes the mapping for key only if it still points at e. This
// keeps a stale reference (a tombstoned entry, or a sweeper record for a
// deleted-and-recreated key) from evicting a successor entry living at the
// same key bytes.
func (m *entryMap) remove(key []byte, e *KeyEntry) bool {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.entries[string(key)]
	if !ok || cur != e {
		return false
	}
	delete(s.entries, string(key))
	return true
}

// clear drops every entry and returns how many were dropped.
func (m *entryMap) clear() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		n += len(s.entries)
		s.entries = make(map[string]*KeyEntry)
		s.mu.Unlock()
	}
	return n
}

// count returns the number of live entries.
func (m *entryMap) count() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}
