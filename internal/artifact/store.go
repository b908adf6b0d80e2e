// Package artifact keeps the binary files produced in the remote container.
package artifact

import "sync"

// Store maps a remote file id to canonical image bytes. Entries are
// write-once: Put never overwrites an existing id.
type Store struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewStore() *Store {
	return &Store{items: make(map[string][]byte)}
}

func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[id]
	return ok
}

// Get returns a copy of the stored bytes.
func (s *Store) Get(id string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.items[id]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, true
}

// Put stores data under id and reports whether it was inserted.
func (s *Store) Put(id string, data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; ok {
		return false
	}
	b := make([]byte, len(data))
	copy(b, data)
	s.items[id] = b
	return true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string][]byte)
}
