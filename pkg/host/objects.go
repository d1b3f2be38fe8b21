package host

import (
	"sort"
	"sync"
)

// ObjectStore hands values between nodes by reference.
// It lives independently of any run and is emptied only by ResetNamespace.
type ObjectStore struct {
	mu    sync.RWMutex
	items map[string]any
}

// NewObjectStore creates an empty store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{items: make(map[string]any)}
}

// Put stores value under key, replacing any previous value.
func (s *ObjectStore) Put(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
}

// Get returns the stored value itself, never a copy.
func (s *ObjectStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// Delete removes key.
func (s *ObjectStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

// Keys lists the stored keys in sorted order.
func (s *ObjectStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored values.
func (s *ObjectStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear drops every value.
func (s *ObjectStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]any)
}
