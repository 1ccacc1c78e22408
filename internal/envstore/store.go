// Session variable storage shared across script executions.
// Performance-test workers mutate one store concurrently, so every
// operation takes the store mutex; there is no cross-key transaction.

package envstore

import "sync"

// Store is a session-scoped string key/value map. The zero value is not
// usable; construct with New.
type Store struct {
	mu   sync.RWMutex
	vars map[string]string
}

// New creates an empty store, optionally seeded from initial maps.
// Later maps win on key collisions.
func New(seed ...map[string]string) *Store {
	s := &Store{vars: make(map[string]string)}
	for _, m := range seed {
		for k, v := range m {
			s.vars[k] = v
		}
	}
	return s
}

// Get returns the value for key and whether it is present.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	v, ok := s.vars[key]
	s.mu.RUnlock()
	return v, ok
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	s.vars[key] = value
	s.mu.Unlock()
}

// Contains reports whether key is present.
func (s *Store) Contains(key string) bool {
	s.mu.RLock()
	_, ok := s.vars[key]
	s.mu.RUnlock()
	return ok
}

// Remove deletes key. Removing an absent key is a no-op.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	delete(s.vars, key)
	s.mu.Unlock()
}

// Snapshot returns a copy of the current contents. The copy is detached:
// later store mutations are not reflected in it and vice versa.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	out := make(map[string]string, len(s.vars))
	for k, v := range s.vars {
		out[k] = v
	}
	s.mu.RUnlock()
	return out
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	n := len(s.vars)
	s.mu.RUnlock()
	return n
}

// Clear removes every key. Used on explicit session reset only.
func (s *Store) Clear() {
	s.mu.Lock()
	s.vars = make(map[string]string)
	s.mu.Unlock()
}
