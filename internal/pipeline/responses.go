package pipeline

import (
	"sync"

	"apitest/internal/httpclient"
)

// responseStore keeps the latest response per named item for placeholder
// resolution. Guarded because the performance engine executes items from
// several workers at once.
type responseStore struct {
	mu        sync.RWMutex
	responses map[string]*httpclient.Response
}

func newResponseStore() *responseStore {
	return &responseStore{responses: make(map[string]*httpclient.Response)}
}

func (s *responseStore) put(name string, resp *httpclient.Response) {
	s.mu.Lock()
	s.responses[name] = resp
	s.mu.Unlock()
}

func (s *responseStore) snapshot() map[string]*httpclient.Response {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*httpclient.Response, len(s.responses))
	for name, resp := range s.responses {
		out[name] = resp
	}
	return out
}
