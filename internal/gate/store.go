package gate

import "sync"

// Persisted keys shared by the identity manager, the reconciler and the
// finalize step.
const (
	KeyUserID               = "userId"
	KeyCreatedAt            = "createdAt"
	KeyValidToken           = "validToken"
	KeyValidTokenExpiration = "validTokenExpiration"
)

// Store is the per-browser persistent key-value storage the gate runs on.
// Clear wipes every key, not only the ones above.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Clear()
}

// MemoryStore is an in-memory Store, safe for concurrent use.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore creates a store pre-filled with the given values
func NewMemoryStore(values map[string]string) *MemoryStore {
	s := &MemoryStore{values: make(map[string]string, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
}
