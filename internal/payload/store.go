package payload

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrUnknownPayload reports a lookup for an id the store has never seen or
// has already removed.
var ErrUnknownPayload = errors.New("unknown payload id")

// Store is an in-memory id -> payload registry. Mutating calls are
// serialized internally so concurrent drivers can share one store; readers
// receive the stored payload itself and must treat it as immutable.
type Store struct {
	mu       sync.RWMutex
	payloads map[string]Map
}

// NewStore returns an empty registry.
func NewStore() *Store {
	return &Store{payloads: make(map[string]Map)}
}

// Add registers payload p under id, replacing any previous entry.
func (s *Store) Add(id string, p Map) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads[id] = p
}

// Get returns the payload registered under id.
func (s *Store) Get(id string) (Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payloads[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPayload, id)
	}
	return p, nil
}

// Remove drops the entry for id. Removing an unknown id is a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.payloads, id)
}

// Clear drops every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = make(map[string]Map)
}

// IDs returns the registered ids in sorted order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.payloads))
	for id := range s.payloads {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of registered payloads.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payloads)
}
