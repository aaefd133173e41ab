// Package http exposes the core's transformation and query API over
// chi. The core stays pure; this package owns the mutable part the
// design pushes to the host: the current-version pointer and undo
// history, kept as parent links between dataset snapshots.
package http

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"tabcli/internal/dataset"
)

type storeEntry struct {
	ds        *dataset.Dataset
	parent    uuid.UUID
	hasParent bool
	created   time.Time
}

// Store is the in-memory dataset registry. Every transform adds a new
// snapshot linked to its parent, so undo is a walk up the parent chain.
type Store struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*storeEntry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[uuid.UUID]*storeEntry)}
}

// Add registers a freshly loaded dataset with no parent.
func (s *Store) Add(ds *dataset.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[ds.ID()] = &storeEntry{ds: ds, created: time.Now()}
}

// AddDerived registers a transform result linked to its parent.
func (s *Store) AddDerived(parent uuid.UUID, ds *dataset.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[ds.ID()] = &storeEntry{ds: ds, parent: parent, hasParent: true, created: time.Now()}
}

// Get returns the dataset with the given ID.
func (s *Store) Get(id uuid.UUID) (*dataset.Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	return e.ds, true
}

// Parent returns the ID a transform derived this dataset from. The
// second return is false for loaded roots.
func (s *Store) Parent(id uuid.UUID) (uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok || !e.hasParent {
		return uuid.UUID{}, false
	}
	return e.parent, true
}

// Len returns the number of stored snapshots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
