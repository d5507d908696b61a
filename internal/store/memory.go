package store

import (
	"context"
	"sync"
)

// MemoryStore keeps the document in process memory. It backs tests and dev runs.
type MemoryStore struct {
	mu    sync.Mutex
	doc   []byte
	saves int
}

// NewMemoryStore creates a store seeded with doc; a nil doc means no document yet.
func NewMemoryStore(doc []byte) *MemoryStore {
	s := &MemoryStore{}
	if doc != nil {
		s.doc = append([]byte(nil), doc...)
	}
	return s
}

// Load returns a copy of the current document
func (s *MemoryStore) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable("loading memory document", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, Missing("loading memory document")
	}
	return append([]byte(nil), s.doc...), nil
}

// Save replaces the current document
func (s *MemoryStore) Save(ctx context.Context, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return Unavailable("saving memory document", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = append([]byte(nil), doc...)
	s.saves++
	return nil
}

// Saves returns how many times Save succeeded
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
