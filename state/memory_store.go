package state

import (
	"context"
	"sync"
)

// MemoryStore keeps the document in process memory. Used in tests and in
// one-shot runs where cross-process correlation is not needed.
type MemoryStore struct {
	mu  sync.RWMutex
	doc Document
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Read(ctx context.Context) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone(), nil
}

func (s *MemoryStore) Merge(ctx context.Context, patch Patch) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	patch.apply(&s.doc)
	return s.doc.Clone(), nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
