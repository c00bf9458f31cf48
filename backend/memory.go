package backend

import (
	"context"
	"sync"

	"github.com/hupe1980/deeprun/core"
)

// MemoryStore is an in-process durable core.Backend implementation keeping
// all content in a flat map guarded by an RWMutex. "Durable" here means
// thread-independent: content written under one thread is visible to any
// thread routed to the same store, and is only removed by explicit delete.
// Data is copied on write / read to avoid accidental external mutation of
// internal buffers.
//
// It does not enforce retention limits, size quotas, or eviction. For
// content that must survive process restarts, prefer the badger subpackage
// or another implementation backed by a database or object store.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

var _ core.Backend = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory durable store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte)}
}

// Read returns a copy of the content bound to path or core.ErrNotFound.
func (s *MemoryStore) Read(_ context.Context, p string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[NormalizePath(p)]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Write stores (or overwrites) the content for path. Last write wins; the
// input slice is copied before storage.
func (s *MemoryStore) Write(_ context.Context, p string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(content))
	copy(cp, content)
	s.files[NormalizePath(p)] = cp
	return nil
}

// Delete removes the content if present or returns core.ErrNotFound.
func (s *MemoryStore) Delete(_ context.Context, p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := NormalizePath(p)
	if _, ok := s.files[key]; !ok {
		return core.ErrNotFound
	}
	delete(s.files, key)
	return nil
}

// List returns the ordered entry names directly under path, or
// core.ErrNotFound when the path does not exist as a container.
func (s *MemoryStore) List(_ context.Context, p string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.files))
	for key := range s.files {
		keys = append(keys, key)
	}
	names := ChildNames(keys, p)
	if names == nil {
		if NormalizePath(p) == "/" {
			return []string{}, nil
		}
		return nil, core.ErrNotFound
	}
	return names, nil
}
