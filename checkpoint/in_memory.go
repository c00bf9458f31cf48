// Package checkpoint provides CheckpointStore implementations: a volatile
// in-process store for tests and single-process embedding, and a
// badger-backed store for state that must survive restarts. Both serialize
// checkpoints to JSON and swap them in atomically; a partially written
// checkpoint is never observable.
package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hupe1980/deeprun/core"
)

// InMemoryStore keeps serialized checkpoints in a process local map guarded
// by an RWMutex. The serialized form is swapped under the lock, so Put is
// atomic per thread; checkpoints for different threads are independent.
type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ core.CheckpointStore = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory checkpoint store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: make(map[string][]byte)}
}

// Put serializes and stores the checkpoint, overwriting any prior one for
// the thread.
func (s *InMemoryStore) Put(_ context.Context, threadID string, cp *core.Checkpoint) error {
	raw, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[threadID] = raw
	return nil
}

// Get returns the stored checkpoint or core.ErrNotFound.
func (s *InMemoryStore) Get(_ context.Context, threadID string) (*core.Checkpoint, error) {
	s.mu.RLock()
	raw, ok := s.data[threadID]
	s.mu.RUnlock()
	if !ok {
		return nil, core.ErrNotFound
	}
	var cp core.Checkpoint
	if err := json.Unmarshal(raw, &cp); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	return &cp, nil
}

// Delete removes the thread's checkpoint. Deleting an absent checkpoint is
// a no-op: clearing after a consumed resume must be idempotent.
func (s *InMemoryStore) Delete(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, threadID)
	return nil
}
