package backend

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/hupe1980/deeprun/core"
)

// ThreadRegistry owns the ephemeral state of all execution threads. Each
// thread gets its own isolated content space, reachable only through the
// StateBackend view bound to that thread's identifier. A space survives
// suspend/resume cycles of its thread and is reclaimed when the caller
// discards the thread or, with a positive retention, when the thread has
// been idle past the retention window.
type ThreadRegistry struct {
	mu    sync.Mutex
	cache *ttlcache.Cache[string, *threadSpace]
}

// NewThreadRegistry constructs a registry. A retention of zero or below
// keeps thread state until Discard is called explicitly.
func NewThreadRegistry(retention time.Duration) *ThreadRegistry {
	ttl := ttlcache.NoTTL
	if retention > 0 {
		ttl = retention
	}
	cache := ttlcache.New[string, *threadSpace](
		ttlcache.WithTTL[string, *threadSpace](ttl),
	)
	if retention > 0 {
		go cache.Start()
	}
	return &ThreadRegistry{cache: cache}
}

// Backend returns the ephemeral core.Backend view for the given thread,
// creating its space on first use. Accessing a space refreshes its
// retention window.
func (r *ThreadRegistry) Backend(threadID string) *StateBackend {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := r.cache.Get(threadID)
	if item == nil {
		space := &threadSpace{files: make(map[string][]byte)}
		r.cache.Set(threadID, space, ttlcache.DefaultTTL)
		return &StateBackend{space: space}
	}
	return &StateBackend{space: item.Value()}
}

// Discard drops a thread's ephemeral content immediately.
func (r *ThreadRegistry) Discard(threadID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(threadID)
}

// Close stops the background reclamation loop.
func (r *ThreadRegistry) Close() {
	r.cache.Stop()
}

// threadSpace is the content map of one thread, shared by every
// StateBackend view handed out for that thread.
type threadSpace struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// StateBackend is the ephemeral core.Backend scoped to one execution
// thread. Content vanishes when the thread is discarded; no other thread
// can observe it.
type StateBackend struct {
	space *threadSpace
}

var _ core.Backend = (*StateBackend)(nil)

// NewStateBackend returns a standalone ephemeral backend not managed by a
// registry. Useful for tests and single-thread embedding.
func NewStateBackend() *StateBackend {
	return &StateBackend{space: &threadSpace{files: make(map[string][]byte)}}
}

// Read returns a copy of the content bound to path or core.ErrNotFound.
func (b *StateBackend) Read(_ context.Context, p string) ([]byte, error) {
	b.space.mu.RLock()
	defer b.space.mu.RUnlock()
	data, ok := b.space.files[NormalizePath(p)]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Write stores (or overwrites) the content for path.
func (b *StateBackend) Write(_ context.Context, p string, content []byte) error {
	b.space.mu.Lock()
	defer b.space.mu.Unlock()
	cp := make([]byte, len(content))
	copy(cp, content)
	b.space.files[NormalizePath(p)] = cp
	return nil
}

// Delete removes the content if present or returns core.ErrNotFound.
func (b *StateBackend) Delete(_ context.Context, p string) error {
	b.space.mu.Lock()
	defer b.space.mu.Unlock()
	key := NormalizePath(p)
	if _, ok := b.space.files[key]; !ok {
		return core.ErrNotFound
	}
	delete(b.space.files, key)
	return nil
}

// List returns the ordered entry names directly under path, or
// core.ErrNotFound when the path does not exist as a container.
func (b *StateBackend) List(_ context.Context, p string) ([]string, error) {
	b.space.mu.RLock()
	defer b.space.mu.RUnlock()
	keys := make([]string, 0, len(b.space.files))
	for key := range b.space.files {
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
