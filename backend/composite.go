package backend

import (
	"context"
	"strings"
	"sync"

	"github.com/hupe1980/deeprun/core"
)

// binding associates one registered path prefix with the backend serving it.
type binding struct {
	prefix  string
	backend core.Backend
}

// Composite dispatches each storage operation to exactly one backend,
// selected by longest-prefix match over the registered bindings. Paths
// matching no binding are served by the fallback backend. Selection is a
// pure function of the bindings and the path: the longest registered prefix
// that is a literal prefix of the path wins, and equal-length ties resolve
// by registration order.
type Composite struct {
	mu       sync.RWMutex
	bindings []binding
	fallback core.Backend
}

var _ core.Backend = (*Composite)(nil)

// NewComposite constructs a router with the given fallback backend.
func NewComposite(fallback core.Backend) *Composite {
	return &Composite{fallback: fallback}
}

// Register binds a path prefix to a backend. Re-registering an existing
// prefix replaces the binding atomically; there is never a window with two
// bindings for one prefix.
func (c *Composite) Register(prefix string, b core.Backend) {
	prefix = normalizeDir(prefix)

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.bindings {
		if c.bindings[i].prefix == prefix {
			c.bindings[i].backend = b
			return
		}
	}
	c.bindings = append(c.bindings, binding{prefix: prefix, backend: b})
}

// Route returns the backend serving the given path.
func (c *Composite) Route(p string) core.Backend {
	p = NormalizePath(p)

	c.mu.RLock()
	defer c.mu.RUnlock()

	selected := c.fallback
	best := -1
	for _, bind := range c.bindings {
		// The prefix itself (without its trailing slash) also routes to its
		// backend so listing the prefix root works.
		if strings.HasPrefix(p, bind.prefix) || p == strings.TrimSuffix(bind.prefix, "/") {
			// Strictly greater keeps the earliest registration on ties.
			if len(bind.prefix) > best {
				best = len(bind.prefix)
				selected = bind.backend
			}
		}
	}
	return selected
}

// Read dispatches to the backend selected for path.
func (c *Composite) Read(ctx context.Context, p string) ([]byte, error) {
	return c.Route(p).Read(ctx, p)
}

// Write dispatches to the backend selected for path.
func (c *Composite) Write(ctx context.Context, p string, content []byte) error {
	return c.Route(p).Write(ctx, p, content)
}

// Delete dispatches to the backend selected for path.
func (c *Composite) Delete(ctx context.Context, p string) error {
	return c.Route(p).Delete(ctx, p)
}

// List dispatches to the backend selected for path.
func (c *Composite) List(ctx context.Context, p string) ([]string, error) {
	return c.Route(p).List(ctx, p)
}
