// Package files implements the filesystem capability layer: list / read /
// write / edit over the composite router. This is the only storage surface
// higher-level logic and delegated sub-executions call; every operation
// resolves its path through the router, never against a backend directly.
package files

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/deeprun/core"
	"github.com/hupe1980/deeprun/logging"
)

// Files is the uniform operation surface over one core.Backend (normally a
// *backend.Composite). It is stateless and safe for concurrent use; thread
// isolation comes from the backend composition, not from Files itself.
type Files struct {
	router core.Backend
	logger logging.Logger
}

var _ core.FileSystem = (*Files)(nil)

// New constructs a Files layer over the given router.
func New(router core.Backend, logger logging.Logger) *Files {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Files{router: router, logger: logger}
}

// Ls returns the ordered entry names directly under path. Fails with
// core.ErrNotFound when the path does not exist as a container.
func (f *Files) Ls(ctx context.Context, path string) ([]string, error) {
	return f.router.List(ctx, path)
}

// ReadFile returns the content at path as text, optionally narrowed to an
// inclusive 1-based line range.
func (f *Files) ReadFile(ctx context.Context, path string, rng *core.LineRange) (string, error) {
	content, err := f.router.Read(ctx, path)
	if err != nil {
		return "", err
	}
	text := string(content)
	if rng == nil {
		return text, nil
	}

	lines := strings.Split(text, "\n")
	start := rng.Start
	if start <= 0 {
		start = 1
	}
	end := rng.End
	if end <= 0 || end > len(lines) {
		end = len(lines)
	}
	if start > len(lines) {
		return "", nil
	}
	return strings.Join(lines[start-1:end], "\n"), nil
}

// WriteFile stores content at path, creating any implicit parent structure.
// Writes are last-write-wins.
func (f *Files) WriteFile(ctx context.Context, path, content string) error {
	if err := f.router.Write(ctx, path, []byte(content)); err != nil {
		return err
	}
	f.logger.Debug("files.write", "path", path, "bytes", len(content))
	return nil
}

// EditFile replaces an occurrence of oldStr with newStr in the content at
// path. occurrence selects the 1-based match to replace; zero means
// unspecified. Fails with core.ErrNotFound when oldStr does not occur, and
// with *core.AmbiguousEditError when it occurs more than once and no
// occurrence index disambiguates it.
func (f *Files) EditFile(ctx context.Context, path, oldStr, newStr string, occurrence int) error {
	if oldStr == "" {
		return fmt.Errorf("edit needs a non-empty search string")
	}

	content, err := f.router.Read(ctx, path)
	if err != nil {
		return err
	}
	text := string(content)

	count := strings.Count(text, oldStr)
	switch {
	case count == 0:
		return fmt.Errorf("%q not present in %s: %w", oldStr, path, core.ErrNotFound)
	case count > 1 && occurrence == 0:
		return &core.AmbiguousEditError{Path: path, Find: oldStr, Count: count}
	case occurrence > count:
		return fmt.Errorf("occurrence %d of %q not present in %s (%d matches): %w", occurrence, oldStr, path, count, core.ErrNotFound)
	}

	target := occurrence
	if target == 0 {
		target = 1
	}

	edited := replaceOccurrence(text, oldStr, newStr, target)
	if err := f.router.Write(ctx, path, []byte(edited)); err != nil {
		return err
	}
	f.logger.Debug("files.edit", "path", path, "occurrence", target)
	return nil
}

// replaceOccurrence substitutes only the nth (1-based) match of old in text.
func replaceOccurrence(text, old, new string, n int) string {
	offset := 0
	for i := 0; i < n; i++ {
		idx := strings.Index(text[offset:], old)
		if idx < 0 {
			return text
		}
		offset += idx
		if i < n-1 {
			offset += len(old)
		}
	}
	return text[:offset] + new + text[offset+len(old):]
}
