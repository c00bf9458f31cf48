package backend

import (
	"path"
	"sort"
	"strings"
)

// NormalizePath cleans a hierarchical path key: guarantees a leading slash,
// collapses repeated separators and resolves dot segments. The empty string
// normalizes to "/".
func NormalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// normalizeDir returns the container form of a path: trailing slash, root
// stays "/".
func normalizeDir(p string) string {
	p = NormalizePath(p)
	if p == "/" {
		return p
	}
	return p + "/"
}

// ChildNames derives the ordered immediate entry names under dir from a flat
// key set. Entries that are themselves containers carry a trailing slash.
// Returns nil when dir has no entries.
func ChildNames(keys []string, dir string) []string {
	dir = normalizeDir(dir)

	seen := map[string]struct{}{}
	for _, key := range keys {
		if !strings.HasPrefix(key, dir) || key == dir {
			continue
		}
		rest := key[len(dir):]
		if idx := strings.Index(rest, "/"); idx >= 0 {
			seen[rest[:idx+1]] = struct{}{}
			continue
		}
		seen[rest] = struct{}{}
	}
	if len(seen) == 0 {
		return nil
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
