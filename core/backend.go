package core

import "context"

// Backend is the uniform storage capability set: byte content addressed by
// hierarchical path strings. Multiple implementations exist (ephemeral,
// durable, composite) but callers never depend on which one serves a path.
//
// Contract:
//   - Read returns ErrNotFound when no content is bound to the path.
//   - Write is last-write-wins; there is no internal versioning.
//   - Delete returns ErrNotFound when the path does not exist.
//   - List returns the ordered entry names directly under the path and
//     ErrNotFound when the path does not exist as a container. Entries that
//     are themselves containers carry a trailing slash.
//
// Operations are synchronous from the caller's perspective; implementations
// may perform network I/O internally and must honor ctx cancellation. No
// operation may observe or depend on another backend's content.
type Backend interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, content []byte) error
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, path string) ([]string, error)
}

// LineRange selects an inclusive 1-based line window for file reads. A zero
// or negative Start means the first line; a zero, negative or out-of-bounds
// End means the last line.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// FileSystem is the capability surface built atop the composite router.
// Higher-level logic and delegated sub-executions call only this; none of
// the operations may bypass the router's path resolution.
type FileSystem interface {
	Ls(ctx context.Context, path string) ([]string, error)
	ReadFile(ctx context.Context, path string, rng *LineRange) (string, error)
	WriteFile(ctx context.Context, path, content string) error
	EditFile(ctx context.Context, path, oldStr, newStr string, occurrence int) error
}
