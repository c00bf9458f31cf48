package files

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/deeprun/backend"
	"github.com/hupe1980/deeprun/core"
)

var _ core.FileSystem = (*Files)(nil)

func newTestFiles() *Files {
	return New(backend.NewStateBackend(), nil)
}

func TestFiles_ReadLineRange(t *testing.T) {
	ctx := context.Background()
	fs := newTestFiles()

	if err := fs.WriteFile(ctx, "/doc.txt", "one\ntwo\nthree\nfour"); err != nil {
		t.Fatal(err)
	}

	out, err := fs.ReadFile(ctx, "/doc.txt", &core.LineRange{Start: 2, End: 3})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if out != "two\nthree" {
		t.Fatalf("unexpected range content %q", out)
	}

	// Open-ended and over-long ranges clamp to the file.
	out, err = fs.ReadFile(ctx, "/doc.txt", &core.LineRange{Start: 3, End: 99})
	if err != nil {
		t.Fatal(err)
	}
	if out != "three\nfour" {
		t.Fatalf("unexpected clamped content %q", out)
	}

	// A range past the end yields empty content, not an error.
	out, err = fs.ReadFile(ctx, "/doc.txt", &core.LineRange{Start: 10, End: 20})
	if err != nil {
		t.Fatal(err)
	}
	if out != "" {
		t.Fatalf("expected empty content, got %q", out)
	}
}

func TestFiles_ReadMissing(t *testing.T) {
	fs := newTestFiles()
	if _, err := fs.ReadFile(context.Background(), "/missing", nil); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFiles_EditSingleMatch(t *testing.T) {
	ctx := context.Background()
	fs := newTestFiles()

	if err := fs.WriteFile(ctx, "/f", "hello world"); err != nil {
		t.Fatal(err)
	}
	if err := fs.EditFile(ctx, "/f", "world", "there", 0); err != nil {
		t.Fatalf("edit: %v", err)
	}
	out, _ := fs.ReadFile(ctx, "/f", nil)
	if out != "hello there" {
		t.Fatalf("unexpected content %q", out)
	}
}

func TestFiles_EditAmbiguousRequiresOccurrence(t *testing.T) {
	ctx := context.Background()
	fs := newTestFiles()

	if err := fs.WriteFile(ctx, "/f", "x x x"); err != nil {
		t.Fatal(err)
	}

	err := fs.EditFile(ctx, "/f", "x", "y", 0)
	var ambiguous *core.AmbiguousEditError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected AmbiguousEditError, got %v", err)
	}
	if ambiguous.Count != 3 {
		t.Fatalf("expected 3 matches, got %d", ambiguous.Count)
	}

	// The file is untouched after the failed edit.
	out, _ := fs.ReadFile(ctx, "/f", nil)
	if out != "x x x" {
		t.Fatalf("failed edit mutated content: %q", out)
	}

	// Disambiguated edit replaces exactly the selected match.
	if err := fs.EditFile(ctx, "/f", "x", "y", 2); err != nil {
		t.Fatalf("edit with occurrence: %v", err)
	}
	out, _ = fs.ReadFile(ctx, "/f", nil)
	if out != "x y x" {
		t.Fatalf("unexpected content %q", out)
	}
}

func TestFiles_EditOccurrenceOutOfRange(t *testing.T) {
	ctx := context.Background()
	fs := newTestFiles()

	if err := fs.WriteFile(ctx, "/f", "a b a"); err != nil {
		t.Fatal(err)
	}
	if err := fs.EditFile(ctx, "/f", "a", "c", 3); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found for occurrence 3 of 2, got %v", err)
	}
	if err := fs.EditFile(ctx, "/f", "zz", "c", 0); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found for absent search string, got %v", err)
	}
}

func TestFiles_LsOverRouter(t *testing.T) {
	ctx := context.Background()
	ephemeral := backend.NewStateBackend()
	durable := backend.NewMemoryStore()
	router := backend.NewComposite(ephemeral)
	router.Register("/memories/", durable)
	fs := New(router, nil)

	if err := fs.WriteFile(ctx, "/notes.txt", "scratch"); err != nil {
		t.Fatal(err)
	}
	if err := fs.WriteFile(ctx, "/memories/keep.md", "durable"); err != nil {
		t.Fatal(err)
	}

	entries, err := fs.Ls(ctx, "/memories")
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	if len(entries) != 1 || entries[0] != "keep.md" {
		t.Fatalf("unexpected entries %v", entries)
	}

	// The scratch file went to the ephemeral fallback, not the durable store.
	if _, err := durable.Read(ctx, "/notes.txt"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("scratch content leaked into durable store, err=%v", err)
	}
}
