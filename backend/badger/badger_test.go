package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/deeprun/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New("", func(o *Options) { o.InMemory = true })
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Write(ctx, "/memories/note.md", []byte("keep this")); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := s.Read(ctx, "/memories/note.md")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(out) != "keep this" {
		t.Fatalf("unexpected content %q", out)
	}

	if err := s.Delete(ctx, "/memories/note.md"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Read(ctx, "/memories/note.md"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestStore_NotFoundSemantics(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Read(ctx, "/nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("read missing: %v", err)
	}
	if err := s.Delete(ctx, "/nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("delete missing: %v", err)
	}
	if _, err := s.List(ctx, "/nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("list missing: %v", err)
	}
}

func TestStore_ListChildren(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, p := range []string{"/m/a.md", "/m/b.md", "/m/deep/c.md"} {
		if err := s.Write(ctx, p, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := s.List(ctx, "/m")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"a.md", "b.md", "deep/"}
	if len(entries) != len(want) {
		t.Fatalf("expected %v, got %v", want, entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, entries)
		}
	}
}

func TestStore_OverwriteLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Write(ctx, "/k", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := s.Write(ctx, "/k", []byte("v2")); err != nil {
		t.Fatal(err)
	}
	out, err := s.Read(ctx, "/k")
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "v2" {
		t.Fatalf("expected v2, got %q", out)
	}
}
