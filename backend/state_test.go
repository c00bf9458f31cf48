package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/deeprun/core"
)

func TestStateBackend_ThreadIsolation(t *testing.T) {
	ctx := context.Background()
	reg := NewThreadRegistry(0)
	defer reg.Close()

	a := reg.Backend("thread-a")
	b := reg.Backend("thread-b")

	if err := a.Write(ctx, "/scratch.txt", []byte("private")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := b.Read(ctx, "/scratch.txt"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("thread-b observed thread-a's content, err=%v", err)
	}
}

func TestStateBackend_ViewsShareOneSpace(t *testing.T) {
	ctx := context.Background()
	reg := NewThreadRegistry(0)
	defer reg.Close()

	first := reg.Backend("thread-a")
	if err := first.Write(ctx, "/draft.md", []byte("v1")); err != nil {
		t.Fatal(err)
	}

	// A later view of the same thread (e.g. after suspend/resume) sees the
	// same content.
	second := reg.Backend("thread-a")
	out, err := second.Read(ctx, "/draft.md")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(out) != "v1" {
		t.Fatalf("expected v1, got %q", out)
	}
}

func TestThreadRegistry_DiscardDropsContent(t *testing.T) {
	ctx := context.Background()
	reg := NewThreadRegistry(0)
	defer reg.Close()

	b := reg.Backend("thread-a")
	if err := b.Write(ctx, "/scratch.txt", []byte("gone soon")); err != nil {
		t.Fatal(err)
	}
	reg.Discard("thread-a")

	fresh := reg.Backend("thread-a")
	if _, err := fresh.Read(ctx, "/scratch.txt"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("discarded content still readable, err=%v", err)
	}
}

func TestStateBackend_DefensiveCopies(t *testing.T) {
	ctx := context.Background()
	b := NewStateBackend()

	data := []byte("hello")
	if err := b.Write(ctx, "/f", data); err != nil {
		t.Fatal(err)
	}
	data[0] = 'H'

	out, err := b.Read(ctx, "/f")
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "hello" {
		t.Fatalf("stored content reflected external mutation: %q", out)
	}
	out[0] = 'x'
	out2, _ := b.Read(ctx, "/f")
	if string(out2) != "hello" {
		t.Fatalf("expected isolation, got %q", out2)
	}
}

func TestStateBackend_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	b := NewStateBackend()

	for _, p := range []string{"/dir/a", "/dir/sub/b", "/top"} {
		if err := b.Write(ctx, p, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := b.List(ctx, "/dir")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"a", "sub/"}
	if len(entries) != len(want) {
		t.Fatalf("expected %v, got %v", want, entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, entries)
		}
	}

	if err := b.Delete(ctx, "/top"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := b.Delete(ctx, "/top"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("double delete should be not found, got %v", err)
	}
	if _, err := b.List(ctx, "/missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("listing a missing container should fail, got %v", err)
	}
}
