package docstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/loupelabs/loupe/shared"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// buildDoc populates a document with one of every container kind so a
// round trip exercises the full snapshot encoding.
func buildDoc() *shared.Doc {
	d := shared.NewDoc()
	root := d.GetMap("loupe")
	root.Set("title", "Plan")
	root.Set("done", false)

	meta := shared.NewMap()
	root.Set("meta", meta)
	meta.Set("author", "ada")
	meta.Set("version", float64(2))

	tags := shared.NewList()
	root.Set("tags", tags)
	tags.Push("alpha")
	tags.Push("beta")

	notes := shared.NewText()
	root.Set("notes", notes)
	notes.Append("hello")
	return d
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	// Reopening the same file must not fail on the existing schema.
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	src := buildDoc()
	if err := s.Save(ctx, "board", src); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	dst := shared.NewDoc()
	if err := s.Load(ctx, "board", dst); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	want, err := shared.Snapshot(src)
	if err != nil {
		t.Fatalf("Snapshot(src) failed: %v", err)
	}
	got, err := shared.Snapshot(dst)
	if err != nil {
		t.Fatalf("Snapshot(dst) failed: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("round trip snapshot mismatch:\n got  %s\n want %s", got, want)
	}

	// Containers come back as live values, not inline JSON.
	root := dst.GetMap("loupe")
	if v, ok := root.Get("notes"); !ok {
		t.Fatal("notes missing after load")
	} else if txt, ok := v.(*shared.Text); !ok {
		t.Errorf("notes = %T, want *shared.Text", v)
	} else if txt.String() != "hello" {
		t.Errorf("notes = %q, want %q", txt.String(), "hello")
	}
}

func TestSave_Overwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	src := buildDoc()
	if err := s.Save(ctx, "board", src); err != nil {
		t.Fatalf("first Save() failed: %v", err)
	}
	src.GetMap("loupe").Set("title", "Revised")
	if err := s.Save(ctx, "board", src); err != nil {
		t.Fatalf("second Save() failed: %v", err)
	}

	// Upsert, not insert: still exactly one row.
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("document rows = %d, want 1", count)
	}

	dst := shared.NewDoc()
	if err := s.Load(ctx, "board", dst); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if v, _ := dst.GetMap("loupe").Get("title"); v != "Revised" {
		t.Errorf("title = %v, want %q", v, "Revised")
	}
}

func TestLoad_Missing(t *testing.T) {
	s := openTestStore(t)

	d := shared.NewDoc()
	err := s.Load(context.Background(), "ghost", d)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestList_Sorted(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := s.Save(ctx, name, buildDoc()); err != nil {
			t.Fatalf("Save(%q) failed: %v", name, err)
		}
	}

	names, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("List() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestList_Empty(t *testing.T) {
	s := openTestStore(t)

	names, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("List() = %v, want empty", names)
	}
}
