package workspace

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func newTestWorkspace(t *testing.T, files map[string]string) *Workspace {
	t.Helper()
	root := t.TempDir()
	for path, content := range files {
		abs := filepath.Join(root, path)
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	w, err := New(root)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestResolveRejectsEscapes(t *testing.T) {
	w := newTestWorkspace(t, nil)
	for _, path := range []string{"../outside.md", "/etc/passwd", "a/../../b.md"} {
		if _, err := w.resolve(path); err == nil {
			t.Errorf("resolve(%q) should fail", path)
		}
	}
	if _, err := w.resolve("notes/a.md"); err != nil {
		t.Errorf("resolve(notes/a.md): %v", err)
	}
}

func TestExistsAndRename(t *testing.T) {
	w := newTestWorkspace(t, map[string]string{"notes/a.md": "hello"})
	if !w.Exists("notes/a.md") {
		t.Fatal("a.md should exist")
	}
	if err := w.Rename("notes/a.md", "notes/b.md"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if w.Exists("notes/a.md") || !w.Exists("notes/b.md") {
		t.Error("rename did not move the file")
	}
}

func TestContents(t *testing.T) {
	w := newTestWorkspace(t, map[string]string{"a.md": "line one\nline two\n"})
	got, err := w.Contents("a.md")
	if err != nil {
		t.Fatal(err)
	}
	if got != "line one\nline two\n" {
		t.Errorf("contents = %q", got)
	}
}

func TestCreate(t *testing.T) {
	w := newTestWorkspace(t, nil)
	if err := w.Create("new/idea.md"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !w.Exists("new/idea.md") {
		t.Error("created file missing")
	}
	if err := w.Create("new/idea.md"); err == nil {
		t.Error("second create should fail")
	}
}

func TestListFindsCardFilesOnly(t *testing.T) {
	w := newTestWorkspace(t, map[string]string{
		"a.md":          "a",
		"notes/b.txt":   "b",
		"notes/c.png":   "binary",
		".git/d.md":     "hidden dir",
		"deep/e.md":     "e",
		"F.MARKDOWN":    "case insensitive ext",
		"notes/zed.mkv": "not a card",
	})
	got, err := w.List()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"F.MARKDOWN", "a.md", "deep/e.md", "notes/b.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List = %v, want %v", got, want)
	}
}

func TestPreviewStripsMarkdownNoise(t *testing.T) {
	w := newTestWorkspace(t, map[string]string{
		"a.md": "# Title\n\n\n\nSome text here.\n\n---\n\n> quoted line\n",
	})
	got, err := w.Preview("a.md")
	if err != nil {
		t.Fatal(err)
	}
	want := "Title\n\nSome text here.\n\nquoted line"
	if got != want {
		t.Errorf("preview = %q, want %q", got, want)
	}
}

func TestPreviewBounded(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		sb.WriteString("this line repeats and repeats and repeats\n")
	}
	w := newTestWorkspace(t, map[string]string{"long.md": sb.String()})
	got, err := w.Preview("long.md")
	if err != nil {
		t.Fatal(err)
	}
	if len([]rune(got)) > PreviewMaxRunes {
		t.Errorf("preview length %d exceeds bound", len([]rune(got)))
	}
}

func TestPreviewsBatch(t *testing.T) {
	w := newTestWorkspace(t, map[string]string{
		"a.md": "alpha",
		"b.md": "beta",
	})
	results := w.Previews(context.Background(), []string{"a.md", "missing.md", "b.md"})
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	if results[0].Preview != "alpha" || results[2].Preview != "beta" {
		t.Errorf("previews = %+v", results)
	}
	if results[1].Err == nil {
		t.Error("missing file should fail individually")
	}

	m := w.PreviewMap(context.Background(), []string{"a.md", "missing.md", "b.md"})
	if len(m) != 2 || m["a.md"] != "alpha" {
		t.Errorf("preview map = %v", m)
	}
}
