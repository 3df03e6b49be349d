package history

import (
	"errors"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/mune-tada/corkboard/pkg/model"
)

func rootWithCard(id, path string) *model.Root {
	r := model.NewRoot()
	b := r.ActiveBoard()
	b.Cards = append(b.Cards, model.Card{ID: id, Path: path, Order: len(b.Cards)})
	return r
}

func TestUndoRedoRoundTrip(t *testing.T) {
	s := NewStack()
	current := model.NewRoot()

	// Apply three mutations, snapshotting before each.
	for i := 0; i < 3; i++ {
		s.Push(current)
		b := current.ActiveBoard()
		b.Cards = append(b.Cards, model.Card{ID: string(rune('a' + i)), Order: i})
	}

	for i := 0; i < 3; i++ {
		prev, ok := s.Undo(current)
		if !ok {
			t.Fatalf("undo %d failed", i)
		}
		current = prev
	}
	if n := len(current.ActiveBoard().Cards); n != 0 {
		t.Fatalf("after full undo, cards = %d, want 0", n)
	}

	for i := 0; i < 3; i++ {
		next, ok := s.Redo(current)
		if !ok {
			t.Fatalf("redo %d failed", i)
		}
		current = next
	}
	if n := len(current.ActiveBoard().Cards); n != 3 {
		t.Fatalf("after full redo, cards = %d, want 3", n)
	}
}

func TestUndoRedoRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewStack()
		current := model.NewRoot()
		baseline := current.Clone()

		n := rapid.IntRange(1, 20).Draw(t, "n")
		for i := 0; i < n; i++ {
			s.Push(current)
			b := current.ActiveBoard()
			b.Cards = append(b.Cards, model.Card{
				ID:    rapid.StringMatching(`c[0-9]{3}`).Draw(t, "id"),
				Path:  rapid.StringMatching(`[a-z]{3}\.md`).Draw(t, "path"),
				Order: len(b.Cards),
			})
		}

		for i := 0; i < n; i++ {
			prev, ok := s.Undo(current)
			if !ok {
				t.Fatal("undo underflow")
			}
			current = prev
		}
		if !reflect.DeepEqual(current, baseline) {
			t.Fatal("undo x n did not restore the original state")
		}
	})
}

func TestPushClearsRedo(t *testing.T) {
	s := NewStack()
	current := model.NewRoot()
	s.Push(current)
	current.ActiveBoard().Cards = append(current.ActiveBoard().Cards, model.Card{ID: "a"})

	prev, _ := s.Undo(current)
	current = prev
	if !s.CanRedo() {
		t.Fatal("redo should be available after undo")
	}

	s.Push(current)
	if s.CanRedo() {
		t.Error("a new mutation must clear the redo stack")
	}
}

func TestDepthCapEvictsOldest(t *testing.T) {
	s := NewStack()
	current := model.NewRoot()
	for i := 0; i < MaxDepth+1; i++ {
		s.Push(current)
	}
	if s.UndoDepth() != MaxDepth {
		t.Errorf("depth = %d, want %d (101st push evicts the oldest)", s.UndoDepth(), MaxDepth)
	}
}

func TestUndoSnapshotIsolation(t *testing.T) {
	s := NewStack()
	current := rootWithCard("a", "a.md")
	s.Push(current)

	// Mutating the live state after Push must not rewrite history.
	current.ActiveBoard().Cards[0].Path = "changed.md"

	prev, _ := s.Undo(current)
	if prev.ActiveBoard().Cards[0].Path != "a.md" {
		t.Error("snapshot shared state with the live container")
	}
}

func TestUndoResolvesMissingActiveBoard(t *testing.T) {
	s := NewStack()
	snapshot := model.NewRoot()
	snapshot.Active = "Ghost" // corrupt snapshot: active board missing
	s.Push(snapshot)

	prev, ok := s.Undo(model.NewRoot())
	if !ok {
		t.Fatal("undo failed")
	}
	if _, exists := prev.Boards[prev.Active]; !exists {
		t.Errorf("active %q not re-resolved to an existing board", prev.Active)
	}
}

func TestReset(t *testing.T) {
	s := NewStack()
	current := model.NewRoot()
	s.Push(current)
	prev, _ := s.Undo(current)
	s.Push(prev)

	s.Reset()
	if s.CanUndo() || s.CanRedo() {
		t.Error("Reset must drop both stacks")
	}
}

func TestDiffRenames(t *testing.T) {
	before := rootWithCard("a", "old.md")
	after := rootWithCard("a", "new.md")
	// Card present only after: no rename.
	after.ActiveBoard().Cards = append(after.ActiveBoard().Cards, model.Card{ID: "b", Path: "b.md"})

	renames := DiffRenames(before, after)
	if len(renames) != 1 {
		t.Fatalf("renames = %v, want exactly one", renames)
	}
	want := Rename{CardID: "a", OldPath: "old.md", NewPath: "new.md"}
	if renames[0] != want {
		t.Errorf("rename = %+v, want %+v", renames[0], want)
	}
}

// fakeFS implements RenameFS over a set of existing paths.
type fakeFS struct {
	files   map[string]bool
	renamed [][2]string
	fail    bool
}

func (f *fakeFS) Exists(path string) bool { return f.files[path] }

func (f *fakeFS) Rename(oldPath, newPath string) error {
	if f.fail {
		return errors.New("boom")
	}
	delete(f.files, oldPath)
	f.files[newPath] = true
	f.renamed = append(f.renamed, [2]string{oldPath, newPath})
	return nil
}

func TestReconcileAppliesRenames(t *testing.T) {
	fs := &fakeFS{files: map[string]bool{"old.md": true}}
	warnings := Reconcile(fs, rootWithCard("a", "old.md"), rootWithCard("a", "new.md"))
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	if len(fs.renamed) != 1 || fs.renamed[0] != [2]string{"old.md", "new.md"} {
		t.Errorf("renamed = %v", fs.renamed)
	}
}

func TestReconcileSkipsMissingSource(t *testing.T) {
	fs := &fakeFS{files: map[string]bool{}}
	warnings := Reconcile(fs, rootWithCard("a", "old.md"), rootWithCard("a", "new.md"))
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want one skip warning", warnings)
	}
	if len(fs.renamed) != 0 {
		t.Error("rename should have been skipped")
	}
}

func TestReconcileSkipsExistingTarget(t *testing.T) {
	fs := &fakeFS{files: map[string]bool{"old.md": true, "new.md": true}}
	warnings := Reconcile(fs, rootWithCard("a", "old.md"), rootWithCard("a", "new.md"))
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want one skip warning", warnings)
	}
	if len(fs.renamed) != 0 {
		t.Error("rename should have been skipped")
	}
}

func TestReconcileReportsErrorsAsWarnings(t *testing.T) {
	fs := &fakeFS{files: map[string]bool{"old.md": true}, fail: true}
	warnings := Reconcile(fs, rootWithCard("a", "old.md"), rootWithCard("a", "new.md"))
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want the failure surfaced as a warning", warnings)
	}
}
