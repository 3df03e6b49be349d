package history

import (
	"fmt"

	"github.com/mune-tada/corkboard/pkg/model"
)

// Rename is one file rename implied by an undo/redo transition.
type Rename struct {
	CardID  string
	OldPath string
	NewPath string
}

// DiffRenames compares the card-id→path maps of two snapshots and returns a
// rename for every card whose path changed. Cards present in only one
// snapshot need no rename.
func DiffRenames(before, after *model.Root) []Rename {
	old := before.CardPaths()
	var out []Rename
	for _, b := range after.Boards {
		for i := range b.Cards {
			c := &b.Cards[i]
			if oldPath, ok := old[c.ID]; ok && oldPath != c.Path {
				out = append(out, Rename{CardID: c.ID, OldPath: oldPath, NewPath: c.Path})
			}
		}
	}
	return out
}

// RenameFS is the slice of the file system reconciliation needs. The real
// implementation lives in pkg/workspace; tests substitute a fake.
type RenameFS interface {
	Exists(path string) bool
	Rename(oldPath, newPath string) error
}

// Reconcile applies the renames implied by a snapshot transition. A rename
// is skipped when the source no longer exists or the target already exists.
// Skips and failures are reported as recoverable warnings; history
// navigation proceeds regardless.
func Reconcile(fs RenameFS, before, after *model.Root) []string {
	var warnings []string
	for _, r := range DiffRenames(before, after) {
		if !fs.Exists(r.OldPath) {
			warnings = append(warnings, fmt.Sprintf("skip rename %s: source %s missing", r.CardID, r.OldPath))
			continue
		}
		if fs.Exists(r.NewPath) {
			warnings = append(warnings, fmt.Sprintf("skip rename %s: target %s already exists", r.CardID, r.NewPath))
			continue
		}
		if err := fs.Rename(r.OldPath, r.NewPath); err != nil {
			warnings = append(warnings, fmt.Sprintf("rename %s -> %s: %v", r.OldPath, r.NewPath, err))
		}
	}
	return warnings
}
