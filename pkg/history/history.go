// Package history implements the snapshot-based undo/redo stacks for the
// persisted root container, plus the reconciliation of file renames implied
// by an undo/redo transition.
package history

import (
	"github.com/mune-tada/corkboard/pkg/model"
)

// MaxDepth caps both stacks; pushing beyond it evicts the oldest snapshot.
const MaxDepth = 100

// Stack is a standard linear history: every mutation pushes the
// pre-mutation snapshot onto undo and clears redo. No branching.
type Stack struct {
	undo []*model.Root
	redo []*model.Root
	cap  int
}

// NewStack returns a stack with the default depth cap.
func NewStack() *Stack {
	return &Stack{cap: MaxDepth}
}

// NewStackWithCap returns a stack with a custom depth cap (testing).
func NewStackWithCap(depth int) *Stack {
	if depth < 1 {
		depth = 1
	}
	return &Stack{cap: depth}
}

// Push records the pre-mutation state. The snapshot is deep-cloned here so
// later mutations of the live container can't bleed into history.
func (s *Stack) Push(pre *model.Root) {
	s.undo = append(s.undo, pre.Clone())
	if len(s.undo) > s.cap {
		s.undo = s.undo[1:]
	}
	s.redo = nil
}

// Undo pops the most recent snapshot, pushes the current state onto redo,
// and returns the popped snapshot as the new current state. The snapshot's
// active board is re-resolved, guarding against boards renamed or deleted
// since it was taken.
func (s *Stack) Undo(current *model.Root) (*model.Root, bool) {
	if len(s.undo) == 0 {
		return nil, false
	}
	top := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, current.Clone())
	if len(s.redo) > s.cap {
		s.redo = s.redo[1:]
	}
	top.ActiveBoard()
	return top, true
}

// Redo is the mirror of Undo.
func (s *Stack) Redo(current *model.Root) (*model.Root, bool) {
	if len(s.redo) == 0 {
		return nil, false
	}
	top := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, current.Clone())
	if len(s.undo) > s.cap {
		s.undo = s.undo[1:]
	}
	top.ActiveBoard()
	return top, true
}

// Reset drops both stacks. External changes to the persisted state make
// past snapshots meaningless relative to the new baseline.
func (s *Stack) Reset() {
	s.undo = nil
	s.redo = nil
}

// UndoDepth returns the number of undoable snapshots.
func (s *Stack) UndoDepth() int { return len(s.undo) }

// RedoDepth returns the number of redoable snapshots.
func (s *Stack) RedoDepth() int { return len(s.redo) }

// CanUndo reports whether an undo is available.
func (s *Stack) CanUndo() bool { return len(s.undo) > 0 }

// CanRedo reports whether a redo is available.
func (s *Stack) CanRedo() bool { return len(s.redo) > 0 }
