// Package protocol defines the messages exchanged between the interactive
// core and the persistence/host collaborator. The core emits Outbound
// messages through an Emitter and consumes Inbound push notifications; the
// transport and serialization of these envelopes is the collaborator's
// concern.
package protocol

import "github.com/mune-tada/corkboard/pkg/model"

// Emitter receives outbound messages from the core. Mutations are applied
// locally before the round trip completes; the emitter is fire-and-forget
// from the core's perspective.
type Emitter interface {
	Emit(msg Outbound)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(Outbound)

// Emit implements Emitter.
func (f EmitterFunc) Emit(msg Outbound) { f(msg) }

// Outbound is the sealed set of messages the core sends to the collaborator.
type Outbound interface{ outbound() }

// CardPatch carries partial card changes; nil fields are left untouched.
type CardPatch struct {
	Synopsis *string
	Label    *string
	Status   *string
	Path     *string
}

// Empty reports whether the patch changes nothing.
func (p CardPatch) Empty() bool {
	return p.Synopsis == nil && p.Label == nil && p.Status == nil && p.Path == nil
}

// LinkPatch carries partial link changes; nil fields are left untouched.
type LinkPatch struct {
	FromID     *string
	ToID       *string
	Label      *string
	FromAnchor *model.Anchor
	ToAnchor   *model.Anchor
	Color      *string
}

// Empty reports whether the patch changes nothing.
func (p LinkPatch) Empty() bool {
	return p.FromID == nil && p.ToID == nil && p.Label == nil &&
		p.FromAnchor == nil && p.ToAnchor == nil && p.Color == nil
}

// Structural mutations.

// ReorderCards replaces the canonical card order with the given id sequence.
type ReorderCards struct{ IDs []string }

// MoveCard commits a freeform position for one card.
type MoveCard struct {
	ID  string
	Pos model.Position
}

// UpdateCard applies a partial change to one card.
type UpdateCard struct {
	ID      string
	Changes CardPatch
}

// RemoveCard removes a card (and, on the collaborator side too, every link
// touching it).
type RemoveCard struct{ ID string }

// AddCard requests creation of a card for a file path.
type AddCard struct{ Card model.Card }

// AddLink creates a new link.
type AddLink struct{ Link model.Link }

// UpdateLink applies a partial change to one link.
type UpdateLink struct {
	ID      string
	Changes LinkPatch
}

// RemoveLink deletes a link.
type RemoveLink struct{ ID string }

// CommitFreeformOrder sends the linear order derived from a freeform layout.
type CommitFreeformOrder struct{ IDs []string }

// View settings.

// SetViewMode switches the persisted view mode.
type SetViewMode struct{ Mode model.ViewMode }

// SetGridColumns sets the grid column count (already clamped by the core).
type SetGridColumns struct{ Columns int }

// SetCardHeight sets the card height preset.
type SetCardHeight struct{ Height model.CardHeight }

// Board management.

// SwitchBoard activates a different board.
type SwitchBoard struct{ Name string }

// RequestNewBoard asks the collaborator to create a board.
type RequestNewBoard struct{ Name string }

// RequestRenameBoard asks the collaborator to rename a board.
type RequestRenameBoard struct{ OldName, NewName string }

// RequestDeleteBoard asks the collaborator to delete a board.
type RequestDeleteBoard struct{ Name string }

// File-related requests.

// RequestFilePicker asks the host to open its file picker.
type RequestFilePicker struct{}

// RenameFile renames the file behind a card.
type RenameFile struct {
	ID      string
	OldPath string
	NewName string
}

// RequestRelink points a card at a different file.
type RequestRelink struct {
	ID   string
	Path string
}

// RequestFileContents asks for the raw contents of the given paths.
type RequestFileContents struct{ Paths []string }

// ExportMarkdown asks the host to export the active board as Markdown.
type ExportMarkdown struct{}

// History.

// Undo pops one snapshot from the collaborator's history stack.
type Undo struct{}

// Redo reapplies the most recently undone snapshot.
type Redo struct{}

func (ReorderCards) outbound()        {}
func (MoveCard) outbound()            {}
func (UpdateCard) outbound()          {}
func (RemoveCard) outbound()          {}
func (AddCard) outbound()             {}
func (AddLink) outbound()             {}
func (UpdateLink) outbound()          {}
func (RemoveLink) outbound()          {}
func (CommitFreeformOrder) outbound() {}
func (SetViewMode) outbound()         {}
func (SetGridColumns) outbound()      {}
func (SetCardHeight) outbound()       {}
func (SwitchBoard) outbound()         {}
func (RequestNewBoard) outbound()     {}
func (RequestRenameBoard) outbound()  {}
func (RequestDeleteBoard) outbound()  {}
func (RequestFilePicker) outbound()   {}
func (RenameFile) outbound()          {}
func (RequestRelink) outbound()       {}
func (RequestFileContents) outbound() {}
func (ExportMarkdown) outbound()      {}
func (Undo) outbound()                {}
func (Redo) outbound()                {}

// Inbound is the sealed set of push notifications from the collaborator.
type Inbound interface{ inbound() }

// LoadBoard delivers a full board snapshot plus derived preview text per
// file path.
type LoadBoard struct {
	Name     string
	Board    *model.Board
	Previews map[string]string
}

// CardAdded confirms a card creation with its derived preview.
type CardAdded struct {
	Card    model.Card
	Preview string
}

// FileChanged delivers a refreshed preview after an external edit.
type FileChanged struct {
	Path    string
	Preview string
}

// FileDeleted reports that a card's file vanished.
type FileDeleted struct{ Path string }

// FileRenamed reports a completed rename for one card.
type FileRenamed struct {
	CardID  string
	OldPath string
	NewPath string
}

// RelinkUpdate is one entry of a FileRelinked batch.
type RelinkUpdate struct {
	CardID  string
	NewPath string
}

// FileRelinked reports cards pointed at new files.
type FileRelinked struct{ Updates []RelinkUpdate }

// FileContent is one entry of a FileContents batch.
type FileContent struct {
	Path    string
	Content string
}

// FileContents answers a RequestFileContents.
type FileContents struct{ Contents []FileContent }

// BoardList delivers the current board names and the active one.
type BoardList struct {
	Names  []string
	Active string
}

func (LoadBoard) inbound()    {}
func (CardAdded) inbound()    {}
func (FileChanged) inbound()  {}
func (FileDeleted) inbound()  {}
func (FileRenamed) inbound()  {}
func (FileRelinked) inbound() {}
func (FileContents) inbound() {}
func (BoardList) inbound()    {}
