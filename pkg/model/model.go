// Package model defines the persisted data model for corkboard: cards,
// links, boards, and the multi-board root container. Everything here is
// pure data plus a few invariant-preserving helpers; all I/O and mutation
// policy lives in pkg/board and pkg/persist.
package model

import (
	"fmt"
	"sort"
)

// Anchor names a fixed attachment edge-midpoint on a card's box.
// The empty string means "auto": the nearest-edge pair is computed from the
// relative placement of the two endpoint cards.
type Anchor string

const (
	AnchorAuto   Anchor = ""
	AnchorTop    Anchor = "top"
	AnchorRight  Anchor = "right"
	AnchorBottom Anchor = "bottom"
	AnchorLeft   Anchor = "left"
)

// Valid reports whether a is one of the four edges or auto.
func (a Anchor) Valid() bool {
	switch a {
	case AnchorAuto, AnchorTop, AnchorRight, AnchorBottom, AnchorLeft:
		return true
	}
	return false
}

// ViewMode selects how a board arranges its cards.
type ViewMode string

const (
	ViewGrid     ViewMode = "grid"
	ViewFreeform ViewMode = "freeform"
	ViewText     ViewMode = "text"
)

// Valid reports whether m is a known view mode.
func (m ViewMode) Valid() bool {
	return m == ViewGrid || m == ViewFreeform || m == ViewText
}

// CardHeight is a preset controlling how much of a card's content is shown.
type CardHeight string

const (
	HeightSmall  CardHeight = "small"
	HeightMedium CardHeight = "medium"
	HeightLarge  CardHeight = "large"
)

// HeightPreset is the concrete triple a CardHeight maps to.
type HeightPreset struct {
	MinHeight         int
	LineClamp         int
	FreeformMinHeight int
}

// Preset returns the fixed triple for a height setting. Unknown values fall
// back to medium.
func (h CardHeight) Preset() HeightPreset {
	switch h {
	case HeightSmall:
		return HeightPreset{MinHeight: 60, LineClamp: 2, FreeformMinHeight: 60}
	case HeightLarge:
		return HeightPreset{MinHeight: 180, LineClamp: 10, FreeformMinHeight: 140}
	default:
		return HeightPreset{MinHeight: 110, LineClamp: 5, FreeformMinHeight: 100}
	}
}

// Grid column bounds.
const (
	MinGridColumns     = 1
	MaxGridColumns     = 10
	DefaultGridColumns = 4
)

// ClampGridColumns clamps n into the allowed column range.
func ClampGridColumns(n int) int {
	if n < MinGridColumns {
		return MinGridColumns
	}
	if n > MaxGridColumns {
		return MaxGridColumns
	}
	return n
}

// Position is a card's absolute location in content-space units. It is only
// meaningful in freeform mode and stays nil until the card is first dragged.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Card is a visual proxy for one workspace file.
type Card struct {
	ID       string    `json:"id"`
	Path     string    `json:"path"`
	Synopsis string    `json:"synopsis,omitempty"`
	Label    string    `json:"label,omitempty"`
	Status   string    `json:"status,omitempty"`
	Order    int       `json:"order"`
	Position *Position `json:"position,omitempty"`
}

// Clone returns a deep copy of the card.
func (c Card) Clone() Card {
	out := c
	if c.Position != nil {
		p := *c.Position
		out.Position = &p
	}
	return out
}

// Link is a directed, labeled connector between two cards. A link whose
// endpoints are not both resolvable is tolerated transiently and simply not
// rendered.
type Link struct {
	ID         string `json:"id"`
	FromID     string `json:"fromId"`
	ToID       string `json:"toId"`
	Label      string `json:"label,omitempty"`
	FromAnchor Anchor `json:"fromAnchor,omitempty"`
	ToAnchor   Anchor `json:"toAnchor,omitempty"`
	Color      string `json:"color,omitempty"`
}

// Touches reports whether the link references the given card on either side.
func (l Link) Touches(cardID string) bool {
	return l.FromID == cardID || l.ToID == cardID
}

// LabelDef is one entry of a board's ordered label palette.
type LabelDef struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Board is a named, independent collection of cards and links plus its own
// view settings. Cards and links are wholly owned by their board.
type Board struct {
	ViewMode    ViewMode   `json:"viewMode"`
	GridColumns int        `json:"gridColumns"`
	CardHeight  CardHeight `json:"cardHeight"`
	Labels      []LabelDef `json:"labels,omitempty"`
	Statuses    []string   `json:"statuses,omitempty"`
	Cards       []Card     `json:"cards"`
	Links       []Link     `json:"links"`
}

// NewBoard returns a board with default view settings and no cards.
func NewBoard() *Board {
	return &Board{
		ViewMode:    ViewGrid,
		GridColumns: DefaultGridColumns,
		CardHeight:  HeightMedium,
		Statuses:    []string{"todo", "doing", "done"},
	}
}

// Card returns a pointer to the card with the given id, or nil.
func (b *Board) Card(id string) *Card {
	for i := range b.Cards {
		if b.Cards[i].ID == id {
			return &b.Cards[i]
		}
	}
	return nil
}

// Link returns a pointer to the link with the given id, or nil.
func (b *Board) Link(id string) *Link {
	for i := range b.Links {
		if b.Links[i].ID == id {
			return &b.Links[i]
		}
	}
	return nil
}

// CardByPath returns the first card referencing the given file path, or nil.
func (b *Board) CardByPath(path string) *Card {
	for i := range b.Cards {
		if b.Cards[i].Path == path {
			return &b.Cards[i]
		}
	}
	return nil
}

// SortedCards returns the cards ordered by their Order field.
func (b *Board) SortedCards() []Card {
	out := make([]Card, len(b.Cards))
	copy(out, b.Cards)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Renumber restores the dense order invariant: after any mutation that
// changes cardinality, orders are reassigned 0..N-1 sorted by prior order.
func (b *Board) Renumber() {
	idx := make([]int, len(b.Cards))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return b.Cards[idx[i]].Order < b.Cards[idx[j]].Order
	})
	for n, i := range idx {
		b.Cards[i].Order = n
	}
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	out := &Board{
		ViewMode:    b.ViewMode,
		GridColumns: b.GridColumns,
		CardHeight:  b.CardHeight,
	}
	if b.Labels != nil {
		out.Labels = append([]LabelDef(nil), b.Labels...)
	}
	if b.Statuses != nil {
		out.Statuses = append([]string(nil), b.Statuses...)
	}
	out.Cards = make([]Card, len(b.Cards))
	for i := range b.Cards {
		out.Cards[i] = b.Cards[i].Clone()
	}
	out.Links = append([]Link(nil), b.Links...)
	return out
}

// DefaultBoardName is used when a root container has to be synthesized.
const DefaultBoardName = "Board"

// Root is the multi-board container persisted as one JSON document. Exactly
// one board is active at a time; deleting the last board is forbidden.
type Root struct {
	Boards map[string]*Board `json:"boards"`
	Active string            `json:"active"`
}

// NewRoot returns a root container holding a single default board.
func NewRoot() *Root {
	return &Root{
		Boards: map[string]*Board{DefaultBoardName: NewBoard()},
		Active: DefaultBoardName,
	}
}

// ActiveBoard returns the currently active board, re-resolving the active
// name if it no longer exists: fall back to the first board by name, or
// synthesize a default board when the container is empty. The receiver is
// repaired in place so callers always observe a consistent container.
func (r *Root) ActiveBoard() *Board {
	if r.Boards == nil {
		r.Boards = map[string]*Board{}
	}
	if b, ok := r.Boards[r.Active]; ok && b != nil {
		return b
	}
	names := r.BoardNames()
	if len(names) > 0 {
		r.Active = names[0]
		return r.Boards[r.Active]
	}
	b := NewBoard()
	r.Boards[DefaultBoardName] = b
	r.Active = DefaultBoardName
	return b
}

// BoardNames returns the board names in sorted order.
func (r *Root) BoardNames() []string {
	names := make([]string, 0, len(r.Boards))
	for name := range r.Boards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the entire container. History snapshots rely
// on this being a full deep copy with no shared mutable state.
func (r *Root) Clone() *Root {
	out := &Root{
		Boards: make(map[string]*Board, len(r.Boards)),
		Active: r.Active,
	}
	for name, b := range r.Boards {
		out.Boards[name] = b.Clone()
	}
	return out
}

// CardPaths returns the card-id → file-path map across all boards. Used by
// undo/redo reconciliation to detect renames implied by a snapshot switch.
func (r *Root) CardPaths() map[string]string {
	paths := make(map[string]string)
	for _, b := range r.Boards {
		for i := range b.Cards {
			paths[b.Cards[i].ID] = b.Cards[i].Path
		}
	}
	return paths
}

// DeleteBoard removes a board by name. Deleting the last remaining board is
// forbidden.
func (r *Root) DeleteBoard(name string) error {
	if _, ok := r.Boards[name]; !ok {
		return fmt.Errorf("board %q does not exist", name)
	}
	if len(r.Boards) == 1 {
		return fmt.Errorf("cannot delete the last board")
	}
	delete(r.Boards, name)
	if r.Active == name {
		r.Active = r.BoardNames()[0]
	}
	return nil
}

// RenameBoard renames a board, keeping the active reference in step.
func (r *Root) RenameBoard(oldName, newName string) error {
	b, ok := r.Boards[oldName]
	if !ok {
		return fmt.Errorf("board %q does not exist", oldName)
	}
	if newName == "" {
		return fmt.Errorf("board name cannot be empty")
	}
	if _, exists := r.Boards[newName]; exists {
		return fmt.Errorf("board %q already exists", newName)
	}
	delete(r.Boards, oldName)
	r.Boards[newName] = b
	if r.Active == oldName {
		r.Active = newName
	}
	return nil
}
