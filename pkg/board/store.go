// Package board implements the in-memory board state store used by all
// rendering and gesture code. Mutation entry points update local state
// immediately for responsive UI and emit a corresponding message to the
// persistence collaborator; a call whose new value is identical to the
// current value is a no-op that emits nothing, so redundant writes never
// produce spurious undo entries.
package board

import (
	"fmt"

	"github.com/mune-tada/corkboard/pkg/model"
	"github.com/mune-tada/corkboard/pkg/protocol"
)

// Store mirrors the active board of the persisted root container.
type Store struct {
	name     string
	board    *model.Board
	previews map[string]string
	emitter  protocol.Emitter
	nextSeq  int
}

// NewStore returns an empty store emitting to the given collaborator.
func NewStore(emitter protocol.Emitter) *Store {
	if emitter == nil {
		emitter = protocol.EmitterFunc(func(protocol.Outbound) {})
	}
	return &Store{
		board:    model.NewBoard(),
		previews: map[string]string{},
		emitter:  emitter,
	}
}

// Board returns the live board. Callers must treat it as read-only; all
// mutation goes through the store so emission and invariants stay in step.
func (s *Store) Board() *model.Board { return s.board }

// Name returns the active board name.
func (s *Store) Name() string { return s.name }

// Preview returns the derived preview text for a file path. The user's
// synopsis, when set, overrides this at render time.
func (s *Store) Preview(path string) string { return s.previews[path] }

// CardText returns what a card should display: the synopsis when set,
// otherwise the derived preview for its file.
func (s *Store) CardText(c model.Card) string {
	if c.Synopsis != "" {
		return c.Synopsis
	}
	return s.previews[c.Path]
}

func (s *Store) emit(msg protocol.Outbound) { s.emitter.Emit(msg) }

// Load replaces the whole mirror from a collaborator snapshot. External
// pushes arrive through here; transient gesture state lives outside the
// store and survives the swap.
func (s *Store) Load(msg protocol.LoadBoard) {
	s.name = msg.Name
	if msg.Board != nil {
		s.board = msg.Board
	} else {
		s.board = model.NewBoard()
	}
	if msg.Previews != nil {
		s.previews = msg.Previews
	} else {
		s.previews = map[string]string{}
	}
}

// Apply folds an incremental inbound notification into the mirror.
func (s *Store) Apply(msg protocol.Inbound) {
	switch m := msg.(type) {
	case protocol.LoadBoard:
		s.Load(m)
	case protocol.CardAdded:
		if s.board.Card(m.Card.ID) == nil {
			s.board.Cards = append(s.board.Cards, m.Card)
			s.board.Renumber()
		}
		s.previews[m.Card.Path] = m.Preview
	case protocol.FileChanged:
		s.previews[m.Path] = m.Preview
	case protocol.FileDeleted:
		delete(s.previews, m.Path)
	case protocol.FileRenamed:
		if c := s.board.Card(m.CardID); c != nil {
			c.Path = m.NewPath
		}
		if p, ok := s.previews[m.OldPath]; ok {
			delete(s.previews, m.OldPath)
			s.previews[m.NewPath] = p
		}
	case protocol.FileRelinked:
		for _, u := range m.Updates {
			if c := s.board.Card(u.CardID); c != nil {
				c.Path = u.NewPath
			}
		}
	}
}

// NewCardID mints an opaque card id unique within this session's board.
func (s *Store) NewCardID() string {
	for {
		s.nextSeq++
		id := fmt.Sprintf("card-%04d", s.nextSeq)
		if s.board.Card(id) == nil {
			return id
		}
	}
}

// NewLinkID mints an opaque link id unique within this session's board.
func (s *Store) NewLinkID() string {
	for {
		s.nextSeq++
		id := fmt.Sprintf("link-%04d", s.nextSeq)
		if s.board.Link(id) == nil {
			return id
		}
	}
}

// AddCard appends a card for the given file path and emits the creation.
func (s *Store) AddCard(path string) model.Card {
	c := model.Card{
		ID:    s.NewCardID(),
		Path:  path,
		Order: len(s.board.Cards),
	}
	s.board.Cards = append(s.board.Cards, c)
	s.board.Renumber()
	s.emit(protocol.AddCard{Card: c})
	return c
}

// RemoveCard deletes a card, purges every link referencing it on either
// side, and renumbers the survivors to keep orders dense.
func (s *Store) RemoveCard(id string) bool {
	idx := -1
	for i := range s.board.Cards {
		if s.board.Cards[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	s.board.Cards = append(s.board.Cards[:idx], s.board.Cards[idx+1:]...)

	kept := s.board.Links[:0]
	for _, l := range s.board.Links {
		if !l.Touches(id) {
			kept = append(kept, l)
		}
	}
	s.board.Links = kept

	s.board.Renumber()
	s.emit(protocol.RemoveCard{ID: id})
	return true
}

// UpdateCard applies a partial change, dropping fields that already hold
// the requested value. Emits nothing when the whole patch is redundant.
func (s *Store) UpdateCard(id string, patch protocol.CardPatch) bool {
	c := s.board.Card(id)
	if c == nil {
		return false
	}
	if patch.Synopsis != nil && *patch.Synopsis == c.Synopsis {
		patch.Synopsis = nil
	}
	if patch.Label != nil && *patch.Label == c.Label {
		patch.Label = nil
	}
	if patch.Status != nil && *patch.Status == c.Status {
		patch.Status = nil
	}
	if patch.Path != nil && *patch.Path == c.Path {
		patch.Path = nil
	}
	if patch.Empty() {
		return false
	}
	if patch.Synopsis != nil {
		c.Synopsis = *patch.Synopsis
	}
	if patch.Label != nil {
		c.Label = *patch.Label
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	if patch.Path != nil {
		c.Path = *patch.Path
	}
	s.emit(protocol.UpdateCard{ID: id, Changes: patch})
	return true
}

// MoveCard commits a freeform position. Re-committing the identical
// position is a no-op.
func (s *Store) MoveCard(id string, pos model.Position) bool {
	c := s.board.Card(id)
	if c == nil {
		return false
	}
	if c.Position != nil && *c.Position == pos {
		return false
	}
	p := pos
	c.Position = &p
	s.emit(protocol.MoveCard{ID: id, Pos: pos})
	return true
}

// Reorder replaces the canonical order with the given id sequence. Ids not
// on the board are ignored; cards absent from the sequence keep their
// relative order after the listed ones. A sequence that reproduces the
// current order is a no-op.
func (s *Store) Reorder(ids []string) bool {
	if !s.applyOrder(ids) {
		return false
	}
	s.emit(protocol.ReorderCards{IDs: ids})
	return true
}

// CommitFreeformOrder sends a derived linear order without disturbing
// freeform positions.
func (s *Store) CommitFreeformOrder(ids []string) bool {
	if !s.applyOrder(ids) {
		return false
	}
	s.emit(protocol.CommitFreeformOrder{IDs: ids})
	return true
}

func (s *Store) applyOrder(ids []string) bool {
	rank := make(map[string]int, len(ids))
	n := 0
	for _, id := range ids {
		if s.board.Card(id) != nil {
			rank[id] = n
			n++
		}
	}
	changed := false
	for i := range s.board.Cards {
		c := &s.board.Cards[i]
		if want, ok := rank[c.ID]; ok && c.Order != want {
			changed = true
		}
	}
	if !changed {
		return false
	}
	for i := range s.board.Cards {
		c := &s.board.Cards[i]
		if want, ok := rank[c.ID]; ok {
			c.Order = want
		} else {
			c.Order = len(s.board.Cards) + c.Order
		}
	}
	s.board.Renumber()
	return true
}

// AddLink creates a link between two existing cards. Self-links are
// rejected.
func (s *Store) AddLink(l model.Link) bool {
	if l.FromID == l.ToID {
		return false
	}
	if s.board.Card(l.FromID) == nil || s.board.Card(l.ToID) == nil {
		return false
	}
	if l.ID == "" {
		l.ID = s.NewLinkID()
	}
	if s.board.Link(l.ID) != nil {
		return false
	}
	s.board.Links = append(s.board.Links, l)
	s.emit(protocol.AddLink{Link: l})
	return true
}

// UpdateLink applies a partial change, dropping redundant fields. Emits
// nothing when the whole patch is redundant.
func (s *Store) UpdateLink(id string, patch protocol.LinkPatch) bool {
	l := s.board.Link(id)
	if l == nil {
		return false
	}
	if patch.FromID != nil && *patch.FromID == l.FromID {
		patch.FromID = nil
	}
	if patch.ToID != nil && *patch.ToID == l.ToID {
		patch.ToID = nil
	}
	if patch.Label != nil && *patch.Label == l.Label {
		patch.Label = nil
	}
	if patch.FromAnchor != nil && *patch.FromAnchor == l.FromAnchor {
		patch.FromAnchor = nil
	}
	if patch.ToAnchor != nil && *patch.ToAnchor == l.ToAnchor {
		patch.ToAnchor = nil
	}
	if patch.Color != nil && *patch.Color == l.Color {
		patch.Color = nil
	}
	if patch.Empty() {
		return false
	}
	if patch.FromID != nil {
		l.FromID = *patch.FromID
	}
	if patch.ToID != nil {
		l.ToID = *patch.ToID
	}
	if patch.Label != nil {
		l.Label = *patch.Label
	}
	if patch.FromAnchor != nil {
		l.FromAnchor = *patch.FromAnchor
	}
	if patch.ToAnchor != nil {
		l.ToAnchor = *patch.ToAnchor
	}
	if patch.Color != nil {
		l.Color = *patch.Color
	}
	s.emit(protocol.UpdateLink{ID: id, Changes: patch})
	return true
}

// RemoveLink deletes a link by id.
func (s *Store) RemoveLink(id string) bool {
	for i := range s.board.Links {
		if s.board.Links[i].ID == id {
			s.board.Links = append(s.board.Links[:i], s.board.Links[i+1:]...)
			s.emit(protocol.RemoveLink{ID: id})
			return true
		}
	}
	return false
}

// SetViewMode switches the view mode. Invalid and identical values are
// no-ops.
func (s *Store) SetViewMode(mode model.ViewMode) bool {
	if !mode.Valid() || mode == s.board.ViewMode {
		return false
	}
	s.board.ViewMode = mode
	s.emit(protocol.SetViewMode{Mode: mode})
	return true
}

// SetGridColumns sets the column count, clamped to the allowed range.
// Clamping to the current value is a silent no-op, never an error.
func (s *Store) SetGridColumns(n int) bool {
	n = model.ClampGridColumns(n)
	if n == s.board.GridColumns {
		return false
	}
	s.board.GridColumns = n
	s.emit(protocol.SetGridColumns{Columns: n})
	return true
}

// SetCardHeight sets the card height preset. Identical values are no-ops.
func (s *Store) SetCardHeight(h model.CardHeight) bool {
	if h == s.board.CardHeight {
		return false
	}
	switch h {
	case model.HeightSmall, model.HeightMedium, model.HeightLarge:
	default:
		return false
	}
	s.board.CardHeight = h
	s.emit(protocol.SetCardHeight{Height: h})
	return true
}

// ResolvedLink pairs a link with both endpoint cards. Links with a missing
// endpoint are tolerated transiently but excluded here, which is what makes
// them render as invisible.
type ResolvedLink struct {
	Link     model.Link
	From, To model.Card
}

// ResolvedLinks returns every link whose endpoints both resolve.
func (s *Store) ResolvedLinks() []ResolvedLink {
	out := make([]ResolvedLink, 0, len(s.board.Links))
	for _, l := range s.board.Links {
		from := s.board.Card(l.FromID)
		to := s.board.Card(l.ToID)
		if from == nil || to == nil {
			continue
		}
		out = append(out, ResolvedLink{Link: l, From: *from, To: *to})
	}
	return out
}
