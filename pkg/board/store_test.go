package board

import (
	"testing"

	"github.com/mune-tada/corkboard/pkg/model"
	"github.com/mune-tada/corkboard/pkg/protocol"
)

// recorder captures emitted messages for assertions.
type recorder struct {
	msgs []protocol.Outbound
}

func (r *recorder) Emit(msg protocol.Outbound) { r.msgs = append(r.msgs, msg) }

func (r *recorder) reset() { r.msgs = nil }

func newTestStore(t *testing.T) (*Store, *recorder) {
	t.Helper()
	rec := &recorder{}
	s := NewStore(rec)
	return s, rec
}

func seedCards(s *Store, ids ...string) {
	b := s.Board()
	for i, id := range ids {
		b.Cards = append(b.Cards, model.Card{ID: id, Path: id + ".md", Order: i})
	}
}

func TestRemoveCardCascadesAndRenumbers(t *testing.T) {
	s, rec := newTestStore(t)
	seedCards(s, "A", "B", "C")
	b := s.Board()
	b.Links = []model.Link{
		{ID: "l1", FromID: "A", ToID: "B"},
		{ID: "l2", FromID: "B", ToID: "C"},
		{ID: "l3", FromID: "A", ToID: "C"},
	}
	rec.reset()

	if !s.RemoveCard("B") {
		t.Fatal("RemoveCard returned false")
	}

	if a := b.Card("A"); a == nil || a.Order != 0 {
		t.Errorf("A.order = %v, want 0", a)
	}
	if c := b.Card("C"); c == nil || c.Order != 1 {
		t.Errorf("C.order = %v, want 1", c)
	}
	if len(b.Links) != 1 || b.Links[0].ID != "l3" {
		t.Errorf("links = %v, want only l3 to survive", b.Links)
	}
	if len(rec.msgs) != 1 {
		t.Fatalf("emitted %d messages, want 1", len(rec.msgs))
	}
	if m, ok := rec.msgs[0].(protocol.RemoveCard); !ok || m.ID != "B" {
		t.Errorf("emitted %v, want RemoveCard{B}", rec.msgs[0])
	}
}

func TestUpdateCardNoOpSkipsEmission(t *testing.T) {
	s, rec := newTestStore(t)
	seedCards(s, "A")
	s.Board().Card("A").Synopsis = "same"
	rec.reset()

	syn := "same"
	if s.UpdateCard("A", protocol.CardPatch{Synopsis: &syn}) {
		t.Error("identical synopsis should be a no-op")
	}
	if len(rec.msgs) != 0 {
		t.Errorf("no-op emitted %d messages", len(rec.msgs))
	}

	syn = "different"
	if !s.UpdateCard("A", protocol.CardPatch{Synopsis: &syn}) {
		t.Error("changed synopsis should apply")
	}
	if len(rec.msgs) != 1 {
		t.Errorf("emitted %d messages, want 1", len(rec.msgs))
	}
}

func TestMoveCardNoOp(t *testing.T) {
	s, rec := newTestStore(t)
	seedCards(s, "A")
	rec.reset()

	pos := model.Position{X: 10, Y: 20}
	if !s.MoveCard("A", pos) {
		t.Fatal("first move should apply")
	}
	if s.MoveCard("A", pos) {
		t.Error("identical position should be a no-op")
	}
	if len(rec.msgs) != 1 {
		t.Errorf("emitted %d messages, want 1", len(rec.msgs))
	}
}

func TestReorder(t *testing.T) {
	s, rec := newTestStore(t)
	seedCards(s, "A", "B", "C")
	rec.reset()

	if !s.Reorder([]string{"C", "A", "B"}) {
		t.Fatal("reorder should apply")
	}
	b := s.Board()
	if b.Card("C").Order != 0 || b.Card("A").Order != 1 || b.Card("B").Order != 2 {
		t.Errorf("orders = %d/%d/%d, want C=0 A=1 B=2",
			b.Card("C").Order, b.Card("A").Order, b.Card("B").Order)
	}

	rec.reset()
	if s.Reorder([]string{"C", "A", "B"}) {
		t.Error("identical order should be a no-op")
	}
	if len(rec.msgs) != 0 {
		t.Errorf("no-op emitted %d messages", len(rec.msgs))
	}

	// Unknown ids are ignored, listed cards come first.
	if !s.Reorder([]string{"ghost", "B", "A"}) {
		t.Fatal("reorder with unknown id should still apply")
	}
	if b.Card("B").Order != 0 || b.Card("A").Order != 1 || b.Card("C").Order != 2 {
		t.Errorf("orders after partial reorder = %d/%d/%d",
			b.Card("B").Order, b.Card("A").Order, b.Card("C").Order)
	}
}

func TestAddLinkValidation(t *testing.T) {
	s, _ := newTestStore(t)
	seedCards(s, "A", "B")

	if s.AddLink(model.Link{FromID: "A", ToID: "A"}) {
		t.Error("self-link should be rejected")
	}
	if s.AddLink(model.Link{FromID: "A", ToID: "ghost"}) {
		t.Error("dangling target should be rejected")
	}
	if !s.AddLink(model.Link{FromID: "A", ToID: "B"}) {
		t.Error("valid link should be accepted")
	}
	if len(s.Board().Links) != 1 {
		t.Errorf("links = %d, want 1", len(s.Board().Links))
	}
	if s.Board().Links[0].ID == "" {
		t.Error("link should have been assigned an id")
	}
}

func TestUpdateLinkReconnect(t *testing.T) {
	s, rec := newTestStore(t)
	seedCards(s, "A", "B", "C")
	s.AddLink(model.Link{ID: "l1", FromID: "A", ToID: "B"})
	rec.reset()

	to := "C"
	anchor := model.AnchorTop
	if !s.UpdateLink("l1", protocol.LinkPatch{ToID: &to, ToAnchor: &anchor}) {
		t.Fatal("reconnect should apply")
	}
	l := s.Board().Link("l1")
	if l.ToID != "C" || l.ToAnchor != model.AnchorTop {
		t.Errorf("link = %+v, want toId=C toAnchor=top", l)
	}
	if l.FromID != "A" || l.FromAnchor != model.AnchorAuto {
		t.Errorf("fixed endpoint changed: %+v", l)
	}
}

func TestGridColumnsClampedNoOp(t *testing.T) {
	s, rec := newTestStore(t)
	s.Board().GridColumns = 1
	rec.reset()

	// Pressing "increase" 9 times reaches 10; the 10th press is a no-op.
	for i := 0; i < 9; i++ {
		if !s.SetGridColumns(s.Board().GridColumns + 1) {
			t.Fatalf("press %d should apply", i+1)
		}
	}
	if s.Board().GridColumns != 10 {
		t.Fatalf("columns = %d, want 10", s.Board().GridColumns)
	}
	if s.SetGridColumns(s.Board().GridColumns + 1) {
		t.Error("10th press should clamp to a no-op")
	}
	if len(rec.msgs) != 9 {
		t.Errorf("emitted %d messages, want 9", len(rec.msgs))
	}
}

func TestSetViewModeValidation(t *testing.T) {
	s, _ := newTestStore(t)
	if s.SetViewMode(model.ViewMode("spiral")) {
		t.Error("invalid mode should be rejected")
	}
	if !s.SetViewMode(model.ViewFreeform) {
		t.Error("valid mode change should apply")
	}
	if s.SetViewMode(model.ViewFreeform) {
		t.Error("identical mode should be a no-op")
	}
}

func TestResolvedLinksHideDangling(t *testing.T) {
	s, _ := newTestStore(t)
	seedCards(s, "A", "B")
	s.Board().Links = []model.Link{
		{ID: "ok", FromID: "A", ToID: "B"},
		{ID: "dangling", FromID: "A", ToID: "gone"},
	}

	resolved := s.ResolvedLinks()
	if len(resolved) != 1 || resolved[0].Link.ID != "ok" {
		t.Errorf("resolved = %v, want only the fully resolvable link", resolved)
	}
}

func TestApplyFileRenamed(t *testing.T) {
	s, _ := newTestStore(t)
	seedCards(s, "A")
	s.Apply(protocol.FileChanged{Path: "A.md", Preview: "hello"})

	s.Apply(protocol.FileRenamed{CardID: "A", OldPath: "A.md", NewPath: "B.md"})
	if s.Board().Card("A").Path != "B.md" {
		t.Errorf("path = %q, want B.md", s.Board().Card("A").Path)
	}
	if s.Preview("B.md") != "hello" {
		t.Error("preview should follow the rename")
	}
	if s.CardText(*s.Board().Card("A")) != "hello" {
		t.Error("card text should fall back to preview")
	}
}

func TestCardTextSynopsisOverride(t *testing.T) {
	s, _ := newTestStore(t)
	seedCards(s, "A")
	s.Apply(protocol.FileChanged{Path: "A.md", Preview: "derived"})
	c := s.Board().Card("A")
	c.Synopsis = "mine"
	if s.CardText(*c) != "mine" {
		t.Error("synopsis should override derived preview")
	}
}
