package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mune-tada/corkboard/pkg/geometry"
	"github.com/mune-tada/corkboard/pkg/model"
	"github.com/mune-tada/corkboard/pkg/protocol"
)

type recorder struct {
	msgs []protocol.Outbound
}

func (r *recorder) Emit(msg protocol.Outbound) {
	r.msgs = append(r.msgs, msg)
}

func lastOf[T protocol.Outbound](r *recorder) (T, bool) {
	for i := len(r.msgs) - 1; i >= 0; i-- {
		if m, ok := r.msgs[i].(T); ok {
			return m, true
		}
	}
	var zero T
	return zero, false
}

type fakeFiles struct{}

func (fakeFiles) List() ([]string, error) {
	return []string{"one.md", "three.md"}, nil
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		m.Update(keyMsg(k))
	}
}

func newTestModel(t *testing.T, b *model.Board, opts ...func(*Options)) (*Model, *recorder) {
	t.Helper()
	rec := &recorder{}
	o := Options{Emitter: rec, Files: fakeFiles{}}
	for _, fn := range opts {
		fn(&o)
	}
	m := New(o)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m.Update(InboundMsg{Msg: protocol.LoadBoard{
		Name:  "Board",
		Board: b,
		Previews: map[string]string{
			"one.md": "first card text",
			"two.md": "second card text",
		},
	}})
	return m, rec
}

func TestViewModeCycle(t *testing.T) {
	m, rec := newTestModel(t, testBoard(model.ViewGrid))

	press(m, "v")
	if got := m.Store().Board().ViewMode; got != model.ViewFreeform {
		t.Errorf("view mode = %q, want freeform", got)
	}
	if msg, ok := lastOf[protocol.SetViewMode](rec); !ok || msg.Mode != model.ViewFreeform {
		t.Errorf("SetViewMode not emitted: %+v", rec.msgs)
	}

	press(m, "v", "v")
	if got := m.Store().Board().ViewMode; got != model.ViewGrid {
		t.Errorf("cycle should return to grid, got %q", got)
	}
}

func TestGridColumnKeys(t *testing.T) {
	m, _ := newTestModel(t, testBoard(model.ViewGrid))

	press(m, "]")
	if got := m.Store().Board().GridColumns; got != 3 {
		t.Errorf("columns = %d, want 3", got)
	}
	press(m, "[", "[", "[", "[")
	if got := m.Store().Board().GridColumns; got != model.MinGridColumns {
		t.Errorf("columns should clamp at %d, got %d", model.MinGridColumns, got)
	}
}

func TestZoomShownInHeader(t *testing.T) {
	m, _ := newTestModel(t, testBoard(model.ViewGrid))

	if !strings.Contains(m.View(), "100%") {
		t.Fatal("expected default zoom in header")
	}
	press(m, "+")
	if !strings.Contains(m.View(), "110%") {
		t.Error("expected zoom-in to show 110%")
	}
	press(m, "0")
	if !strings.Contains(m.View(), "100%") {
		t.Error("expected zoom reset to show 100%")
	}
}

func TestCompactHeaderDropsReadout(t *testing.T) {
	m, _ := newTestModel(t, testBoard(model.ViewGrid), func(o *Options) { o.Compact = true })

	h := m.headerView()
	if !strings.Contains(h, "Board") {
		t.Fatalf("compact header should keep the board name, got %q", h)
	}
	if strings.Contains(h, "%") || strings.Contains(h, "grid") {
		t.Errorf("compact header should drop the mode and zoom readout, got %q", h)
	}
}

func TestCtrlWheelZoomKeepsCursorPoint(t *testing.T) {
	m, _ := newTestModel(t, testBoard(model.ViewGrid))

	// Cursor at cell (30,11); the board starts below the one-line header, so
	// the client-space anchor is (30*PxPerCol, 10*PxPerRow).
	anchor := geometry.Point{X: 30 * PxPerCol, Y: 10 * PxPerRow}
	before := m.vp.ClientToContent(anchor)

	m.Update(tea.MouseMsg{X: 30, Y: 11, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp, Ctrl: true})
	if m.vp.Zoom() != 1.1 {
		t.Fatalf("zoom = %v, want 1.1", m.vp.Zoom())
	}
	after := m.vp.ClientToContent(anchor)
	if abs(before.X-after.X) > 0.01 || abs(before.Y-after.Y) > 0.01 {
		t.Errorf("content point under cursor moved from %+v to %+v", before, after)
	}
}

func TestUndoRedoEmission(t *testing.T) {
	m, rec := newTestModel(t, testBoard(model.ViewGrid))

	press(m, "u")
	if _, ok := lastOf[protocol.Undo](rec); !ok {
		t.Error("expected Undo to be emitted")
	}
	press(m, "ctrl+r")
	if _, ok := lastOf[protocol.Redo](rec); !ok {
		t.Error("expected Redo to be emitted")
	}
}

func TestUndoGatedByHistory(t *testing.T) {
	m, rec := newTestModel(t, testBoard(model.ViewGrid), func(o *Options) {
		o.CanUndo = func() bool { return false }
	})

	press(m, "u")
	if _, ok := lastOf[protocol.Undo](rec); ok {
		t.Error("Undo should not be emitted when history is empty")
	}
	if m.flash == "" {
		t.Error("expected a status flash instead")
	}
}

func TestSelectionNavigation(t *testing.T) {
	m, _ := newTestModel(t, testBoard(model.ViewGrid))

	press(m, "right")
	if m.selected != "c1" {
		t.Fatalf("first press should select the first card, got %q", m.selected)
	}
	press(m, "right")
	if m.selected != "c2" {
		t.Errorf("selection should move right to c2, got %q", m.selected)
	}
	press(m, "left")
	if m.selected != "c1" {
		t.Errorf("selection should move back to c1, got %q", m.selected)
	}
	press(m, "esc")
	if m.selected != "" {
		t.Errorf("esc should clear selection, got %q", m.selected)
	}
}

func TestGridOrderShift(t *testing.T) {
	m, rec := newTestModel(t, testBoard(model.ViewGrid))

	press(m, "right", "m", "l")
	if msg, ok := lastOf[protocol.ReorderCards](rec); !ok || msg.IDs[0] != "c2" {
		t.Fatalf("expected ReorderCards starting with c2, got %+v", rec.msgs)
	}
	if got := m.Store().Board().Card("c1").Order; got != 1 {
		t.Errorf("c1 order = %d, want 1", got)
	}
	press(m, "esc")
	if m.moveMode {
		t.Error("esc should leave move mode")
	}
}

func TestFreeformMoveCommit(t *testing.T) {
	m, rec := newTestModel(t, testBoard(model.ViewFreeform))

	press(m, "right", "m", "right", "enter")

	msg, ok := lastOf[protocol.MoveCard](rec)
	if !ok {
		t.Fatalf("expected MoveCard, got %+v", rec.msgs)
	}
	if msg.ID != "c1" || msg.Pos.X != 10 {
		t.Errorf("MoveCard = %+v, want c1 moved to x=10", msg)
	}
	c := m.Store().Board().Card("c1")
	if c.Position == nil || c.Position.X != 10 {
		t.Errorf("store position = %+v", c.Position)
	}
	if m.moveMode {
		t.Error("commit should leave move mode")
	}
}

func TestConnectGestureCreatesLink(t *testing.T) {
	m, rec := newTestModel(t, testBoard(model.ViewFreeform))

	press(m, "right", "c")
	if !m.links.Connecting() {
		t.Fatal("connect gesture did not start")
	}
	press(m, "right", "enter")

	msg, ok := lastOf[protocol.AddLink](rec)
	if !ok {
		t.Fatalf("expected AddLink, got %+v", rec.msgs)
	}
	l := msg.Link
	if l.FromID != "c1" || l.ToID != "c2" {
		t.Errorf("link endpoints = %s -> %s", l.FromID, l.ToID)
	}
	if l.FromAnchor != model.AnchorRight || l.ToAnchor != model.AnchorLeft {
		t.Errorf("anchors = %q -> %q, want right -> left", l.FromAnchor, l.ToAnchor)
	}
	if len(m.Store().Board().Links) != 1 {
		t.Error("store should hold the new link")
	}
}

func TestConnectReleaseOverNothingCancels(t *testing.T) {
	m, rec := newTestModel(t, testBoard(model.ViewFreeform))

	press(m, "right", "c", "down", "down", "down", "down", "enter")
	if _, ok := lastOf[protocol.AddLink](rec); ok {
		t.Error("release over empty space should not create a link")
	}
	if m.links.Connecting() {
		t.Error("gesture should be finished either way")
	}
}

func TestLinkSelectionAndDelete(t *testing.T) {
	b := testBoard(model.ViewGrid)
	b.Links = []model.Link{{ID: "l1", FromID: "c1", ToID: "c2"}}
	m, rec := newTestModel(t, b)

	press(m, "tab")
	if m.links.Selected() != "l1" {
		t.Fatalf("tab should select the only link, got %q", m.links.Selected())
	}
	press(m, "D")
	if _, ok := lastOf[protocol.RemoveLink](rec); !ok {
		t.Error("expected RemoveLink")
	}
	if len(m.Store().Board().Links) != 0 {
		t.Error("link should be gone from the store")
	}
}

func TestLinkColorCycle(t *testing.T) {
	b := testBoard(model.ViewGrid)
	b.Links = []model.Link{{ID: "l1", FromID: "c1", ToID: "c2"}}
	m, rec := newTestModel(t, b)

	press(m, "tab", "o")
	if got := m.Store().Board().Link("l1").Color; got != "red" {
		t.Fatalf("color = %q, want red", got)
	}
	press(m, "o")
	if got := m.Store().Board().Link("l1").Color; got != "orange" {
		t.Errorf("color = %q, want orange", got)
	}
	msg, ok := lastOf[protocol.UpdateLink](rec)
	if !ok || msg.Changes.Color == nil || *msg.Changes.Color != "orange" {
		t.Errorf("expected UpdateLink with color orange, got %+v", msg)
	}
}

func TestStatusCycle(t *testing.T) {
	m, rec := newTestModel(t, testBoard(model.ViewGrid))

	press(m, "right", "s")
	if got := m.Store().Board().Card("c1").Status; got != "todo" {
		t.Fatalf("status = %q, want todo", got)
	}
	press(m, "s", "s", "s")
	if got := m.Store().Board().Card("c1").Status; got != "" {
		t.Errorf("cycling past the last status should clear it, got %q", got)
	}
	if _, ok := lastOf[protocol.UpdateCard](rec); !ok {
		t.Error("expected UpdateCard emissions")
	}
}

func TestSynopsisEditor(t *testing.T) {
	m, rec := newTestModel(t, testBoard(model.ViewGrid))

	press(m, "right", "e")
	if !m.editor.Active() {
		t.Fatal("editor should be open")
	}
	press(m, "h", "i", "ctrl+s")
	if m.editor.Active() {
		t.Fatal("ctrl+s should close the editor")
	}
	if got := m.Store().Board().Card("c1").Synopsis; got != "hi" {
		t.Errorf("synopsis = %q, want %q", got, "hi")
	}
	if msg, ok := lastOf[protocol.UpdateCard](rec); !ok || msg.Changes.Synopsis == nil {
		t.Error("expected UpdateCard with a synopsis change")
	}
}

func TestEditorEscDiscards(t *testing.T) {
	m, _ := newTestModel(t, testBoard(model.ViewGrid))

	press(m, "right", "t", "x", "esc")
	if got := m.Store().Board().Card("c1").Label; got != "" {
		t.Errorf("esc should discard the edit, label = %q", got)
	}
}

func TestRenameEmitsRequest(t *testing.T) {
	m, rec := newTestModel(t, testBoard(model.ViewGrid))

	press(m, "right", "R")
	if !m.editor.Active() {
		t.Fatal("rename editor should be open")
	}
	// Seeded with the current name; replace it wholesale.
	m.editor.input.SetValue("fresh.md")
	press(m, "enter")

	msg, ok := lastOf[protocol.RenameFile](rec)
	if !ok {
		t.Fatalf("expected RenameFile, got %+v", rec.msgs)
	}
	if msg.ID != "c1" || msg.OldPath != "one.md" || msg.NewName != "fresh.md" {
		t.Errorf("RenameFile = %+v", msg)
	}
}

func TestBoardSwitcher(t *testing.T) {
	m, rec := newTestModel(t, testBoard(model.ViewGrid))
	m.Update(InboundMsg{Msg: protocol.BoardList{Names: []string{"Board", "Other"}, Active: "Board"}})

	press(m, "b")
	if !m.boards.Active() {
		t.Fatal("switcher should be open")
	}
	press(m, "down", "enter")
	if msg, ok := lastOf[protocol.SwitchBoard](rec); !ok || msg.Name != "Other" {
		t.Errorf("expected SwitchBoard{Other}, got %+v", rec.msgs)
	}
	if m.boards.Active() {
		t.Error("switcher should close after switching")
	}
}

func TestPickerAddsCard(t *testing.T) {
	m, rec := newTestModel(t, testBoard(model.ViewGrid))

	press(m, "a")
	if !m.picker.Active() {
		t.Fatal("picker should be open")
	}
	if _, ok := lastOf[protocol.RequestFilePicker](rec); !ok {
		t.Error("expected RequestFilePicker notification")
	}
	press(m, "down", "enter")
	if msg, ok := lastOf[protocol.AddCard](rec); !ok || msg.Card.Path != "three.md" {
		t.Fatalf("expected AddCard for three.md, got %+v", rec.msgs)
	}
	if m.Store().Board().CardByPath("three.md") == nil {
		t.Error("card should be on the board")
	}
}

func TestPreviewFlow(t *testing.T) {
	m, rec := newTestModel(t, testBoard(model.ViewGrid))

	press(m, "right", "enter")
	msg, ok := lastOf[protocol.RequestFileContents](rec)
	if !ok || len(msg.Paths) != 1 || msg.Paths[0] != "one.md" {
		t.Fatalf("expected RequestFileContents for one.md, got %+v", rec.msgs)
	}

	m.Update(InboundMsg{Msg: protocol.FileContents{Contents: []protocol.FileContent{
		{Path: "one.md", Content: "# One\n\nBody text."},
	}}})
	if !m.preview.Active() {
		t.Fatal("preview should open on FileContents")
	}
	press(m, "esc")
	if m.preview.Active() {
		t.Error("esc should close the preview")
	}
}

func TestInsightsToggle(t *testing.T) {
	b := testBoard(model.ViewGrid)
	b.Links = []model.Link{{ID: "l1", FromID: "c1", ToID: "c2"}}
	m, _ := newTestModel(t, b)

	press(m, "i")
	if !m.insights.Active() {
		t.Fatal("insights should open")
	}
	if !strings.Contains(m.insights.View(), "2 cards") {
		t.Errorf("insights view = %q", m.insights.View())
	}
	press(m, "esc")
	if m.insights.Active() {
		t.Error("esc should close insights")
	}
}

func TestDeleteCardClearsSelection(t *testing.T) {
	m, rec := newTestModel(t, testBoard(model.ViewGrid))

	press(m, "right", "x")
	if _, ok := lastOf[protocol.RemoveCard](rec); !ok {
		t.Fatal("expected RemoveCard")
	}
	if m.selected != "" {
		t.Error("selection should clear after delete")
	}
	if m.Store().Board().Card("c1") != nil {
		t.Error("card should be gone")
	}
}

func TestLoadBoardResetsStaleSelection(t *testing.T) {
	m, _ := newTestModel(t, testBoard(model.ViewGrid))
	press(m, "right")

	other := model.NewBoard()
	other.Cards = []model.Card{{ID: "z1", Path: "zed.md", Order: 0}}
	m.Update(InboundMsg{Msg: protocol.LoadBoard{Name: "Other", Board: other}})

	if m.selected != "" {
		t.Errorf("selection should reset on board switch, got %q", m.selected)
	}
}

func TestLinkLayerToggleBlocksConnect(t *testing.T) {
	m, rec := newTestModel(t, testBoard(model.ViewFreeform))

	press(m, "L", "right", "c")
	if m.links.Connecting() {
		t.Error("connect must be refused while the layer is hidden")
	}
	press(m, "enter")
	if _, ok := lastOf[protocol.AddLink](rec); ok {
		t.Error("no link should be created")
	}
}
