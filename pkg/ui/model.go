package ui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mune-tada/corkboard/pkg/board"
	"github.com/mune-tada/corkboard/pkg/connector"
	"github.com/mune-tada/corkboard/pkg/drag"
	"github.com/mune-tada/corkboard/pkg/geometry"
	"github.com/mune-tada/corkboard/pkg/metrics"
	"github.com/mune-tada/corkboard/pkg/model"
	"github.com/mune-tada/corkboard/pkg/protocol"
)

const flashDuration = 2 * time.Second

// Files is the slice of workspace behavior the picker needs.
type Files interface {
	List() ([]string, error)
}

// Options configure the root model.
type Options struct {
	Emitter       protocol.Emitter
	Files         Files
	DragConfig    drag.Config
	Theme         string // "dark", "light", or "" for terminal detection
	Compact       bool   // name-only header, no mode or zoom readout
	HideLinkLayer bool
	CanUndo       func() bool
	CanRedo       func() bool
}

// Model is the root bubbletea model: one open board, its gesture engines,
// and the overlay stack (editor, boards, picker, preview, insights). Exactly
// one overlay captures input at a time; the board view handles the rest.
type Model struct {
	theme Theme
	keys  KeyMap
	help  help.Model

	store   *board.Store
	emitter protocol.Emitter
	files   Files
	canUndo func() bool
	canRedo func() bool

	vp    *geometry.Viewport
	eng   *drag.Engine
	links *connector.Layer

	editor   *editor
	boards   *boardsPanel
	picker   *filePicker
	preview  *previewPane
	insights *insightsPanel

	boardNames  []string
	activeBoard string

	selected       string // selected card id
	moveMode       bool
	movePointer    geometry.Point // emulated pointer for keyboard drags
	mouseDragging  bool
	animating      bool
	pendingPreview string // card id waiting for FileContents

	compact bool

	width  int
	height int
	flash  string
}

// New builds the root model around a persistence emitter.
func New(opts Options) *Model {
	theme := themeFor(opts.Theme, lipgloss.DefaultRenderer())
	emitter := opts.Emitter
	if emitter == nil {
		emitter = protocol.EmitterFunc(func(protocol.Outbound) {})
	}
	links := connector.NewLayer(connector.DefaultConfig())
	if opts.HideLinkLayer {
		links.SetVisible(false)
	}
	m := &Model{
		theme:    theme,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		store:    board.NewStore(emitter),
		emitter:  emitter,
		files:    opts.Files,
		canUndo:  opts.CanUndo,
		canRedo:  opts.CanRedo,
		compact:  opts.Compact,
		vp:       geometry.NewViewport(),
		eng:      drag.NewEngine(opts.DragConfig),
		links:    links,
		editor:   newEditor(theme),
		boards:   newBoardsPanel(theme),
		picker:   newFilePicker(theme),
		preview:  newPreviewPane(theme),
		insights: newInsightsPanel(theme),
	}
	return m
}

// Store exposes the board mirror for tests and host wiring.
func (m *Model) Store() *board.Store { return m.store }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) emit(msg protocol.Outbound) { m.emitter.Emit(msg) }

func (m *Model) setFlash(text string) tea.Cmd {
	m.flash = text
	return flashClear(flashDuration)
}

func (m *Model) boardHeight() int {
	h := m.height - 2
	if h < 4 {
		h = 4
	}
	return h
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.picker.SetSize(msg.Width, msg.Height)
		return m, nil

	case flashClearMsg:
		m.flash = ""
		return m, nil

	case WarnMsg:
		return m, m.setFlash(msg.Text)

	case WatchErrorMsg:
		return m, m.setFlash("watch error: " + msg.Err.Error())

	case FileWatchMsg:
		return m, m.setFlash("board file changed on disk, reloaded")

	case InboundMsg:
		return m, m.handleInbound(msg.Msg)

	case frameMsg:
		if m.eng.Step() {
			return m, frameTick()
		}
		m.animating = false
		return m, nil
	}

	// Exactly one overlay captures input.
	switch {
	case m.editor.Active():
		return m.updateEditor(msg)
	case m.boards.Active():
		return m.updateBoards(msg)
	case m.picker.Active():
		return m.updatePicker(msg)
	case m.preview.Active():
		return m, m.preview.Update(msg)
	case m.insights.Active():
		m.insights.Update(msg)
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m *Model) handleInbound(msg protocol.Inbound) tea.Cmd {
	switch inb := msg.(type) {
	case protocol.BoardList:
		m.boardNames = inb.Names
		m.activeBoard = inb.Active
		m.store.Apply(msg)
		return nil
	case protocol.LoadBoard:
		m.store.Apply(msg)
		// The selection may not survive a board switch or undo.
		if m.selected != "" && m.store.Board().Card(m.selected) == nil {
			m.selected = ""
		}
		if sel := m.links.Selected(); sel != "" && m.store.Board().Link(sel) == nil {
			m.links.ClearSelection()
		}
		m.eng.Cancel()
		m.moveMode = false
		return nil
	case protocol.FileContents:
		m.store.Apply(msg)
		if m.pendingPreview == "" {
			return nil
		}
		c := m.store.Board().Card(m.pendingPreview)
		m.pendingPreview = ""
		if c == nil || len(inb.Contents) == 0 {
			return nil
		}
		m.preview.Open(cardTitle(*c), inb.Contents[0].Content, m.width, m.height)
		return nil
	case protocol.FileRenamed:
		m.store.Apply(msg)
		return m.setFlash(fmt.Sprintf("renamed to %s", inb.NewPath))
	case protocol.FileDeleted:
		m.store.Apply(msg)
		return m.setFlash(fmt.Sprintf("file missing: %s", inb.Path))
	default:
		m.store.Apply(msg)
		return nil
	}
}

func (m *Model) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	done, commit, cmd := m.editor.Update(msg)
	if !done {
		return m, cmd
	}
	kind, target, value := m.editor.Kind(), m.editor.Target(), m.editor.Value()
	m.editor.Close()
	if kind == editLinkLabel {
		m.links.FinishEdit()
	}
	if !commit {
		return m, cmd
	}
	switch kind {
	case editSynopsis:
		m.store.UpdateCard(target, protocol.CardPatch{Synopsis: &value})
	case editLabel:
		m.store.UpdateCard(target, protocol.CardPatch{Label: &value})
	case editLinkLabel:
		m.store.UpdateLink(target, protocol.LinkPatch{Label: &value})
	case editRename:
		if c := m.store.Board().Card(target); c != nil && value != "" {
			m.emit(protocol.RenameFile{ID: target, OldPath: c.Path, NewName: value})
		}
	case editAddCard:
		if value != "" {
			m.selected = m.store.AddCard(value).ID
		}
	}
	return m, cmd
}

func (m *Model) updateBoards(msg tea.Msg) (tea.Model, tea.Cmd) {
	res, cmd := m.boards.Update(msg)
	switch res.action {
	case boardsSwitch:
		if res.name != m.activeBoard {
			m.emit(protocol.SwitchBoard{Name: res.name})
		}
	case boardsCreate:
		m.emit(protocol.RequestNewBoard{Name: res.name})
	case boardsRename:
		if res.name != "" && res.name != res.target {
			m.emit(protocol.RequestRenameBoard{OldName: res.target, NewName: res.name})
		}
	case boardsDelete:
		m.emit(protocol.RequestDeleteBoard{Name: res.target})
	}
	return m, cmd
}

func (m *Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	relink := m.picker.RelinkTarget()
	picked, cmd := m.picker.Update(msg)
	if picked == "" {
		return m, cmd
	}
	if relink != "" {
		m.emit(protocol.RequestRelink{ID: relink, Path: picked})
		return m, tea.Batch(cmd, m.setFlash("relinked to "+picked))
	}
	if existing := m.store.Board().CardByPath(picked); existing != nil {
		m.selected = existing.ID
		return m, tea.Batch(cmd, m.setFlash("already on board"))
	}
	m.selected = m.store.AddCard(picked).ID
	return m, cmd
}

func (m *Model) openPicker(relinkCard string) tea.Cmd {
	if m.files == nil {
		return m.setFlash("no workspace attached")
	}
	paths, err := m.files.List()
	if err != nil {
		return m.setFlash("list files: " + err.Error())
	}
	onBoard := map[string]bool{}
	previews := map[string]string{}
	for _, c := range m.store.Board().Cards {
		onBoard[c.Path] = true
	}
	for _, p := range paths {
		previews[p] = m.store.Preview(p)
	}
	title := "Add card"
	if relinkCard != "" {
		title = "Relink card"
	}
	m.picker.Open(title, paths, previews, onBoard, relinkCard, m.width, m.height)
	m.emit(protocol.RequestFilePicker{})
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	b := m.store.Board()

	// An in-flight gesture owns the keyboard.
	if m.links.Connecting() {
		return m.handleConnectKey(msg)
	}
	if m.moveMode {
		return m.handleMoveKey(msg)
	}

	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit

	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, k.Up), key.Matches(msg, k.Down), key.Matches(msg, k.Left), key.Matches(msg, k.Right):
		m.moveSelection(msg)
		return m, nil

	case key.Matches(msg, k.Move):
		return m, m.startMove()

	case key.Matches(msg, k.ViewMode):
		m.store.SetViewMode(nextViewMode(b.ViewMode))
		return m, nil

	case key.Matches(msg, k.ColsUp):
		m.store.SetGridColumns(b.GridColumns + 1)
		return m, nil

	case key.Matches(msg, k.ColsDown):
		m.store.SetGridColumns(b.GridColumns - 1)
		return m, nil

	case key.Matches(msg, k.CardHeight):
		m.store.SetCardHeight(nextCardHeight(b.CardHeight))
		return m, nil

	case key.Matches(msg, k.ZoomIn):
		m.vp.ZoomBy(0.1, m.screenCenter())
		return m, nil

	case key.Matches(msg, k.ZoomOut):
		m.vp.ZoomBy(-0.1, m.screenCenter())
		return m, nil

	case key.Matches(msg, k.ZoomReset):
		m.vp.SetZoom(geometry.DefaultZoom, m.screenCenter())
		return m, nil

	case key.Matches(msg, k.Links):
		m.links.SetVisible(!m.links.Visible())
		return m, nil

	case key.Matches(msg, k.Connect):
		return m, m.startConnect()

	case key.Matches(msg, k.CycleLink):
		m.cycleLinkSelection()
		return m, nil

	case key.Matches(msg, k.EditLink):
		if id := m.links.Selected(); id != "" {
			if l := b.Link(id); l != nil {
				m.links.StartEdit(id)
				m.editor.OpenLinkLabel(id, l.Label)
			}
		}
		return m, nil

	case key.Matches(msg, k.LinkColor):
		if id := m.links.Selected(); id != "" {
			if l := b.Link(id); l != nil {
				color := nextLinkColor(l.Color)
				m.store.UpdateLink(id, protocol.LinkPatch{Color: &color})
			}
		}
		return m, nil

	case key.Matches(msg, k.DeleteLink):
		if id := m.links.Selected(); id != "" {
			m.store.RemoveLink(id)
			m.links.ClearSelection()
		}
		return m, nil

	case key.Matches(msg, k.AddCard):
		return m, m.openPicker("")

	case key.Matches(msg, k.DeleteCard):
		if m.selected != "" {
			m.store.RemoveCard(m.selected)
			m.selected = ""
		}
		return m, nil

	case key.Matches(msg, k.Edit):
		if c := b.Card(m.selected); c != nil {
			m.editor.OpenSynopsis(c.ID, c.Synopsis)
		}
		return m, nil

	case key.Matches(msg, k.Status):
		if c := b.Card(m.selected); c != nil {
			status := nextStatus(b.Statuses, c.Status)
			m.store.UpdateCard(c.ID, protocol.CardPatch{Status: &status})
		}
		return m, nil

	case key.Matches(msg, k.Label):
		if c := b.Card(m.selected); c != nil {
			m.editor.OpenLabel(c.ID, c.Label)
		}
		return m, nil

	case key.Matches(msg, k.Rename):
		if c := b.Card(m.selected); c != nil {
			m.editor.OpenRename(c.ID, filepath.Base(c.Path))
		}
		return m, nil

	case key.Matches(msg, k.Preview):
		if c := b.Card(m.selected); c != nil {
			m.pendingPreview = c.ID
			m.emit(protocol.RequestFileContents{Paths: []string{c.Path}})
		}
		return m, nil

	case key.Matches(msg, k.CopyPath):
		if c := b.Card(m.selected); c != nil {
			if err := clipboard.WriteAll(c.Path); err != nil {
				return m, m.setFlash("clipboard: " + err.Error())
			}
			return m, m.setFlash("copied " + c.Path)
		}
		return m, nil

	case key.Matches(msg, k.Boards):
		m.boards.Open(m.boardNames, m.activeBoard)
		return m, nil

	case key.Matches(msg, k.Insights):
		m.insights.Open(b)
		return m, nil

	case key.Matches(msg, k.Undo):
		if m.canUndo == nil || m.canUndo() {
			m.emit(protocol.Undo{})
			return m, nil
		}
		return m, m.setFlash("nothing to undo")

	case key.Matches(msg, k.Redo):
		if m.canRedo == nil || m.canRedo() {
			m.emit(protocol.Redo{})
			return m, nil
		}
		return m, m.setFlash("nothing to redo")

	case key.Matches(msg, k.Export):
		m.emit(protocol.ExportMarkdown{})
		return m, m.setFlash("export requested")

	case msg.String() == "esc":
		m.selected = ""
		m.links.ClearSelection()
		return m, nil
	}
	return m, nil
}

// startMove begins moving the selected card. In freeform mode this is a
// keyboard-driven drag through the engine; in grid and text modes it is an
// order shift handled directly in handleMoveKey.
func (m *Model) startMove() tea.Cmd {
	if m.selected == "" {
		return m.setFlash("no card selected")
	}
	b := m.store.Board()
	if b.ViewMode != model.ViewFreeform {
		m.moveMode = true
		return nil
	}
	layout := contentLayout(b)
	box, ok := layout[m.selected]
	if !ok {
		return nil
	}
	if !m.eng.Start(m.selected, box.Center(), layout) {
		return nil
	}
	m.movePointer = box.Center()
	m.moveMode = true
	return nil
}

func (m *Model) handleMoveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := m.store.Board()
	if b.ViewMode != model.ViewFreeform {
		return m.handleOrderShift(msg)
	}

	bypass := msg.Alt
	step := PxPerCol / m.vp.Zoom()
	stepY := PxPerRow / m.vp.Zoom()
	switch msg.String() {
	case "up", "k", "alt+up", "alt+k":
		m.movePointer = m.movePointer.Add(geometry.Point{Y: -stepY})
		m.eng.Move(m.movePointer, bypass)
	case "down", "j", "alt+down", "alt+j":
		m.movePointer = m.movePointer.Add(geometry.Point{Y: stepY})
		m.eng.Move(m.movePointer, bypass)
	case "left", "h", "alt+left", "alt+h":
		m.movePointer = m.movePointer.Add(geometry.Point{X: -step})
		m.eng.Move(m.movePointer, bypass)
	case "right", "l", "alt+right", "alt+l":
		m.movePointer = m.movePointer.Add(geometry.Point{X: step})
		m.eng.Move(m.movePointer, bypass)
	case "enter", "m", " ":
		return m, m.commitMove()
	case "esc":
		m.eng.Cancel()
		m.moveMode = false
		return m, nil
	default:
		return m, nil
	}
	if !m.animating {
		m.animating = true
		return m, frameTick()
	}
	return m, nil
}

// handleOrderShift moves the selected card within the linear order.
func (m *Model) handleOrderShift(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := m.store.Board()
	cards := b.SortedCards()
	idx := -1
	for i, c := range cards {
		if c.ID == m.selected {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.moveMode = false
		return m, nil
	}

	swap := func(j int) {
		if j < 0 || j >= len(cards) {
			return
		}
		cards[idx], cards[j] = cards[j], cards[idx]
		ids := make([]string, len(cards))
		for i, c := range cards {
			ids[i] = c.ID
		}
		m.store.Reorder(ids)
	}

	cols := model.ClampGridColumns(b.GridColumns)
	if b.ViewMode == model.ViewText {
		cols = 1
	}
	switch msg.String() {
	case "left", "h", "up", "k":
		if b.ViewMode == model.ViewText || msg.String() == "left" || msg.String() == "h" {
			swap(idx - 1)
		} else {
			swap(idx - cols)
		}
	case "right", "l", "down", "j":
		if b.ViewMode == model.ViewText || msg.String() == "right" || msg.String() == "l" {
			swap(idx + 1)
		} else {
			swap(idx + cols)
		}
	case "enter", "m", " ", "esc":
		m.moveMode = false
	}
	return m, nil
}

func (m *Model) commitMove() tea.Cmd {
	id, pos, ok := m.eng.End()
	m.moveMode = false
	m.animating = false
	if !ok {
		return nil
	}
	m.store.MoveCard(id, pos)
	m.commitDerivedOrder()
	return nil
}

// commitDerivedOrder re-derives the linear order from freeform positions so
// grid and text views track the spatial arrangement.
func (m *Model) commitDerivedOrder() {
	b := m.store.Board()
	layout := contentLayout(b)
	placed := make([]drag.Placed, 0, len(layout))
	for id, r := range layout {
		placed = append(placed, drag.Placed{ID: id, Pos: geometry.Point{X: r.X, Y: r.Y}})
	}
	cfg := drag.DefaultConfig()
	if ids := drag.DeriveOrder(placed, cfg.RowTolerance); len(ids) > 0 {
		m.store.CommitFreeformOrder(ids)
	}
}

// startConnect begins a link creation gesture from the selected card.
func (m *Model) startConnect() tea.Cmd {
	if !m.links.Visible() {
		return m.setFlash("link layer hidden")
	}
	if m.selected == "" {
		return m.setFlash("no card selected")
	}
	layout := contentLayout(m.store.Board())
	box, ok := layout[m.selected]
	if !ok {
		return nil
	}
	h := connector.Handle{
		CardID: m.selected,
		Anchor: model.AnchorRight,
		Pos:    box.AnchorPoint(model.AnchorRight),
	}
	if m.links.BeginConnect(h) {
		m.links.PointerMove(h.Pos, connector.Handles(layout))
	}
	return nil
}

func (m *Model) handleConnectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	g := m.links.Gesture()
	if g == nil {
		return m, nil
	}
	layout := contentLayout(m.store.Board())
	handles := connector.Handles(layout)
	step := PxPerCol * 2 / m.vp.Zoom()
	stepY := PxPerRow / m.vp.Zoom()
	p := g.Pointer()

	switch msg.String() {
	case "up", "k":
		m.links.PointerMove(p.Add(geometry.Point{Y: -stepY}), handles)
	case "down", "j":
		m.links.PointerMove(p.Add(geometry.Point{Y: stepY}), handles)
	case "left", "h":
		m.links.PointerMove(p.Add(geometry.Point{X: -step}), handles)
	case "right", "l":
		m.links.PointerMove(p.Add(geometry.Point{X: step}), handles)
	case "enter", "c":
		return m, m.releaseConnect()
	case "esc":
		m.links.Cancel()
	}
	return m, nil
}

func (m *Model) releaseConnect() tea.Cmd {
	created, reconnect, ok := m.links.Release()
	if !ok {
		return nil
	}
	if created.ToCard != "" {
		l := model.Link{
			FromID:     created.FromCard,
			ToID:       created.ToCard,
			FromAnchor: created.FromAnchor,
			ToAnchor:   created.ToAnchor,
		}
		if m.store.AddLink(l) {
			return m.setFlash("linked")
		}
		return nil
	}
	patch := protocol.LinkPatch{}
	anchor := reconnect.Anchor
	if reconnect.End == connector.EndFrom {
		patch.FromID = &reconnect.Card
		patch.FromAnchor = &anchor
	} else {
		patch.ToID = &reconnect.Card
		patch.ToAnchor = &anchor
	}
	m.store.UpdateLink(reconnect.LinkID, patch)
	return m.setFlash("reconnected")
}

func (m *Model) cycleLinkSelection() {
	links := m.store.Board().Links
	if len(links) == 0 || !m.links.Visible() {
		return
	}
	cur := m.links.Selected()
	next := links[0].ID
	for i, l := range links {
		if l.ID == cur {
			next = links[(i+1)%len(links)].ID
			break
		}
	}
	m.links.Select(next)
}

// moveSelection moves the card selection spatially: the nearest card whose
// center lies in the pressed direction wins.
func (m *Model) moveSelection(msg tea.KeyMsg) {
	b := m.store.Board()
	cards := b.SortedCards()
	if len(cards) == 0 {
		return
	}
	if m.selected == "" {
		m.selected = cards[0].ID
		return
	}
	layout := contentLayout(b)
	cur, ok := layout[m.selected]
	if !ok {
		m.selected = cards[0].ID
		return
	}
	k := m.keys
	var dx, dy float64
	switch {
	case key.Matches(msg, k.Up):
		dy = -1
	case key.Matches(msg, k.Down):
		dy = 1
	case key.Matches(msg, k.Left):
		dx = -1
	case key.Matches(msg, k.Right):
		dx = 1
	}

	origin := cur.Center()
	bestID := ""
	bestDist := 0.0
	for id, r := range layout {
		if id == m.selected {
			continue
		}
		d := r.Center().Sub(origin)
		// Must be on the pressed side, dominantly.
		if dx != 0 && (d.X*dx <= 0 || abs(d.Y) > abs(d.X)) {
			continue
		}
		if dy != 0 && (d.Y*dy <= 0 || abs(d.X) > abs(d.Y)) {
			continue
		}
		dist := origin.Dist(r.Center())
		if bestID == "" || dist < bestDist {
			bestID = id
			bestDist = dist
		}
	}
	if bestID != "" {
		m.selected = bestID
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	p := cellToContent(msg.X, msg.Y-1, m.vp) // row 0 is the header line
	b := m.store.Board()
	layout := contentLayout(b)

	// Zoom anchors use the same header-row offset as click mapping so the
	// content point under the cursor stays put.
	anchor := geometry.Point{X: float64(msg.X) * PxPerCol, Y: float64(msg.Y-1) * PxPerRow}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if msg.Ctrl {
			m.vp.ZoomBy(0.1, anchor)
		} else {
			m.vp.ScrollY -= PxPerRow * 2
		}
		return m, nil
	case tea.MouseButtonWheelDown:
		if msg.Ctrl {
			m.vp.ZoomBy(-0.1, anchor)
		} else {
			m.vp.ScrollY += PxPerRow * 2
		}
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		// Handles and curve endpoints come before card hit-testing so link
		// gestures win on the overlap.
		if m.links.Visible() {
			rendered := renderedLinks(m.store, layout)
			if m.links.BeginReconnect(p, rendered) {
				return m, nil
			}
			for _, h := range connector.Handles(layout) {
				if p.Dist(h.Pos) <= connector.DefaultConfig().HandleRadius/2 {
					m.links.BeginConnect(h)
					return m, nil
				}
			}
			if id := m.links.LinkAt(p, rendered, m.labelLen); id != "" {
				m.links.Select(id)
				m.selected = ""
				return m, nil
			}
		}
		if id := cardAt(p, layout, m.eng); id != "" {
			m.selected = id
			m.links.ClearSelection()
			if b.ViewMode == model.ViewFreeform {
				m.eng.Start(id, p, layout)
				m.mouseDragging = true
			}
			return m, nil
		}
		m.selected = ""
		m.links.ClearSelection()
		return m, nil

	case tea.MouseActionMotion:
		if m.links.Connecting() {
			m.links.PointerMove(p, connector.Handles(layout))
			return m, nil
		}
		if m.mouseDragging {
			m.eng.Move(p, msg.Alt)
			if !m.animating {
				m.animating = true
				return m, frameTick()
			}
		}
		return m, nil

	case tea.MouseActionRelease:
		if m.links.Connecting() {
			return m, m.releaseConnect()
		}
		if m.mouseDragging {
			m.mouseDragging = false
			return m, m.commitMove()
		}
	}
	return m, nil
}

func (m *Model) labelLen(linkID string) int {
	if l := m.store.Board().Link(linkID); l != nil {
		return len(l.Label)
	}
	return 0
}

// cardAt hit-tests a content point against the layout, preferring the card
// with the highest z-order when boxes overlap.
func cardAt(p geometry.Point, layout map[string]geometry.Rect, eng *drag.Engine) string {
	best := ""
	bestZ := -1
	for id, r := range layout {
		if !r.Contains(p) {
			continue
		}
		if z := eng.ZIndex(id); best == "" || z > bestZ {
			best = id
			bestZ = z
		}
	}
	return best
}

func (m *Model) screenCenter() geometry.Point {
	return geometry.Point{
		X: float64(m.width) / 2 * PxPerCol,
		Y: float64(m.boardHeight()) / 2 * PxPerRow,
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}
	defer metrics.Timer(metrics.BoardRender)()
	header := m.headerView()
	var body string
	if m.store.Board().ViewMode == model.ViewText {
		body = renderTextMode(m.renderState())
	} else {
		body = renderBoard(m.renderState())
	}
	footer := m.footerView()

	view := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)

	overlay := ""
	switch {
	case m.editor.Active():
		overlay = m.editor.View()
	case m.boards.Active():
		overlay = m.boards.View()
	case m.picker.Active():
		overlay = m.picker.View()
	case m.preview.Active():
		overlay = m.preview.View()
	case m.insights.Active():
		overlay = m.insights.View()
	}
	if overlay != "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay)
	}
	return view
}

func (m *Model) renderState() boardRenderState {
	return boardRenderState{
		store:    m.store,
		vp:       m.vp,
		eng:      m.eng,
		links:    m.links,
		selected: m.selected,
		width:    m.width,
		height:   m.boardHeight(),
		theme:    m.theme,
	}
}

func (m *Model) headerView() string {
	b := m.store.Board()
	name := m.store.Name()
	if name == "" {
		name = model.DefaultBoardName
	}
	left := m.theme.Header.Render("▦ " + name)
	if m.compact {
		return left
	}
	mode := string(b.ViewMode)
	if b.ViewMode == model.ViewGrid {
		mode = fmt.Sprintf("grid ×%d", b.GridColumns)
	}
	right := m.theme.StatusBar.Render(fmt.Sprintf("%s · %s · %d%%",
		mode, b.CardHeight, int(m.vp.Zoom()*100)))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + padRight("", gap) + right
}

func (m *Model) footerView() string {
	if m.flash != "" {
		return m.theme.StatusBar.Render(" " + truncate(m.flash, m.width-2))
	}
	if m.moveMode {
		return m.theme.StatusBar.Render(" moving: arrows position · alt bypasses snapping · enter drop · esc cancel")
	}
	if m.links.Connecting() {
		return m.theme.StatusBar.Render(" connecting: arrows aim · enter attach · esc cancel")
	}
	return m.help.View(m.keys)
}

func nextViewMode(mode model.ViewMode) model.ViewMode {
	switch mode {
	case model.ViewGrid:
		return model.ViewFreeform
	case model.ViewFreeform:
		return model.ViewText
	default:
		return model.ViewGrid
	}
}

func nextCardHeight(h model.CardHeight) model.CardHeight {
	switch h {
	case model.HeightSmall:
		return model.HeightMedium
	case model.HeightMedium:
		return model.HeightLarge
	default:
		return model.HeightSmall
	}
}

// nextStatus cycles through the board's status palette, passing through the
// empty status so a card can be cleared.
func nextStatus(statuses []string, current string) string {
	if len(statuses) == 0 {
		statuses = []string{"todo", "doing", "done"}
	}
	if current == "" {
		return statuses[0]
	}
	for i, s := range statuses {
		if s == current {
			if i == len(statuses)-1 {
				return ""
			}
			return statuses[i+1]
		}
	}
	return statuses[0]
}

// linkColors is the cycle order for the selected link's color, ending on
// the empty string so a colored link can be cleared.
var linkColors = []string{"red", "orange", "green", "blue", "purple"}

func nextLinkColor(current string) string {
	if current == "" {
		return linkColors[0]
	}
	for i, c := range linkColors {
		if c == current {
			if i == len(linkColors)-1 {
				return ""
			}
			return linkColors[i+1]
		}
	}
	return linkColors[0]
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
