package persist

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/mune-tada/corkboard/pkg/debug"
	"github.com/mune-tada/corkboard/pkg/history"
	"github.com/mune-tada/corkboard/pkg/model"
	"github.com/mune-tada/corkboard/pkg/protocol"
	"github.com/mune-tada/corkboard/pkg/watcher"
)

// DefaultSaveDelay coalesces bursts of mutations into one disk write.
const DefaultSaveDelay = 500 * time.Millisecond

// FileSource is the slice of the workspace the manager needs: derived
// previews, raw contents, creation of missing card files, and renames.
// pkg/workspace provides the real implementation; tests substitute a fake.
// It subsumes history.RenameFS.
type FileSource interface {
	history.RenameFS
	Preview(path string) (string, error)
	PreviewMap(ctx context.Context, paths []string) map[string]string
	Contents(path string) (string, error)
	Create(path string) error
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithNotify sets the inbound delivery callback. In the TUI this forwards
// into the program's message loop.
func WithNotify(fn func(protocol.Inbound)) ManagerOption {
	return func(m *Manager) { m.notify = fn }
}

// WithWarn sets the callback for recoverable problems.
func WithWarn(fn func(string)) ManagerOption {
	return func(m *Manager) { m.warn = fn }
}

// WithSaveDelay sets the debounce window for disk writes.
func WithSaveDelay(d time.Duration) ManagerOption {
	return func(m *Manager) { m.saveDelay = d }
}

// WithFiles sets the workspace file source.
func WithFiles(fs FileSource) ManagerOption {
	return func(m *Manager) { m.files = fs }
}

// WithFilePicker sets the hook invoked for RequestFilePicker.
func WithFilePicker(fn func()) ManagerOption {
	return func(m *Manager) { m.onFilePicker = fn }
}

// WithExporter sets the hook invoked for ExportMarkdown.
func WithExporter(fn func(*model.Root)) ManagerOption {
	return func(m *Manager) { m.onExport = fn }
}

// Manager is the persistence collaborator. It receives outbound messages
// from the interactive core, applies them to the authoritative container,
// snapshots history, schedules debounced saves, and pushes inbound
// notifications back.
type Manager struct {
	mu        sync.Mutex
	path      string
	root      *model.Root
	hist      *history.Stack
	saver     *watcher.Debouncer
	saveDelay time.Duration
	files     FileSource

	notify       func(protocol.Inbound)
	warn         func(string)
	onFilePicker func()
	onExport     func(*model.Root)
}

// NewManager creates a manager over an already loaded container.
func NewManager(path string, root *model.Root, opts ...ManagerOption) *Manager {
	m := &Manager{
		path:      path,
		root:      root,
		hist:      history.NewStack(),
		saveDelay: DefaultSaveDelay,
		notify:    func(protocol.Inbound) {},
		warn:      func(string) {},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.saver = watcher.NewDebouncer(m.saveDelay)
	return m
}

// Root returns the authoritative container. Callers must treat it as
// read-only; all mutation goes through Emit.
func (m *Manager) Root() *model.Root {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.root
}

// CanUndo reports whether an undo snapshot is available.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hist.CanUndo()
}

// CanRedo reports whether a redo snapshot is available.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hist.CanRedo()
}

// Emit implements protocol.Emitter. Messages are applied synchronously;
// disk writes are debounced.
func (m *Manager) Emit(msg protocol.Outbound) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch v := msg.(type) {
	case protocol.ReorderCards:
		m.snapshot()
		m.applyOrder(v.IDs)
	case protocol.CommitFreeformOrder:
		m.snapshot()
		m.applyOrder(v.IDs)
	case protocol.MoveCard:
		m.moveCard(v)
	case protocol.UpdateCard:
		m.updateCard(v)
	case protocol.RemoveCard:
		m.removeCard(v.ID)
	case protocol.AddCard:
		m.addCard(v.Card)
	case protocol.AddLink:
		m.addLink(v.Link)
	case protocol.UpdateLink:
		m.updateLink(v)
	case protocol.RemoveLink:
		m.removeLink(v.ID)

	case protocol.SetViewMode:
		if b := m.root.ActiveBoard(); b.ViewMode != v.Mode {
			m.snapshot()
			b.ViewMode = v.Mode
		}
	case protocol.SetGridColumns:
		if b, cols := m.root.ActiveBoard(), model.ClampGridColumns(v.Columns); b.GridColumns != cols {
			m.snapshot()
			b.GridColumns = cols
		}
	case protocol.SetCardHeight:
		if b := m.root.ActiveBoard(); b.CardHeight != v.Height {
			m.snapshot()
			b.CardHeight = v.Height
		}

	case protocol.SwitchBoard:
		m.switchBoard(v.Name)
	case protocol.RequestNewBoard:
		m.newBoard(v.Name)
	case protocol.RequestRenameBoard:
		m.renameBoard(v.OldName, v.NewName)
	case protocol.RequestDeleteBoard:
		m.deleteBoard(v.Name)

	case protocol.RenameFile:
		m.renameFile(v)
	case protocol.RequestRelink:
		m.relink(v)
	case protocol.RequestFileContents:
		m.fileContents(v.Paths)
	case protocol.RequestFilePicker:
		if m.onFilePicker != nil {
			m.onFilePicker()
		}
	case protocol.ExportMarkdown:
		if m.onExport != nil {
			m.onExport(m.root.Clone())
		} else {
			m.warn("no exporter configured")
		}

	case protocol.Undo:
		m.undo()
	case protocol.Redo:
		m.redo()

	default:
		m.warn(fmt.Sprintf("unhandled outbound message %T", msg))
		return
	}

	m.scheduleSaveLocked()
}

// snapshot records the pre-mutation state.
func (m *Manager) snapshot() {
	m.hist.Push(m.root)
}

func (m *Manager) applyOrder(ids []string) {
	b := m.root.ActiveBoard()
	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}
	for i := range b.Cards {
		if r, ok := rank[b.Cards[i].ID]; ok {
			b.Cards[i].Order = r
		} else {
			b.Cards[i].Order = len(ids) + b.Cards[i].Order
		}
	}
	b.Renumber()
}

func (m *Manager) moveCard(v protocol.MoveCard) {
	b := m.root.ActiveBoard()
	c := b.Card(v.ID)
	if c == nil {
		m.warn(fmt.Sprintf("move: unknown card %s", v.ID))
		return
	}
	m.snapshot()
	pos := v.Pos
	c.Position = &pos
}

func (m *Manager) updateCard(v protocol.UpdateCard) {
	b := m.root.ActiveBoard()
	c := b.Card(v.ID)
	if c == nil {
		m.warn(fmt.Sprintf("update: unknown card %s", v.ID))
		return
	}
	if v.Changes.Empty() {
		return
	}
	m.snapshot()
	if v.Changes.Synopsis != nil {
		c.Synopsis = *v.Changes.Synopsis
	}
	if v.Changes.Label != nil {
		c.Label = *v.Changes.Label
	}
	if v.Changes.Status != nil {
		c.Status = *v.Changes.Status
	}
	if v.Changes.Path != nil {
		c.Path = *v.Changes.Path
	}
}

func (m *Manager) removeCard(id string) {
	b := m.root.ActiveBoard()
	if b.Card(id) == nil {
		return
	}
	m.snapshot()
	kept := b.Cards[:0]
	for i := range b.Cards {
		if b.Cards[i].ID != id {
			kept = append(kept, b.Cards[i])
		}
	}
	b.Cards = kept
	keptLinks := b.Links[:0]
	for i := range b.Links {
		if !b.Links[i].Touches(id) {
			keptLinks = append(keptLinks, b.Links[i])
		}
	}
	b.Links = keptLinks
	b.Renumber()
}

func (m *Manager) addCard(c model.Card) {
	b := m.root.ActiveBoard()
	if b.Card(c.ID) != nil {
		m.warn(fmt.Sprintf("add: duplicate card id %s", c.ID))
		return
	}
	m.snapshot()
	b.Cards = append(b.Cards, c)
	b.Renumber()

	preview := ""
	if m.files != nil {
		// A card may be added for a note that does not exist yet.
		if !m.files.Exists(c.Path) {
			if err := m.files.Create(c.Path); err != nil {
				m.warn(fmt.Sprintf("create %s: %v", c.Path, err))
			}
		}
		p, err := m.files.Preview(c.Path)
		if err != nil {
			m.warn(fmt.Sprintf("preview %s: %v", c.Path, err))
		} else {
			preview = p
		}
	}
	m.notify(protocol.CardAdded{Card: c, Preview: preview})
}

func (m *Manager) addLink(l model.Link) {
	b := m.root.ActiveBoard()
	if b.Link(l.ID) != nil {
		m.warn(fmt.Sprintf("add: duplicate link id %s", l.ID))
		return
	}
	m.snapshot()
	b.Links = append(b.Links, l)
}

func (m *Manager) updateLink(v protocol.UpdateLink) {
	b := m.root.ActiveBoard()
	l := b.Link(v.ID)
	if l == nil {
		m.warn(fmt.Sprintf("update: unknown link %s", v.ID))
		return
	}
	if v.Changes.Empty() {
		return
	}
	m.snapshot()
	if v.Changes.FromID != nil {
		l.FromID = *v.Changes.FromID
	}
	if v.Changes.ToID != nil {
		l.ToID = *v.Changes.ToID
	}
	if v.Changes.Label != nil {
		l.Label = *v.Changes.Label
	}
	if v.Changes.FromAnchor != nil {
		l.FromAnchor = *v.Changes.FromAnchor
	}
	if v.Changes.ToAnchor != nil {
		l.ToAnchor = *v.Changes.ToAnchor
	}
	if v.Changes.Color != nil {
		l.Color = *v.Changes.Color
	}
}

func (m *Manager) removeLink(id string) {
	b := m.root.ActiveBoard()
	if b.Link(id) == nil {
		return
	}
	m.snapshot()
	kept := b.Links[:0]
	for i := range b.Links {
		if b.Links[i].ID != id {
			kept = append(kept, b.Links[i])
		}
	}
	b.Links = kept
}

func (m *Manager) switchBoard(name string) {
	if _, ok := m.root.Boards[name]; !ok {
		m.warn(fmt.Sprintf("switch: unknown board %q", name))
		return
	}
	m.root.Active = name
	m.pushLoadLocked()
	m.pushBoardsLocked()
}

func (m *Manager) newBoard(name string) {
	if name == "" {
		m.warn("new board: empty name")
		return
	}
	if _, exists := m.root.Boards[name]; exists {
		m.warn(fmt.Sprintf("new board: %q already exists", name))
		return
	}
	m.snapshot()
	m.root.Boards[name] = model.NewBoard()
	m.root.Active = name
	m.pushLoadLocked()
	m.pushBoardsLocked()
}

func (m *Manager) renameBoard(oldName, newName string) {
	// Validate before snapshotting so a rejected rename leaves history alone.
	pre := m.root.Clone()
	if err := m.root.RenameBoard(oldName, newName); err != nil {
		m.warn(err.Error())
		return
	}
	m.hist.Push(pre)
	m.pushBoardsLocked()
}

func (m *Manager) deleteBoard(name string) {
	pre := m.root.Clone()
	if err := m.root.DeleteBoard(name); err != nil {
		m.warn(err.Error())
		return
	}
	m.hist.Push(pre)
	m.pushLoadLocked()
	m.pushBoardsLocked()
}

func (m *Manager) renameFile(v protocol.RenameFile) {
	b := m.root.ActiveBoard()
	c := b.Card(v.ID)
	if c == nil {
		m.warn(fmt.Sprintf("rename: unknown card %s", v.ID))
		return
	}
	newPath := filepath.Join(filepath.Dir(v.OldPath), v.NewName)
	if m.files != nil {
		if !m.files.Exists(v.OldPath) {
			m.warn(fmt.Sprintf("rename: source %s missing", v.OldPath))
			return
		}
		if m.files.Exists(newPath) {
			m.warn(fmt.Sprintf("rename: target %s already exists", newPath))
			return
		}
		if err := m.files.Rename(v.OldPath, newPath); err != nil {
			m.warn(fmt.Sprintf("rename %s: %v", v.OldPath, err))
			return
		}
	}
	m.snapshot()
	c.Path = newPath
	m.notify(protocol.FileRenamed{CardID: c.ID, OldPath: v.OldPath, NewPath: newPath})
}

func (m *Manager) relink(v protocol.RequestRelink) {
	b := m.root.ActiveBoard()
	c := b.Card(v.ID)
	if c == nil {
		m.warn(fmt.Sprintf("relink: unknown card %s", v.ID))
		return
	}
	m.snapshot()
	c.Path = v.Path
	m.notify(protocol.FileRelinked{Updates: []protocol.RelinkUpdate{{CardID: c.ID, NewPath: v.Path}}})
	if m.files != nil {
		if p, err := m.files.Preview(v.Path); err == nil {
			m.notify(protocol.FileChanged{Path: v.Path, Preview: p})
		}
	}
}

func (m *Manager) fileContents(paths []string) {
	if m.files == nil {
		m.warn("file contents requested without a file source")
		return
	}
	contents := make([]protocol.FileContent, 0, len(paths))
	for _, p := range paths {
		text, err := m.files.Contents(p)
		if err != nil {
			m.warn(fmt.Sprintf("read %s: %v", p, err))
			continue
		}
		contents = append(contents, protocol.FileContent{Path: p, Content: text})
	}
	m.notify(protocol.FileContents{Contents: contents})
}

func (m *Manager) undo() {
	prev, ok := m.hist.Undo(m.root)
	if !ok {
		return
	}
	if m.files != nil {
		for _, w := range history.Reconcile(m.files, m.root, prev) {
			m.warn(w)
		}
	}
	m.root = prev
	m.pushLoadLocked()
	m.pushBoardsLocked()
}

func (m *Manager) redo() {
	next, ok := m.hist.Redo(m.root)
	if !ok {
		return
	}
	if m.files != nil {
		for _, w := range history.Reconcile(m.files, m.root, next) {
			m.warn(w)
		}
	}
	m.root = next
	m.pushLoadLocked()
	m.pushBoardsLocked()
}

// pushLoadLocked sends a full snapshot of the active board with previews,
// loaded concurrently since a board can reference many files.
func (m *Manager) pushLoadLocked() {
	b := m.root.ActiveBoard()
	previews := map[string]string{}
	if m.files != nil && len(b.Cards) > 0 {
		paths := make([]string, len(b.Cards))
		for i := range b.Cards {
			paths[i] = b.Cards[i].Path
		}
		previews = m.files.PreviewMap(context.Background(), paths)
	}
	m.notify(protocol.LoadBoard{Name: m.root.Active, Board: b.Clone(), Previews: previews})
}

func (m *Manager) pushBoardsLocked() {
	m.notify(protocol.BoardList{Names: m.root.BoardNames(), Active: m.root.Active})
}

// PushLoad sends the initial board snapshot, typically once at startup.
func (m *Manager) PushLoad() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushLoadLocked()
	m.pushBoardsLocked()
}

// ExternalReload replaces the container with the on-disk state after an
// external edit. History is reset: old snapshots predate a baseline this
// process never produced.
func (m *Manager) ExternalReload() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	root, err := LoadRoot(m.path, m.warn)
	if err != nil {
		return err
	}
	debug.Log("external reload of %s", m.path)
	m.root = root
	m.hist.Reset()
	m.pushLoadLocked()
	m.pushBoardsLocked()
	return nil
}

func (m *Manager) scheduleSaveLocked() {
	m.saver.Trigger(func() {
		if err := m.Flush(); err != nil {
			m.warn(err.Error())
		}
	})
}

// Flush cancels any pending debounced save and writes immediately. Call on
// shutdown so the last burst of mutations reaches disk.
func (m *Manager) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saver.Cancel()
	return SaveRoot(m.path, m.root)
}
