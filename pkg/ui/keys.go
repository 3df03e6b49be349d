package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings for the board view.
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	Move key.Binding

	ViewMode   key.Binding
	ColsUp     key.Binding
	ColsDown   key.Binding
	CardHeight key.Binding

	ZoomIn    key.Binding
	ZoomOut   key.Binding
	ZoomReset key.Binding

	Links      key.Binding
	Connect    key.Binding
	CycleLink  key.Binding
	EditLink   key.Binding
	LinkColor  key.Binding
	DeleteLink key.Binding

	AddCard    key.Binding
	DeleteCard key.Binding
	Edit       key.Binding
	Status     key.Binding
	Label      key.Binding
	Rename     key.Binding
	Preview    key.Binding
	CopyPath   key.Binding

	Boards   key.Binding
	Insights key.Binding
	Undo     key.Binding
	Redo     key.Binding
	Export   key.Binding

	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the standard keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),

		Move: key.NewBinding(key.WithKeys("m", " "), key.WithHelp("m", "move card")),

		ViewMode:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "cycle view mode")),
		ColsUp:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "more columns")),
		ColsDown:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "fewer columns")),
		CardHeight: key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "card height")),

		ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		ZoomReset: key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset zoom")),

		Links:      key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "toggle links")),
		Connect:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "connect cards")),
		CycleLink:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "select link")),
		EditLink:   key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "edit link label")),
		LinkColor:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "link color")),
		DeleteLink: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete link")),

		AddCard:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add card")),
		DeleteCard: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove card")),
		Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit synopsis")),
		Status:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle status")),
		Label:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "edit label")),
		Rename:     key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "rename file")),
		Preview:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "preview")),
		CopyPath:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy path")),

		Boards:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "boards")),
		Insights: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "insights")),
		Undo:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Redo:   key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "redo")),
		Export: key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "export")),

		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp returns the bindings shown in the collapsed help line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Move, k.Connect, k.ViewMode, k.Boards, k.Undo, k.Help, k.Quit}
}

// FullHelp returns the binding columns for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Move},
		{k.ViewMode, k.ColsUp, k.ColsDown, k.CardHeight, k.ZoomIn, k.ZoomOut, k.ZoomReset},
		{k.Links, k.Connect, k.CycleLink, k.EditLink, k.LinkColor, k.DeleteLink},
		{k.AddCard, k.DeleteCard, k.Edit, k.Status, k.Label, k.Rename, k.Preview, k.CopyPath},
		{k.Boards, k.Insights, k.Undo, k.Redo, k.Export, k.Help, k.Quit},
	}
}
