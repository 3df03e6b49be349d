package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// editKind selects which field the modal edits and where the result goes.
type editKind int

const (
	editNone editKind = iota
	editSynopsis
	editLabel
	editLinkLabel
	editRename
	editAddCard
)

// editor is the single-field edit modal. One instance is reused across
// edits; opening it configures the prompt and seeds the current value.
// Synopsis editing gets a multi-line textarea, everything else a one-line
// input.
type editor struct {
	kind   editKind
	target string // card or link id the commit applies to
	title  string
	input  textinput.Model
	area   textarea.Model
	theme  Theme
}

func newEditor(theme Theme) *editor {
	in := textinput.New()
	in.CharLimit = 256
	in.Width = 48

	ta := textarea.New()
	ta.CharLimit = 2000
	ta.SetWidth(52)
	ta.SetHeight(6)

	return &editor{input: in, area: ta, theme: theme}
}

// Active reports whether the modal is open and should capture input.
func (e *editor) Active() bool { return e.kind != editNone }

// Kind returns what is being edited.
func (e *editor) Kind() editKind { return e.kind }

// Target returns the card or link id the edit applies to.
func (e *editor) Target() string { return e.target }

func (e *editor) open(kind editKind, target, title, value, placeholder string) {
	e.kind = kind
	e.target = target
	e.title = title
	if kind == editSynopsis {
		// SetValue leaves the cursor at the end of the seeded text.
		e.area.SetValue(value)
		e.area.Placeholder = placeholder
		e.area.Focus()
		return
	}
	e.input.SetValue(value)
	e.input.Placeholder = placeholder
	e.input.Focus()
	e.input.CursorEnd()
}

// OpenSynopsis starts editing a card's synopsis override.
func (e *editor) OpenSynopsis(cardID, current string) {
	e.open(editSynopsis, cardID, "Synopsis", current, "shown instead of the file preview")
}

// OpenLabel starts editing a card's label.
func (e *editor) OpenLabel(cardID, current string) {
	e.open(editLabel, cardID, "Label", current, "label")
}

// OpenLinkLabel starts editing a link's label.
func (e *editor) OpenLinkLabel(linkID, current string) {
	e.open(editLinkLabel, linkID, "Link label", current, "relationship")
}

// OpenRename starts renaming a card's backing file. The value is the bare
// file name, not the path.
func (e *editor) OpenRename(cardID, currentName string) {
	e.open(editRename, cardID, "Rename file", currentName, "new-name.md")
}

// OpenAddCard starts creating a card for a new file path.
func (e *editor) OpenAddCard() {
	e.open(editAddCard, "", "New card", "", "notes/scene.md")
}

// Close discards the edit without committing.
func (e *editor) Close() {
	e.kind = editNone
	e.target = ""
	e.input.Blur()
	e.area.Blur()
}

// Value returns the current field content, trimmed.
func (e *editor) Value() string {
	if e.kind == editSynopsis {
		return strings.TrimRight(e.area.Value(), "\n ")
	}
	return strings.TrimSpace(e.input.Value())
}

// Update feeds a message to the focused field and reports whether the edit
// finished. Enter commits (except in the textarea, where ctrl+s commits and
// enter inserts a newline); esc cancels.
func (e *editor) Update(msg tea.Msg) (done, commit bool, cmd tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return true, false, nil
		case "enter":
			if e.kind != editSynopsis {
				return true, true, nil
			}
		case "ctrl+s":
			if e.kind == editSynopsis {
				return true, true, nil
			}
		}
	}
	if e.kind == editSynopsis {
		e.area, cmd = e.area.Update(msg)
		return false, false, cmd
	}
	e.input, cmd = e.input.Update(msg)
	return false, false, cmd
}

// View renders the modal box.
func (e *editor) View() string {
	if e.kind == editNone {
		return ""
	}
	var field string
	hint := "enter save · esc cancel"
	if e.kind == editSynopsis {
		field = e.area.View()
		hint = "ctrl+s save · esc cancel"
	} else {
		field = e.input.View()
	}
	box := e.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(e.theme.Highlight).
		Padding(0, 1)
	return box.Render(lipgloss.JoinVertical(lipgloss.Left,
		e.theme.Header.Render(e.title),
		field,
		e.theme.Help.Render(hint),
	))
}
