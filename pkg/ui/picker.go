package ui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// pickerItem is one workspace file in the picker list.
type pickerItem struct {
	path    string
	desc    string
	onBoard bool
}

func (i pickerItem) Title() string {
	if i.onBoard {
		return i.path + " ✓"
	}
	return i.path
}

func (i pickerItem) Description() string { return i.desc }
func (i pickerItem) FilterValue() string { return i.path }

// filePicker is the workspace file browser used to add cards and to relink
// a card whose file went missing.
type filePicker struct {
	open    bool
	relink  string // card id being relinked, "" when adding
	list    list.Model
	theme   Theme
}

func newFilePicker(theme Theme) *filePicker {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(theme.Highlight).
		BorderLeftForeground(theme.Highlight)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(theme.Muted).
		BorderLeftForeground(theme.Highlight)

	l := list.New(nil, delegate, 0, 0)
	l.SetShowStatusBar(false)
	l.SetShowHelp(true)
	l.DisableQuitKeybindings()

	return &filePicker{list: l, theme: theme}
}

// Active reports whether the picker is open and should capture input.
func (p *filePicker) Active() bool { return p.open }

// RelinkTarget returns the card id a pick should relink, or "" when the
// pick adds a new card.
func (p *filePicker) RelinkTarget() string { return p.relink }

// Open shows the picker over the given workspace files. Files already on
// the board are marked; previews become list descriptions.
func (p *filePicker) Open(title string, paths []string, previews map[string]string, onBoard map[string]bool, relinkCard string, width, height int) {
	items := make([]list.Item, 0, len(paths))
	for _, path := range paths {
		items = append(items, pickerItem{
			path:    path,
			desc:    firstLine(previews[path]),
			onBoard: onBoard[path],
		})
	}
	p.list.Title = title
	p.list.SetItems(items)
	p.list.ResetFilter()
	p.list.Select(0)
	p.SetSize(width, height)
	p.relink = relinkCard
	p.open = true
}

// SetSize resizes the embedded list.
func (p *filePicker) SetSize(width, height int) {
	w := width - 4
	h := height - 4
	if w < 20 {
		w = 20
	}
	if h < 5 {
		h = 5
	}
	p.list.SetSize(w, h)
}

// Close hides the picker.
func (p *filePicker) Close() {
	p.open = false
	p.relink = ""
}

// Update drives the picker. The returned path is non-empty when the user
// picked a file; the picker closes itself on pick and on esc.
func (p *filePicker) Update(msg tea.Msg) (picked string, cmd tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && !p.list.SettingFilter() {
		switch key.String() {
		case "enter":
			if item, ok := p.list.SelectedItem().(pickerItem); ok {
				p.open = false
				return item.path, nil
			}
		case "esc", "q":
			p.Close()
			return "", nil
		}
	}
	p.list, cmd = p.list.Update(msg)
	return "", cmd
}

// View renders the picker box.
func (p *filePicker) View() string {
	if !p.open {
		return ""
	}
	box := p.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.theme.Highlight).
		Padding(0, 1)
	return box.Render(p.list.View())
}
