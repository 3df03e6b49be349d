package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// boardsAction is what the board switcher wants the caller to do.
type boardsAction int

const (
	boardsNone boardsAction = iota
	boardsSwitch
	boardsCreate
	boardsRename
	boardsDelete
)

// boardsResult is a completed switcher interaction.
type boardsResult struct {
	action boardsAction
	target string // existing board the action applies to
	name   string // new or destination name
}

// boardsPanel is the board switcher overlay: a cursor list of board names
// plus huh forms for the create, rename, and delete flows.
type boardsPanel struct {
	open   bool
	names  []string
	active string
	cursor int
	theme  Theme

	form    *huh.Form
	action  boardsAction
	target  string
	name    string // bound by the create/rename input
	confirm bool   // bound by the delete confirm
}

func newBoardsPanel(theme Theme) *boardsPanel {
	return &boardsPanel{theme: theme}
}

// Active reports whether the switcher is open and should capture input.
func (p *boardsPanel) Active() bool { return p.open }

// Open shows the switcher with the cursor on the active board.
func (p *boardsPanel) Open(names []string, active string) {
	p.open = true
	p.names = names
	p.active = active
	p.cursor = 0
	for i, n := range names {
		if n == active {
			p.cursor = i
			break
		}
	}
	p.form = nil
	p.action = boardsNone
}

// Close hides the switcher and drops any in-progress form.
func (p *boardsPanel) Close() {
	p.open = false
	p.form = nil
	p.action = boardsNone
}

func (p *boardsPanel) newForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithTheme(huh.ThemeDracula()).WithShowHelp(false)
}

func (p *boardsPanel) startCreate() tea.Cmd {
	p.action = boardsCreate
	p.name = ""
	p.form = p.newForm(huh.NewGroup(
		huh.NewInput().
			Title("New board").
			Placeholder("name").
			Value(&p.name),
	))
	return p.form.Init()
}

func (p *boardsPanel) startRename(target string) tea.Cmd {
	p.action = boardsRename
	p.target = target
	p.name = target
	p.form = p.newForm(huh.NewGroup(
		huh.NewInput().
			Title(fmt.Sprintf("Rename %q", target)).
			Value(&p.name),
	))
	return p.form.Init()
}

func (p *boardsPanel) startDelete(target string) tea.Cmd {
	p.action = boardsDelete
	p.target = target
	p.confirm = false
	p.form = p.newForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Delete board %q?", target)).
			Description("Cards and links on it are removed; workspace files stay").
			Affirmative("Delete").
			Negative("Keep").
			Value(&p.confirm),
	))
	return p.form.Init()
}

// Update drives the switcher. A non-none result means the caller should act
// on it; the panel closes itself for terminal actions.
func (p *boardsPanel) Update(msg tea.Msg) (boardsResult, tea.Cmd) {
	if p.form != nil {
		m, cmd := p.form.Update(msg)
		if f, ok := m.(*huh.Form); ok {
			p.form = f
		}
		switch p.form.State {
		case huh.StateCompleted:
			res := boardsResult{action: p.action, target: p.target, name: strings.TrimSpace(p.name)}
			if p.action == boardsDelete && !p.confirm {
				res = boardsResult{}
			}
			if res.action == boardsCreate && res.name == "" {
				res = boardsResult{}
			}
			p.form = nil
			p.action = boardsNone
			if res.action != boardsNone {
				p.Close()
			}
			return res, cmd
		case huh.StateAborted:
			p.form = nil
			p.action = boardsNone
			return boardsResult{}, cmd
		}
		return boardsResult{}, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return boardsResult{}, nil
	}
	switch key.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.names)-1 {
			p.cursor++
		}
	case "enter":
		if p.cursor < len(p.names) {
			name := p.names[p.cursor]
			p.Close()
			return boardsResult{action: boardsSwitch, name: name}, nil
		}
	case "n":
		return boardsResult{}, p.startCreate()
	case "r":
		if p.cursor < len(p.names) {
			return boardsResult{}, p.startRename(p.names[p.cursor])
		}
	case "d":
		if p.cursor < len(p.names) {
			return boardsResult{}, p.startDelete(p.names[p.cursor])
		}
	case "esc", "q", "b":
		p.Close()
	}
	return boardsResult{}, nil
}

// View renders the switcher box, or the active form when one is open.
func (p *boardsPanel) View() string {
	if !p.open {
		return ""
	}
	var content string
	if p.form != nil {
		content = p.form.View()
	} else {
		var sb strings.Builder
		sb.WriteString(p.theme.Header.Render("Boards"))
		sb.WriteByte('\n')
		for i, name := range p.names {
			line := "  " + name
			if name == p.active {
				line += " (active)"
			}
			if i == p.cursor {
				sb.WriteString(p.theme.BorderActive.Render("▸ " + strings.TrimPrefix(line, "  ")))
			} else {
				sb.WriteString(p.theme.Base.Render(line))
			}
			sb.WriteByte('\n')
		}
		sb.WriteString(p.theme.Help.Render("enter switch · n new · r rename · d delete · esc close"))
		content = sb.String()
	}
	box := p.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.theme.Highlight).
		Padding(0, 1)
	return box.Render(content)
}
