package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// previewPane shows a card's full file contents rendered as markdown in a
// scrollable viewport. The glamour renderer is created lazily at the first
// open and rebuilt when the pane width changes.
type previewPane struct {
	open     bool
	title    string
	vp       viewport.Model
	renderer *glamour.TermRenderer
	wrap     int
	theme    Theme
}

func newPreviewPane(theme Theme) *previewPane {
	return &previewPane{vp: viewport.New(0, 0), theme: theme}
}

// Active reports whether the pane is open and should capture input.
func (p *previewPane) Active() bool { return p.open }

func (p *previewPane) ensureRenderer(wrap int) {
	if p.renderer != nil && p.wrap == wrap {
		return
	}
	p.renderer, _ = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	p.wrap = wrap
}

// Open renders the given markdown and shows the pane. A renderer failure
// falls back to the raw text so the pane always shows something.
func (p *previewPane) Open(title, markdown string, width, height int) {
	wrap := width - 8
	if wrap < 20 {
		wrap = 20
	}
	p.ensureRenderer(wrap)

	content := markdown
	if p.renderer != nil {
		if out, err := p.renderer.Render(markdown); err == nil {
			content = out
		}
	}
	p.title = title
	p.vp.Width = wrap + 2
	p.vp.Height = clamp(height-6, 4, height)
	p.vp.SetContent(strings.TrimRight(content, "\n"))
	p.vp.GotoTop()
	p.open = true
}

// Close hides the pane.
func (p *previewPane) Close() { p.open = false }

// Update scrolls the viewport; esc or q closes.
func (p *previewPane) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "q", "enter":
			p.Close()
			return nil
		}
	}
	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(msg)
	return cmd
}

// View renders the pane box with a title bar and scroll position.
func (p *previewPane) View() string {
	if !p.open {
		return ""
	}
	pct := p.theme.MutedText.Render(scrollPercent(p.vp))
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		p.theme.Header.Render(p.title), "  ", pct)
	box := p.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.theme.Border).
		Padding(0, 1)
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, header, p.vp.View()))
}

func scrollPercent(vp viewport.Model) string {
	if vp.AtBottom() {
		return "100%"
	}
	return fmt.Sprintf("%d%%", int(vp.ScrollPercent()*100))
}
