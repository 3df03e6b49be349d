package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mune-tada/corkboard/pkg/analysis"
	"github.com/mune-tada/corkboard/pkg/model"
)

// insightsPanel shows the structural analysis of the current board: how the
// link graph clusters, whether it cycles, and which cards it centers on.
// The stats are recomputed on open, not per frame.
type insightsPanel struct {
	open  bool
	stats *analysis.Stats
	board *model.Board
	theme Theme
}

func newInsightsPanel(theme Theme) *insightsPanel {
	return &insightsPanel{theme: theme}
}

// Active reports whether the panel is open and should capture input.
func (p *insightsPanel) Active() bool { return p.open }

// Open computes the stats for the given board and shows the panel.
func (p *insightsPanel) Open(b *model.Board) {
	p.board = b
	p.stats = analysis.Analyze(b)
	p.open = true
}

// Close hides the panel.
func (p *insightsPanel) Close() { p.open = false }

// Update closes on any dismissing key.
func (p *insightsPanel) Update(msg tea.Msg) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "q", "i", "enter":
			p.Close()
		}
	}
}

func (p *insightsPanel) titleFor(cardID string) string {
	if c := p.board.Card(cardID); c != nil {
		return cardTitle(*c)
	}
	return cardID
}

// View renders the stats box.
func (p *insightsPanel) View() string {
	if !p.open || p.stats == nil {
		return ""
	}
	s := p.stats
	var sb strings.Builder
	sb.WriteString(p.theme.Header.Render("Board structure"))
	sb.WriteByte('\n')
	sb.WriteString(fmt.Sprintf("  %d cards, %d links (density %.2f)\n",
		s.NodeCount, s.EdgeCount, s.Density))
	sb.WriteString(fmt.Sprintf("  %d clusters, %d unlinked cards\n",
		len(s.Components), len(s.Isolated())))

	if s.HasCycles() {
		sb.WriteString(p.theme.MutedText.Render("  contains cycles:"))
		sb.WriteByte('\n')
		for _, cyc := range s.Cycles {
			names := make([]string, 0, len(cyc))
			for _, id := range cyc {
				names = append(names, p.titleFor(id))
			}
			sb.WriteString("    " + truncate(strings.Join(names, " -> "), 60))
			sb.WriteByte('\n')
		}
	} else if len(s.TopologicalOrder) > 0 {
		names := make([]string, 0, len(s.TopologicalOrder))
		for _, id := range s.TopologicalOrder {
			names = append(names, p.titleFor(id))
		}
		sb.WriteString(p.theme.MutedText.Render("  reading order: "))
		sb.WriteString(truncate(strings.Join(names, " -> "), 58))
		sb.WriteByte('\n')
	}

	if top := s.TopByPageRank(3); len(top) > 0 {
		sb.WriteString(p.theme.MutedText.Render("  central cards:"))
		sb.WriteByte('\n')
		for _, id := range top {
			sb.WriteString(fmt.Sprintf("    %s  (in %d, out %d)\n",
				p.titleFor(id), s.InDegree[id], s.OutDegree[id]))
		}
	}
	sb.WriteString(p.theme.Help.Render("esc close"))

	box := p.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.theme.Border).
		Padding(0, 1)
	return box.Render(strings.TrimRight(sb.String(), "\n"))
}
