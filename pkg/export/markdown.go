// Package export renders a board into shareable artifacts: a Markdown
// outline, a static SVG or PNG snapshot of the spatial layout, and a SQLite
// database for external querying.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mune-tada/corkboard/pkg/analysis"
	"github.com/mune-tada/corkboard/pkg/model"
)

// MarkdownOptions controls Markdown generation.
type MarkdownOptions struct {
	BoardName string
	Previews  map[string]string // path -> preview text, optional
	Now       time.Time         // zero means time.Now
}

// GenerateMarkdown renders a board as a Markdown outline: cards in canonical
// order with their synopsis or preview, then the link list, then a short
// structural summary.
func GenerateMarkdown(b *model.Board, opts MarkdownOptions) string {
	var sb strings.Builder

	name := opts.BoardName
	if name == "" {
		name = model.DefaultBoardName
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	fmt.Fprintf(&sb, "# %s\n\n", name)
	fmt.Fprintf(&sb, "_Exported %s · %d cards · %d links_\n\n",
		now.Format("2006-01-02 15:04"), len(b.Cards), len(b.Links))

	cards := b.SortedCards()
	for _, c := range cards {
		fmt.Fprintf(&sb, "## %s\n\n", cardTitle(c))
		var meta []string
		if c.Label != "" {
			meta = append(meta, "label: "+c.Label)
		}
		if c.Status != "" {
			meta = append(meta, "status: "+c.Status)
		}
		if len(meta) > 0 {
			fmt.Fprintf(&sb, "_%s_\n\n", strings.Join(meta, " · "))
		}
		text := c.Synopsis
		if text == "" && opts.Previews != nil {
			text = opts.Previews[c.Path]
		}
		if text != "" {
			sb.WriteString(text)
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%s](%s)\n\n", c.Path, c.Path)
	}

	if len(b.Links) > 0 {
		sb.WriteString("## Connections\n\n")
		byID := make(map[string]model.Card, len(b.Cards))
		for _, c := range cards {
			byID[c.ID] = c
		}
		for _, l := range b.Links {
			from, okFrom := byID[l.FromID]
			to, okTo := byID[l.ToID]
			if !okFrom || !okTo {
				continue
			}
			if l.Label != "" {
				fmt.Fprintf(&sb, "- %s -> %s (%s)\n", cardTitle(from), cardTitle(to), l.Label)
			} else {
				fmt.Fprintf(&sb, "- %s -> %s\n", cardTitle(from), cardTitle(to))
			}
		}
		sb.WriteString("\n")
	}

	stats := analysis.Analyze(b)
	sb.WriteString("## Structure\n\n")
	fmt.Fprintf(&sb, "- Components: %d\n", len(stats.Components))
	if stats.HasCycles() {
		fmt.Fprintf(&sb, "- Cycles: %d\n", len(stats.Cycles))
	}
	if iso := stats.Isolated(); len(iso) > 0 {
		fmt.Fprintf(&sb, "- Unlinked cards: %d\n", len(iso))
	}

	return sb.String()
}

// SaveMarkdown writes the outline to a file.
func SaveMarkdown(b *model.Board, opts MarkdownOptions, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	return os.WriteFile(path, []byte(GenerateMarkdown(b, opts)), 0o644)
}

// cardTitle is the display name of a card: the file's base name without
// extension.
func cardTitle(c model.Card) string {
	base := filepath.Base(c.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
