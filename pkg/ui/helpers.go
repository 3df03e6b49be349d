package ui

import (
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/mune-tada/corkboard/pkg/model"
)

// truncate shortens s to max visual width (cells), appending an ellipsis
// when cut. Uses go-runewidth to handle wide characters correctly.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return "…"
	}
	return runewidth.Truncate(s, maxWidth-1, "") + "…"
}

// padRight pads s with spaces to exactly the given visual width.
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// cardTitle is the display name of a card: its file base name without
// extension.
func cardTitle(c model.Card) string {
	base := filepath.Base(c.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// firstLine returns the first non-empty line of text.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return ""
}

// clamp bounds v into [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
