package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals use the
// terminal's own background instead of a down-converted approximation.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme bundles the adaptive colors and pre-computed styles the views use.
// Styles are created once at startup instead of per-frame.
type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	// Card statuses
	Todo  lipgloss.AdaptiveColor
	Doing lipgloss.AdaptiveColor
	Done  lipgloss.AdaptiveColor

	// UI elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Link      lipgloss.AdaptiveColor

	// Styles
	Base         lipgloss.Style
	Header       lipgloss.Style
	BorderLine   lipgloss.Style
	BorderActive lipgloss.Style
	Card       lipgloss.Style
	CardActive lipgloss.Style
	CardGhost  lipgloss.Style
	LinkLine   lipgloss.Style
	LinkLabel  lipgloss.Style
	Handle     lipgloss.Style
	StatusBar  lipgloss.Style
	MutedText  lipgloss.Style
	Help       lipgloss.Style
}

// themeFor builds the theme after applying the configured color preference
// to the renderer. "dark" and "light" force the corresponding side of every
// adaptive color; anything else keeps the renderer's background detection.
func themeFor(pref string, r *lipgloss.Renderer) Theme {
	switch pref {
	case "dark":
		r.SetHasDarkBackground(true)
	case "light":
		r.SetHasDarkBackground(false)
	}
	return DefaultTheme(r)
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive).
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}, // Purple
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}, // Gray
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},

		Todo:  lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}, // Orange
		Doing: lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}, // Cyan
		Done:  lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}, // Green

		Border:    lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Muted:     lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"},
		Link:      lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#6699FF"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"})
	t.Header = r.NewStyle().Bold(true).Foreground(t.Primary)
	t.BorderLine = r.NewStyle().Foreground(t.Border)
	t.BorderActive = r.NewStyle().Foreground(t.Highlight).Bold(true)
	t.Card = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
	t.CardActive = t.Card.
		BorderForeground(t.Highlight).
		Bold(true)
	t.CardGhost = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Muted).
		Foreground(t.Muted).
		Padding(0, 1)
	t.LinkLine = r.NewStyle().Foreground(t.Link)
	t.LinkLabel = r.NewStyle().Foreground(t.Link).Italic(true)
	t.Handle = r.NewStyle().Foreground(t.Highlight).Bold(true)
	t.StatusBar = r.NewStyle().Foreground(t.Subtext)
	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.Help = r.NewStyle().Foreground(t.Muted)

	return t
}

// StatusColor maps a card status to its accent color. Unknown statuses get
// the secondary color so custom status sets still render.
func (t Theme) StatusColor(status string) lipgloss.AdaptiveColor {
	switch status {
	case "todo":
		return t.Todo
	case "doing":
		return t.Doing
	case "done":
		return t.Done
	default:
		return t.Secondary
	}
}
