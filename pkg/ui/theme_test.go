package ui

import (
	"io"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestThemeForForcesBackground(t *testing.T) {
	r := lipgloss.NewRenderer(io.Discard)

	themeFor("light", r)
	if r.HasDarkBackground() {
		t.Error("light preference should force a light background")
	}

	themeFor("dark", r)
	if !r.HasDarkBackground() {
		t.Error("dark preference should force a dark background")
	}
}

func TestThemeForAutoKeepsDetection(t *testing.T) {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetHasDarkBackground(true)

	th := themeFor("auto", r)
	if !r.HasDarkBackground() {
		t.Error("auto preference should not override background detection")
	}
	if th.Renderer != r {
		t.Error("theme should carry the renderer it was built from")
	}
}

func TestStatusColorFallsBackToSecondary(t *testing.T) {
	th := DefaultTheme(lipgloss.NewRenderer(io.Discard))
	if got := th.StatusColor("blocked"); got != th.Secondary {
		t.Errorf("unknown status color = %v, want secondary", got)
	}
}
