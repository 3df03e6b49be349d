package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mune-tada/corkboard/pkg/drag"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.UI.Theme != "dark" {
		t.Errorf("expected default theme 'dark', got %q", cfg.UI.Theme)
	}
	if cfg.Favorites == nil {
		t.Error("expected favorites map to be initialized")
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("expected default config, got theme %q", cfg.UI.Theme)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
workspaces:
  - name: novel
    path: ~/writing/novel
  - name: research
    path: /absolute/path

favorites:
  1: novel
  2: research

ui:
  theme: light
  hide_link_layer: true

tunables:
  snap_threshold: 12
  row_tolerance: 60
  smooth_ratio: 0.4
  save_delay_ms: 1000
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Workspaces) != 2 {
		t.Fatalf("expected 2 workspaces, got %d", len(cfg.Workspaces))
	}
	// Path should have ~ expanded
	home, _ := os.UserHomeDir()
	expectedPath := filepath.Join(home, "writing/novel")
	if cfg.Workspaces[0].Path != expectedPath {
		t.Errorf("expected expanded path %q, got %q", expectedPath, cfg.Workspaces[0].Path)
	}
	if cfg.Workspaces[1].Path != "/absolute/path" {
		t.Errorf("expected absolute path preserved, got %q", cfg.Workspaces[1].Path)
	}

	if cfg.Favorites[1] != "novel" {
		t.Errorf("expected favorite 1 = 'novel', got %q", cfg.Favorites[1])
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("expected theme 'light', got %q", cfg.UI.Theme)
	}
	if !cfg.UI.HideLinkLayer {
		t.Error("expected hide_link_layer true")
	}
	if cfg.Tunables.SnapThreshold != 12 {
		t.Errorf("expected snap_threshold 12, got %f", cfg.Tunables.SnapThreshold)
	}
	if cfg.Tunables.SaveDelayMS != 1000 {
		t.Errorf("expected save_delay_ms 1000, got %d", cfg.Tunables.SaveDelayMS)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.RememberWorkspace("novel", "/writing/novel")
	cfg.SetFavorite(1, "novel")
	cfg.Tunables.SnapThreshold = 10

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded.Workspaces) != 1 || loaded.Workspaces[0].Name != "novel" {
		t.Errorf("workspaces = %+v", loaded.Workspaces)
	}
	if loaded.Favorites[1] != "novel" {
		t.Errorf("favorite 1 = %q", loaded.Favorites[1])
	}
	if loaded.Tunables.SnapThreshold != 10 {
		t.Errorf("snap_threshold = %f", loaded.Tunables.SnapThreshold)
	}
}

func TestRememberWorkspaceRefreshesPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RememberWorkspace("novel", "/old")
	cfg.RememberWorkspace("novel", "/new")
	if len(cfg.Workspaces) != 1 || cfg.Workspaces[0].Path != "/new" {
		t.Errorf("workspaces = %+v", cfg.Workspaces)
	}
}

func TestFavoriteWorkspace(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RememberWorkspace("novel", "/writing/novel")
	cfg.SetFavorite(3, "novel")

	if w := cfg.FavoriteWorkspace(3); w == nil || w.Name != "novel" {
		t.Errorf("favorite 3 = %+v", w)
	}
	if w := cfg.FavoriteWorkspace(9); w != nil {
		t.Errorf("unassigned favorite = %+v", w)
	}

	cfg.SetFavorite(3, "")
	if w := cfg.FavoriteWorkspace(3); w != nil {
		t.Error("cleared favorite should be gone")
	}
}

func TestTunablesDragConfigDefaults(t *testing.T) {
	var zero Tunables
	cfg := zero.DragConfig()
	def := drag.DefaultConfig()
	if cfg != def {
		t.Errorf("zero tunables = %+v, want defaults %+v", cfg, def)
	}

	custom := Tunables{SnapThreshold: 12, SmoothRatio: 0.5}
	cfg = custom.DragConfig()
	if cfg.SnapThreshold != 12 || cfg.SmoothRatio != 0.5 {
		t.Errorf("custom tunables not applied: %+v", cfg)
	}
	if cfg.RowTolerance != def.RowTolerance {
		t.Errorf("unset field should keep default, got %f", cfg.RowTolerance)
	}
}
