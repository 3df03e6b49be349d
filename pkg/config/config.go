// Package config handles loading and saving corkboard configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/cb/config.yaml
//   - Data:    ~/.local/share/cb/ (exports)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mune-tada/corkboard/pkg/drag"
)

// Workspace represents a registered workspace in the config.
type Workspace struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	Theme         string `yaml:"theme,omitempty"`           // dark, light, auto
	HideLinkLayer bool   `yaml:"hide_link_layer,omitempty"` // start with connectors hidden
	Headless      bool   `yaml:"headless,omitempty"`        // compact header mode
}

// Tunables exposes the interaction constants as configuration. Zero values
// mean "use the default".
type Tunables struct {
	SnapThreshold float64 `yaml:"snap_threshold,omitempty"` // px, freeform edge snapping
	RowTolerance  float64 `yaml:"row_tolerance,omitempty"`  // px, freeform order derivation
	SmoothRatio   float64 `yaml:"smooth_ratio,omitempty"`   // 0..1, drag smoothing per frame
	SaveDelayMS   int     `yaml:"save_delay_ms,omitempty"`  // debounce window for disk writes
}

// DragConfig converts the tunables into an interaction config, filling
// defaults for unset fields.
func (t Tunables) DragConfig() drag.Config {
	cfg := drag.DefaultConfig()
	if t.SnapThreshold > 0 {
		cfg.SnapThreshold = t.SnapThreshold
	}
	if t.RowTolerance > 0 {
		cfg.RowTolerance = t.RowTolerance
	}
	if t.SmoothRatio > 0 && t.SmoothRatio <= 1 {
		cfg.SmoothRatio = t.SmoothRatio
	}
	return cfg
}

// Config is the top-level configuration for cb.
type Config struct {
	Workspaces []Workspace    `yaml:"workspaces,omitempty"`
	Favorites  map[int]string `yaml:"favorites,omitempty"` // number key (1-9) -> workspace name
	UI         UIConfig       `yaml:"ui,omitempty"`
	Tunables   Tunables       `yaml:"tunables,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Favorites: make(map[int]string),
		UI: UIConfig{
			Theme: "dark",
		},
	}
}

// appDir is the directory name used under each XDG base.
const appDir = "cb"

// ConfigDir returns the XDG config directory for cb.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appDir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appDir)
}

// DataDir returns the XDG data directory for cb.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appDir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", appDir)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	// Ensure favorites map is initialized
	if cfg.Favorites == nil {
		cfg.Favorites = make(map[int]string)
	}

	// Expand ~ in workspace paths
	for i := range cfg.Workspaces {
		cfg.Workspaces[i].Path = expandHome(cfg.Workspaces[i].Path)
	}

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// FindWorkspace returns the workspace with the given name, or nil.
func (c Config) FindWorkspace(name string) *Workspace {
	for i := range c.Workspaces {
		if strings.EqualFold(c.Workspaces[i].Name, name) {
			return &c.Workspaces[i]
		}
	}
	return nil
}

// FavoriteWorkspace returns the workspace assigned to number key n (1-9), or nil.
func (c Config) FavoriteWorkspace(n int) *Workspace {
	name, ok := c.Favorites[n]
	if !ok {
		return nil
	}
	return c.FindWorkspace(name)
}

// SetFavorite assigns a workspace name to a number key (1-9).
func (c *Config) SetFavorite(n int, workspaceName string) {
	if c.Favorites == nil {
		c.Favorites = make(map[int]string)
	}
	if workspaceName == "" {
		delete(c.Favorites, n)
	} else {
		c.Favorites[n] = workspaceName
	}
}

// RememberWorkspace adds or refreshes a workspace entry.
func (c *Config) RememberWorkspace(name, path string) {
	if w := c.FindWorkspace(name); w != nil {
		w.Path = path
		return
	}
	c.Workspaces = append(c.Workspaces, Workspace{Name: name, Path: path})
}

// ResolvedPath returns the workspace path with ~ expanded.
func (w Workspace) ResolvedPath() string {
	return expandHome(w.Path)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
