// Package persist owns the on-disk lifetime of the root container: loading
// with sanitation, atomic saves, debounced write scheduling, and the
// message-driven Manager that applies outbound mutations and answers with
// inbound notifications.
package persist

import (
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goccy/go-json"

	"github.com/mune-tada/corkboard/pkg/metrics"
	"github.com/mune-tada/corkboard/pkg/model"
)

// BoardFileEnvVar overrides the board file location when set.
const BoardFileEnvVar = "CB_BOARD_FILE"

// DefaultFileName is the board file created inside a workspace directory.
const DefaultFileName = "corkboard.json"

// ResolvePath returns the board file path for a workspace directory,
// respecting CB_BOARD_FILE. An empty dir means the current directory.
func ResolvePath(dir string) (string, error) {
	if env := os.Getenv(BoardFileEnvVar); env != "" {
		return env, nil
	}
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current working directory: %w", err)
		}
	}
	return filepath.Join(dir, DefaultFileName), nil
}

// validateCard rejects cards the rest of the system cannot address.
func validateCard(c *model.Card) error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ID, validation.Required),
		validation.Field(&c.Path, validation.Required),
	)
}

// validateLink rejects links with missing endpoints or unknown anchors.
// Dangling ids are tolerated here; they are a render-time concern.
func validateLink(l *model.Link) error {
	if err := validation.ValidateStruct(l,
		validation.Field(&l.ID, validation.Required),
		validation.Field(&l.FromID, validation.Required),
		validation.Field(&l.ToID, validation.Required),
	); err != nil {
		return err
	}
	if l.FromID == l.ToID {
		return fmt.Errorf("link %s connects a card to itself", l.ID)
	}
	if !l.FromAnchor.Valid() || !l.ToAnchor.Valid() {
		return fmt.Errorf("link %s has an unknown anchor", l.ID)
	}
	return nil
}

// sanitizeRoot repairs a freshly decoded container in place. Invalid cards
// and links are dropped with a warning; view settings are clamped to known
// values. Hand-edited or out-of-date files must never block loading.
func sanitizeRoot(r *model.Root, warn func(string)) {
	if warn == nil {
		warn = func(string) {}
	}
	r.ActiveBoard()
	for name, b := range r.Boards {
		if b == nil {
			delete(r.Boards, name)
			warn(fmt.Sprintf("dropping empty board entry %q", name))
			continue
		}
		if !b.ViewMode.Valid() {
			warn(fmt.Sprintf("board %q: unknown view mode %q, using grid", name, b.ViewMode))
			b.ViewMode = model.ViewGrid
		}
		if b.GridColumns != model.ClampGridColumns(b.GridColumns) {
			warn(fmt.Sprintf("board %q: grid columns %d out of range, clamping", name, b.GridColumns))
			b.GridColumns = model.ClampGridColumns(b.GridColumns)
		}
		switch b.CardHeight {
		case model.HeightSmall, model.HeightMedium, model.HeightLarge:
		default:
			b.CardHeight = model.HeightMedium
		}

		kept := b.Cards[:0]
		seen := make(map[string]bool, len(b.Cards))
		for i := range b.Cards {
			c := b.Cards[i]
			if err := validateCard(&c); err != nil {
				warn(fmt.Sprintf("board %q: dropping card: %v", name, err))
				continue
			}
			if seen[c.ID] {
				warn(fmt.Sprintf("board %q: dropping duplicate card id %s", name, c.ID))
				continue
			}
			seen[c.ID] = true
			kept = append(kept, c)
		}
		b.Cards = kept
		b.Renumber()

		keptLinks := b.Links[:0]
		for i := range b.Links {
			l := b.Links[i]
			if err := validateLink(&l); err != nil {
				warn(fmt.Sprintf("board %q: dropping link: %v", name, err))
				continue
			}
			keptLinks = append(keptLinks, l)
		}
		b.Links = keptLinks
	}
	// Sanitation may have deleted the active board.
	r.ActiveBoard()
}

// LoadRoot reads the board file. A missing file yields a fresh default
// container rather than an error so first runs need no setup step.
func LoadRoot(path string, warn func(string)) (*model.Root, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewRoot(), nil
		}
		return nil, fmt.Errorf("failed to read board file: %w", err)
	}

	var root model.Root
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse board file %s: %w", path, err)
	}
	sanitizeRoot(&root, warn)
	return &root, nil
}

// SaveRoot writes the container atomically: a temp file in the same
// directory followed by a rename, so a crash mid-write never leaves a
// truncated board file behind.
func SaveRoot(path string, root *model.Root) error {
	defer metrics.Timer(metrics.SaveWrite)()
	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode board file: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create board directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".corkboard-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp board file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp board file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp board file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace board file: %w", err)
	}
	return nil
}
