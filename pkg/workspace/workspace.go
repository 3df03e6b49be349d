// Package workspace is the file-system side of the corkboard: cards
// reference files relative to a workspace root, and everything the rest of
// the system does with those files (previews, contents, renames, listing
// for the picker) goes through here.
package workspace

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MaxContentsBytes bounds a full-content read. Cards reference notes, not
// archives; anything bigger is truncated.
const MaxContentsBytes = 1024 * 1024

// CardExtensions are the file types offered by the picker.
var CardExtensions = []string{".md", ".markdown", ".txt"}

// ErrOutsideRoot is returned for paths that escape the workspace root.
var ErrOutsideRoot = fmt.Errorf("path escapes the workspace root")

// Workspace provides file access rooted at a directory. All card paths are
// relative to the root; absolute or escaping paths are rejected.
type Workspace struct {
	root string
}

// New creates a workspace over the given root directory.
func New(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", abs)
	}
	return &Workspace{root: abs}, nil
}

// Root returns the absolute workspace root.
func (w *Workspace) Root() string { return w.root }

// resolve turns a card path into an absolute path, rejecting escapes.
func (w *Workspace) resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		return "", ErrOutsideRoot
	}
	clean := filepath.Clean(path)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return filepath.Join(w.root, clean), nil
}

// Exists reports whether the card path resolves to an existing file.
func (w *Workspace) Exists(path string) bool {
	abs, err := w.resolve(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(abs)
	return err == nil
}

// Rename moves a file within the workspace.
func (w *Workspace) Rename(oldPath, newPath string) error {
	oldAbs, err := w.resolve(oldPath)
	if err != nil {
		return err
	}
	newAbs, err := w.resolve(newPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(newAbs), 0o755); err != nil {
		return fmt.Errorf("failed to create target directory: %w", err)
	}
	return os.Rename(oldAbs, newAbs)
}

// Contents returns the file's full text, truncated at MaxContentsBytes.
func (w *Workspace) Contents(path string) (string, error) {
	abs, err := w.resolve(path)
	if err != nil {
		return "", err
	}
	f, err := os.Open(abs)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxContentsBytes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Create writes a new empty card file. Used when a card is added for a file
// that does not exist yet.
func (w *Workspace) Create(path string) error {
	abs, err := w.resolve(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return err
	}
	return os.WriteFile(abs, nil, 0o644)
}

// List walks the workspace and returns card-eligible files as sorted
// root-relative paths. Hidden directories are skipped.
func (w *Workspace) List() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(w.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if p != w.root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		for _, want := range CardExtensions {
			if ext == want {
				rel, err := filepath.Rel(w.root, p)
				if err != nil {
					return err
				}
				paths = append(paths, rel)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
