// Package pathutil validates caller-influenced filesystem locations.
//
// The planning directory is configurable, and its documents are written with
// whatever privileges the server process holds, so every configured location
// is confined to the project root before use.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveWithin resolves dir relative to projectRoot and verifies the result
// stays inside projectRoot once symlinks are resolved. An absolute dir is
// accepted but validated the same way.
//
// Returns an error when dir is empty, contains a null byte, or escapes
// projectRoot (including via a symlink).
func ResolveWithin(projectRoot, dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.Contains(dir, "\x00") {
		return "", fmt.Errorf("path contains null byte")
	}

	candidate := dir
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(projectRoot, candidate)
	}
	candidate = filepath.Clean(candidate)

	resolved, err := resolveSymlinks(candidate)
	if err != nil {
		return "", err
	}

	rootResolved, err := filepath.EvalSymlinks(projectRoot)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project root: %w", err)
	}

	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes project root: %s", dir)
	}

	return resolved, nil
}

// resolveSymlinks evaluates symlinks for path even when path (or some of its
// parents) does not exist yet: the deepest existing ancestor is resolved and
// the not-yet-created remainder is rejoined onto it.
func resolveSymlinks(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to resolve symlinks: %w", err)
	}

	current := path
	var pending []string
	for {
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("no existing parent directory for %s", path)
		}
		pending = append(pending, filepath.Base(current))
		current = parent

		if _, statErr := os.Stat(current); statErr == nil {
			resolved, err := filepath.EvalSymlinks(current)
			if err != nil {
				return "", fmt.Errorf("failed to resolve existing parent: %w", err)
			}
			for i := len(pending) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, pending[i])
			}
			return resolved, nil
		}
	}
}
