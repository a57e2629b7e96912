package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/erauner/Software-planning-mcp/internal/gitutil"
)

// fileStore keeps one partition document as a single JSON file under the
// project's planning directory, one file per sanitized branch name. After
// Init the in-memory document is authoritative; every Store rewrites the
// file whole via a temp file and atomic rename. There is no file locking:
// concurrent processes targeting the same path race on last-writer-wins.
type fileStore struct {
	path        string
	projectPath string
	branch      string

	data *StorageData
}

// NewFileBackend returns a Backend persisting the (projectPath, branch)
// partition at <planningDir>/<sanitized-branch>.todos.json. Goals are not
// stamped with repository identity in file mode; the document's own branch
// and projectPath fields describe it.
func NewFileBackend(planningDir, projectPath, branch string) *DocumentBackend {
	store := &fileStore{
		path:        filepath.Join(planningDir, gitutil.SanitizeBranchName(branch)+".todos.json"),
		projectPath: projectPath,
		branch:      branch,
	}
	return NewDocumentBackend(store, "", "")
}

// Init ensures the planning directory exists and reads the existing
// document. A missing or unparseable file at this point is treated as first
// use: a fresh empty document is written. Calling Init again is a no-op once
// a document is loaded.
func (s *fileStore) Init(ctx context.Context) error {
	if s.data != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create planning directory: %w", err)
	}

	raw, err := os.ReadFile(s.path)
	if err == nil {
		var data StorageData
		if jsonErr := json.Unmarshal(raw, &data); jsonErr == nil {
			data.normalize()
			s.data = &data
			return nil
		}
		// Unreadable document at first read: start fresh.
	}

	s.data = NewStorageData(s.branch, s.projectPath)
	return s.persist()
}

func (s *fileStore) Load(ctx context.Context) (*StorageData, error) {
	if s.data == nil {
		if err := s.Init(ctx); err != nil {
			return nil, err
		}
	}
	return s.data, nil
}

func (s *fileStore) Store(ctx context.Context, data *StorageData) error {
	s.data = data
	return s.persist()
}

// persist writes the whole document with 2-space indentation and a trailing
// newline, using a temp file in the same directory and os.Rename so a
// crashed write never leaves a truncated document behind.
func (s *fileStore) persist() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal partition document: %w", err)
	}
	raw = append(raw, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(raw)
	closeErr := tmp.Close()
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return writeErr
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return closeErr
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
