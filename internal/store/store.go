// Package store persists the canonical dataset as a single JSON document.
// The document is read once at run start and rewritten wholesale at run end;
// there are no partial in-place edits.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adreport/adreport-etl/internal/models"
)

type FileStore struct {
	path string
}

func New(path string) *FileStore { return &FileStore{path: path} }

func (s *FileStore) Path() string { return s.path }

// Load reads the persisted dataset. A missing file is not an error: the run
// starts from an empty dataset.
func (s *FileStore) Load() (*models.Dataset, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.NewDataset(models.Client{}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", s.path, err)
	}

	var d models.Dataset
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", s.path, err)
	}
	if d.Months == nil {
		d.Months = make(map[string]*models.MonthRecord)
	}
	return &d, nil
}

// Save writes the dataset atomically: the document lands under a temp name
// in the same directory and is renamed over the target, so a failed run can
// never leave a half-written file behind.
func (s *FileStore) Save(d *models.Dataset) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("store: create temp for %s: %w", s.path, err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		tmp.Close()
		return fmt.Errorf("store: encode %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp for %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("store: commit %s: %w", s.path, err)
	}
	return nil
}
