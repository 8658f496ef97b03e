package jobs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStore writes workbooks into a managed directory as <jobID>.xlsx.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) PathFor(jobID string) string {
	return filepath.Join(s.Dir, jobID+".xlsx")
}

// Save writes data for jobID and returns the file path.
func (s *FileStore) Save(jobID string, data []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}
	path := s.PathFor(jobID)
	if err := WriteFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// Contains reports whether path lies inside the managed directory.
func (s *FileStore) Contains(path string) bool {
	dir, err := filepath.Abs(s.Dir)
	if err != nil {
		return false
	}
	p, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(dir, p)
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Remove deletes a managed file. A file that is already gone is reported
// with fs.ErrNotExist.
func (s *FileStore) Remove(path string) error {
	if !s.Contains(path) {
		return fmt.Errorf("refusing to remove %s outside %s", path, s.Dir)
	}
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, fs.ErrNotExist)
	}
	return err
}

// WriteFile replaces path atomically via a temp file in the same directory.
func WriteFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".kte-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
