package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Storage keeps file bodies; metadata lives in Mongo.
type Storage interface {
	Save(name string, data []byte) error
	Path(name string) string
	Remove(name string) error
}

type LocalStorage struct {
	Dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &LocalStorage{Dir: dir}, nil
}

func (s *LocalStorage) Save(name string, data []byte) error {
	if err := os.WriteFile(s.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Path confines name to the upload directory.
func (s *LocalStorage) Path(name string) string {
	return filepath.Join(s.Dir, filepath.Base(name))
}

// Remove treats an already missing file as removed.
func (s *LocalStorage) Remove(name string) error {
	if err := os.Remove(s.Path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}
