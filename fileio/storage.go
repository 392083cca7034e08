package fileio

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/avast/retry-go"
	"github.com/gofrs/flock"
)

// Whole file storage on the local filesystem (sd card or a host folder).
// Writes land atomically through a temp file, serialized with a sibling
// .lock file so two menu instances never interleave a cache write.
type OSStorage struct {
	openAttempts uint
}

func NewOSStorage() *OSStorage {
	return &OSStorage{openAttempts: 3}
}

// Read the whole file, a missing file is reported as fs.ErrNotExist
func (s *OSStorage) ReadFile(path string) ([]byte, error) {
	file, err := s.open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

func (s *OSStorage) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent folder: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock %v: %w", path, err)
	}
	defer lock.Unlock()

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (s *OSStorage) EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// sd card reads fail spuriously right after mount, retry everything but a
// missing file
func (s *OSStorage) open(path string) (*os.File, error) {
	var file *os.File
	err := retry.Do(
		func() error {
			var openErr error
			file, openErr = os.Open(path)
			return openErr
		},
		retry.Attempts(s.openAttempts),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, fs.ErrPermission)
		}),
		retry.LastErrorOnly(true),
	)
	return file, err
}
