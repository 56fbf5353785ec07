package cache

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the cache document in a single JSON file.
//
// The file handle stays open between writes. Each Write truncates the file,
// writes the new document and syncs it. This is not an atomic replace: a
// crash between truncate and sync can leave an empty file, which the next
// Init treats as an empty cache.
type FileStore struct {
	path string

	mu sync.Mutex
	f  *os.File
}

// NewFileStore creates a store for path. Nothing is touched until Open.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Open creates the parent directories and the file if they do not exist.
func (s *FileStore) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE, 0o600) // #nosec G304 - path is derived from the cache name
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	s.f = f
	return nil
}

// Load reads the whole file. An empty file yields nil.
func (s *FileStore) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return nil, os.ErrClosed
	}

	info, err := s.f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	if info.Size() == 0 {
		return nil, nil
	}

	data, err := io.ReadAll(io.NewSectionReader(s.f, 0, info.Size()))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// Write replaces the file content with data and syncs it to disk.
func (s *FileStore) Write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return os.ErrClosed
	}

	if err := s.f.Truncate(0); err != nil {
		return fmt.Errorf("truncating file: %w", err)
	}
	if _, err := s.f.WriteAt(data, 0); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("syncing file: %w", err)
	}
	return nil
}

// Close closes the file handle. Closing twice is not an error.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}

// Location returns the file path.
func (s *FileStore) Location() string {
	return s.path
}

var _ Store = (*FileStore)(nil)
