package cache

import (
	"sync"
)

// MemoryStore keeps the cache document in memory. State survives Close,
// so a new cache opened on the same store sees the last write. It is used
// by tests and by the "memory" backend.
type MemoryStore struct {
	mu     sync.Mutex
	data   []byte
	writes int
	opened bool

	// WriteErr, when set, is returned by every Write.
	WriteErr error
	// WriteHook, when set, runs inside Write before the data is stored.
	WriteHook func()
}

// NewMemoryStore creates a store holding data.
func NewMemoryStore(data []byte) *MemoryStore {
	return &MemoryStore{data: data}
}

// Open marks the store as opened.
func (s *MemoryStore) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = true
	return nil
}

// Load returns a copy of the stored document.
func (s *MemoryStore) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.data) == 0 {
		return nil, nil
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

// Write stores a copy of data.
func (s *MemoryStore) Write(data []byte) error {
	s.mu.Lock()
	hook, werr := s.WriteHook, s.WriteErr
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	if werr != nil {
		return werr
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.data = buf
	s.writes++
	s.mu.Unlock()
	return nil
}

// Close marks the store as closed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = false
	return nil
}

// Location returns "memory".
func (s *MemoryStore) Location() string {
	return "memory"
}

// Writes returns how many writes succeeded.
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Data returns a copy of the stored document.
func (s *MemoryStore) Data() []byte {
	data, _ := s.Load()
	return data
}

// SetWriteErr changes the error returned by Write.
func (s *MemoryStore) SetWriteErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.WriteErr = err
}

// SetWriteHook changes the hook run by Write.
func (s *MemoryStore) SetWriteHook(hook func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.WriteHook = hook
}

// Opened reports whether the store is open.
func (s *MemoryStore) Opened() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

var _ Store = (*MemoryStore)(nil)
