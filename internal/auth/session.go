package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hyperengineering/portfolio/internal/types"
	"gopkg.in/yaml.v3"
)

// SessionStore persists the authentication state between runs.
type SessionStore interface {
	Load() (types.Session, error)
	Save(types.Session) error
	Clear() error
}

// FileSessionStore keeps the session in a YAML file readable only by its owner.
type FileSessionStore struct {
	path string
}

// NewFileSessionStore creates a store backed by path.
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

// Path returns the session file location.
func (s *FileSessionStore) Path() string {
	return s.path
}

// Load reads the session. A missing file is an empty session.
func (s *FileSessionStore) Load() (types.Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return types.Session{}, nil
	}
	if err != nil {
		return types.Session{}, fmt.Errorf("read session: %w", err)
	}

	var session types.Session
	if err := yaml.Unmarshal(data, &session); err != nil {
		return types.Session{}, fmt.Errorf("parse session: %w", err)
	}
	return session, nil
}

// Save writes the session with mode 0600, creating the directory if needed.
func (s *FileSessionStore) Save(session types.Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	data, err := yaml.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the session file. A missing file is not an error.
func (s *FileSessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// MemorySessionStore keeps the session in memory.
type MemorySessionStore struct {
	mu      sync.Mutex
	session types.Session
}

func (m *MemorySessionStore) Load() (types.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, nil
}

func (m *MemorySessionStore) Save(session types.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = session
	return nil
}

func (m *MemorySessionStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = types.Session{}
	return nil
}
