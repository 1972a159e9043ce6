package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const sessionFileName = "session.json"

// SecureStore persists at most one session.
type SecureStore interface {
	// Save writes the session, replacing any previous one.
	Save(sess Session) error

	// Load returns the stored session or ErrNoSession.
	Load() (Session, error)

	// Delete removes the stored session. Deleting nothing is not an error.
	Delete() error
}

// FileStore keeps the session as a JSON file readable only by the owner.
type FileStore struct {
	dir string
}

// NewFileStore stores the session file under dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path() string {
	return filepath.Join(s.dir, sessionFileName)
}

// Save implements SecureStore. The directory is created 0700 and the file
// written 0600; tokens never become world readable.
func (s *FileStore) Save(sess Session) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.WriteFile(s.path(), data, 0600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// Load implements SecureStore.
func (s *FileStore) Load() (Session, error) {
	data, err := os.ReadFile(s.path())
	if os.IsNotExist(err) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("reading session file: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("decoding session file: %w", err)
	}
	return sess, nil
}

// Delete implements SecureStore.
func (s *FileStore) Delete() error {
	err := os.Remove(s.path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory SecureStore for tests and the mock
// environment.
type MemoryStore struct {
	mu   sync.Mutex
	sess *Session
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save implements SecureStore.
func (s *MemoryStore) Save(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = &sess
	return nil
}

// Load implements SecureStore.
func (s *MemoryStore) Load() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return Session{}, ErrNoSession
	}
	return *s.sess, nil
}

// Delete implements SecureStore.
func (s *MemoryStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = nil
	return nil
}
