// ABOUTME: Persistence for the session token and display name
// ABOUTME: Stores authToken/userName as JSON in the XDG config directory

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileName is the session file inside the config directory
const FileName = "session.json"

// Store loads and persists sessions
type Store interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// storedSession is the on-disk shape. Only these two values are persisted.
type storedSession struct {
	AuthToken string `json:"authToken"`
	UserName  string `json:"userName"`
}

// FileStore keeps the session in a JSON file
type FileStore struct {
	configDir string
}

// NewFileStore creates a file store rooted at configDir
func NewFileStore(configDir string) *FileStore {
	return &FileStore{configDir: configDir}
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/shelter-admin, falling back to ~/.config
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "shelter-admin")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "shelter-admin")
}

// Dir returns the directory holding the session file
func (fs *FileStore) Dir() string {
	return fs.configDir
}

// Path returns the session file path
func (fs *FileStore) Path() string {
	return filepath.Join(fs.configDir, FileName)
}

// Load reads the session from disk.
// A missing or unreadable JSON file is an unauthenticated session.
func (fs *FileStore) Load() (Session, error) {
	data, err := os.ReadFile(fs.Path())
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to read session: %w", err)
	}

	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return Session{}, nil
	}
	if stored.AuthToken == "" {
		return Session{}, nil
	}

	// Only admin sessions are ever written
	return Session{
		Token:    stored.AuthToken,
		UserName: stored.UserName,
		Role:     RoleAdmin,
	}, nil
}

// Save writes the session atomically with owner-only permissions
func (fs *FileStore) Save(s Session) error {
	if err := os.MkdirAll(fs.configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(storedSession{AuthToken: s.Token, UserName: s.UserName}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(fs.configDir, FileName+".*")
	if err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmpName, fs.Path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Clear deletes the session file
func (fs *FileStore) Clear() error {
	err := os.Remove(fs.Path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// MemoryStore keeps the session in memory
type MemoryStore struct {
	mu      sync.Mutex
	session Session
	saves   int
}

// NewMemoryStore creates a memory store seeded with s
func NewMemoryStore(s Session) *MemoryStore {
	return &MemoryStore{session: s}
}

// Load implements Store
func (ms *MemoryStore) Load() (Session, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.session, nil
}

// Save implements Store
func (ms *MemoryStore) Save(s Session) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.session = s
	ms.saves++
	return nil
}

// Clear implements Store
func (ms *MemoryStore) Clear() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.session = Session{}
	return nil
}

// Saves returns how many times Save was called
func (ms *MemoryStore) Saves() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.saves
}
