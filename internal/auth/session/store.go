// Package session caches identity provider tokens between calls and, for the
// file store, between process runs.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/brizzai/realtor-cli/internal/auth/models"
	"github.com/brizzai/realtor-cli/internal/config"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"
)

// Store keeps the current session. Load returns nil, nil when there is none.
type Store interface {
	Load() (*models.Session, error)
	Save(*models.Session) error
	Clear() error
}

// ChatSessions keeps the anonymous visitor chat session id
type ChatSessions interface {
	ChatSessionID() (string, error)
	SetChatSessionID(id string) error
}

// MemoryStore is a process-local Store
type MemoryStore struct {
	mu      sync.Mutex
	session *models.Session
	chatID  string
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, nil
	}
	s := *m.session
	return &s, nil
}

func (m *MemoryStore) Save(s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.session = &cp
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

func (m *MemoryStore) ChatSessionID() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.chatID == "" {
		m.chatID = uuid.NewString()
	}
	return m.chatID, nil
}

func (m *MemoryStore) SetChatSessionID(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chatID = id
	return nil
}

// document is the on-disk layout of a FileStore
type document struct {
	Auth          *models.Session `yaml:"auth,omitempty"`
	ChatSessionID string          `yaml:"chat_session_id,omitempty"`
}

// FileStore persists the session as YAML readable only by the owner
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore at path. The file is created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) read() (*document, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode session file %s: %w", f.path, err)
	}
	return &doc, nil
}

func (f *FileStore) write(doc *document) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Load() (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	return doc.Auth, nil
}

func (f *FileStore) Save(s *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil {
		// an unreadable file is replaced rather than blocking sign-in
		doc = &document{}
	}
	doc.Auth = s
	return f.write(doc)
}

// Clear drops the auth tokens and keeps the chat session id
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil {
		return os.Remove(f.path)
	}
	if doc.Auth == nil {
		return nil
	}
	doc.Auth = nil
	return f.write(doc)
}

// ChatSessionID returns the persisted chat session id, creating one if needed
func (f *FileStore) ChatSessionID() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil {
		return "", err
	}
	if doc.ChatSessionID != "" {
		return doc.ChatSessionID, nil
	}
	doc.ChatSessionID = uuid.NewString()
	if err := f.write(doc); err != nil {
		return "", err
	}
	return doc.ChatSessionID, nil
}

func (f *FileStore) SetChatSessionID(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil {
		return err
	}
	if doc.ChatSessionID == id {
		return nil
	}
	doc.ChatSessionID = id
	return f.write(doc)
}

func newConfiguredStore(cfg *config.Config) *FileStore {
	return NewFileStore(cfg.Session.Path)
}

// Module provides the file-backed session store
var Module = fx.Module("session",
	fx.Provide(
		newConfiguredStore,
		func(f *FileStore) Store { return f },
		func(f *FileStore) ChatSessions { return f },
	),
)
