package api

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// TokenScope distinguishes the two bearer tokens the client may hold.
type TokenScope string

const (
	ScopeUser  TokenScope = "user"
	ScopeAdmin TokenScope = "admin"
)

// TokenStore holds the two opaque token strings. Implementations must be safe
// for concurrent use.
type TokenStore interface {
	Token(scope TokenScope) string
	SetToken(scope TokenScope, token string) error
	ClearToken(scope TokenScope) error
}

// MemoryTokenStore keeps tokens in memory only. Suitable for tests and for
// sessions that should not outlive the process.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[TokenScope]string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[TokenScope]string)}
}

func (s *MemoryTokenStore) Token(scope TokenScope) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens[scope]
}

func (s *MemoryTokenStore) SetToken(scope TokenScope, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[scope] = token
	return nil
}

func (s *MemoryTokenStore) ClearToken(scope TokenScope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, scope)
	return nil
}

// FileTokenStore persists tokens to a JSON file so a session can be restored
// across runs. Only the two opaque strings are stored.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

type tokenFile struct {
	UserToken  string `json:"token,omitempty"`
	AdminToken string `json:"adminToken,omitempty"`
}

func (s *FileTokenStore) load() tokenFile {
	var tf tokenFile
	data, err := os.ReadFile(s.path)
	if err != nil {
		return tf
	}
	if err := json.Unmarshal(data, &tf); err != nil {
		// A corrupt token file reads as empty; the next save rewrites it.
		return tokenFile{}
	}
	return tf
}

func (s *FileTokenStore) save(tf tokenFile) error {
	data, err := json.Marshal(tf)
	if err != nil {
		return fmt.Errorf("failed to encode token file: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Token(scope TokenScope) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tf := s.load()
	if scope == ScopeAdmin {
		return tf.AdminToken
	}
	return tf.UserToken
}

func (s *FileTokenStore) SetToken(scope TokenScope, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tf := s.load()
	if scope == ScopeAdmin {
		tf.AdminToken = token
	} else {
		tf.UserToken = token
	}
	return s.save(tf)
}

func (s *FileTokenStore) ClearToken(scope TokenScope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tf := s.load()
	if scope == ScopeAdmin {
		tf.AdminToken = ""
	} else {
		tf.UserToken = ""
	}
	return s.save(tf)
}
