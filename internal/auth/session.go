package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ukydev/fleet-admin/internal/models"
)

// Session is the process-wide holder of the bearer credential and the signed
// in admin. It is written on login, read by every outgoing request and
// cleared on logout or authorization failure. The on-disk copy lets later
// console invocations reuse the login.
type Session struct {
	mu    sync.RWMutex
	path  string
	token string
	user  *models.User
	now   func() time.Time
}

type storedSession struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// NewSession creates a session persisted at path. An empty path keeps the
// session in memory only.
func NewSession(path string) *Session {
	return &Session{path: path, now: time.Now}
}

// Load restores a persisted session. A missing file is an empty session.
func (s *Session) Load() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}

	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		// A corrupt file is treated like a logout.
		return s.End()
	}

	s.mu.Lock()
	s.token = stored.Token
	s.user = stored.User
	s.mu.Unlock()
	return nil
}

// Begin stores a new credential after a successful login.
func (s *Session) Begin(token string, user models.User) error {
	if token == "" {
		return ErrInvalidToken
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	data, err := json.Marshal(storedSession{Token: token, User: &user})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// End clears the credential in memory and on disk.
func (s *Session) End() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

// Token returns the bearer credential, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed in user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// RequireAdmin is the gate in front of every protected command. A session
// held by a non-admin or carrying an expired token is cleared.
func (s *Session) RequireAdmin() (*models.User, error) {
	token := s.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	user := s.User()
	if !user.CanAccessConsole() {
		_ = s.End()
		return nil, ErrNotAdmin
	}

	if claims, err := ParseClaims(token); err == nil && claims.Expired(s.now()) {
		_ = s.End()
		return nil, ErrSessionExpired
	}

	return user, nil
}
