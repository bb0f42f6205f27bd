package app

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// SessionState is what the route guard consumes. It is derived from the
// store, never stored directly.
type SessionState int

const (
	SessionChecking SessionState = iota
	SessionUnauthenticated
	SessionUser
	SessionAdmin
)

func (s SessionState) String() string {
	switch s {
	case SessionChecking:
		return "checking"
	case SessionUnauthenticated:
		return "unauthenticated"
	case SessionUser:
		return "user"
	case SessionAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Session is the single source of truth for the current identity. The
// server-issued cookie is the real credential; this store only holds the
// locally trusted profile copy, persisted as one JSON snapshot so it
// survives restarts.
//
// All mutations happen under the mutex together with the snapshot write, so
// a guard evaluation never observes a half-updated session.
type Session struct {
	mu           sync.RWMutex
	user         *User
	loading      bool
	hydrated     bool
	snapshotPath string
	invalidate   func(context.Context) error
	logger       *Logger
}

func NewSession(storageDir string, logger *Logger) *Session {
	return &Session{
		loading:      true,
		snapshotPath: filepath.Join(storageDir, "user.json"),
		logger:       logger,
	}
}

// SetInvalidator wires the backend session-invalidation call used by Logout.
// Kept as an injected func so the store stays testable without a client.
func (s *Session) SetInvalidator(fn func(context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidate = fn
}

// Hydrate runs exactly once. It adopts the persisted snapshot when present
// and valid; a corrupt or invalid snapshot is discarded. After the first
// call loading is false for the lifetime of the store.
func (s *Session) Hydrate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hydrated {
		return
	}
	s.hydrated = true
	s.loading = false

	data, err := os.ReadFile(s.snapshotPath)
	if err != nil {
		return
	}
	var u User
	if err := json.Unmarshal(data, &u); err != nil || u.Validate() != nil {
		s.logger.Warn("discarding invalid profile snapshot", map[string]interface{}{"path": s.snapshotPath})
		_ = os.Remove(s.snapshotPath)
		return
	}
	s.user = &u
}

// Login adopts a fully-formed profile as the current user and persists it.
// The profile must carry a valid role; the client never fabricates one.
func (s *Session) Login(u User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeSnapshot(u); err != nil {
		// Identity still holds for this process; only durability is lost.
		s.logger.Warn("failed to persist profile snapshot", map[string]interface{}{"error": err.Error()})
	}
	s.user = &u
	return nil
}

// Logout invalidates the server session best-effort, then unconditionally
// clears the local state. Idempotent: logging out while logged out only
// leaves the caller to navigate back to the login view.
func (s *Session) Logout(ctx context.Context) {
	s.mu.RLock()
	invalidate := s.invalidate
	s.mu.RUnlock()

	if invalidate != nil {
		if err := invalidate(ctx); err != nil {
			s.logger.Warn("session invalidation call failed", map[string]interface{}{"error": err.Error()})
		}
	}
	s.Clear()
}

// Clear wipes the local identity and snapshot without contacting the
// backend. The 401 interceptor uses this path: the server already considers
// the session dead.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	if err := os.Remove(s.snapshotPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove profile snapshot", map[string]interface{}{"error": err.Error()})
	}
}

// CurrentUser returns a copy of the profile, or nil.
func (s *Session) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *Session) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// State collapses the store into the value the guard decides on.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.loading:
		return SessionChecking
	case s.user == nil:
		return SessionUnauthenticated
	case s.user.Role == RoleAdmin:
		return SessionAdmin
	default:
		return SessionUser
	}
}

func (s *Session) writeSnapshot(u User) error {
	if err := os.MkdirAll(filepath.Dir(s.snapshotPath), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.snapshotPath, data, 0600)
}
