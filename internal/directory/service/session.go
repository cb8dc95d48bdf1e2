package service

import (
	"sync"

	"github.com/aussiebroadwan/directory/internal/directory/domain"
	"github.com/aussiebroadwan/directory/pkg/idx"
)

// Session holds the user signed in through it. The zero value is a
// signed-out session. A Session is safe for concurrent use; when two
// sign-ins race, the one that finishes last wins.
type Session struct {
	mu   sync.RWMutex
	id   string
	user *domain.User
}

func NewSession() *Session { return &Session{} }

// ID returns the current session id, or "" when signed out. Every sign-in
// gets a fresh id.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// User returns a copy of the signed-in user.
func (s *Session) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

func (s *Session) SignedIn() bool {
	_, ok := s.User()
	return ok
}

// Require returns the signed-in user or ErrNoSession.
func (s *Session) Require() (domain.User, error) {
	if s == nil {
		return domain.User{}, ErrNoSession
	}
	u, ok := s.User()
	if !ok {
		return domain.User{}, ErrNoSession
	}
	return u, nil
}

// RequireAdmin returns the signed-in user when it holds the admin role.
func (s *Session) RequireAdmin() (domain.User, error) {
	u, err := s.Require()
	if err != nil {
		return domain.User{}, err
	}
	if !u.IsAdmin() {
		return domain.User{}, ErrPermissionDenied
	}
	return u, nil
}

// start signs u in under a new session id.
func (s *Session) start(u domain.User) string {
	return s.resume(idx.New().String(), u)
}

// resume signs u in under an existing session id.
func (s *Session) resume(id string, u domain.User) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	s.user = &u
	return id
}

// refresh replaces the cached user record if u is still the one signed in.
func (s *Session) refresh(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != nil && s.user.ID == u.ID {
		s.user = &u
	}
}

func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = ""
	s.user = nil
}
