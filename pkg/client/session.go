package client

import (
	"errors"
	"sync"
)

// ErrSessionInvalid is returned for calls made with a session the server rejected
var ErrSessionInvalid = errors.New("session is no longer valid")

// Session is one signed-in identity. Every call takes its session explicitly;
// a 401 invalidates only the session that received it.
type Session struct {
	mu      sync.RWMutex
	token   string
	invalid bool
}

// NewSession wraps a bearer token
func NewSession(token string) *Session {
	return &Session{token: token}
}

// Token returns the bearer token and whether it may still be used
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, !s.invalid && s.token != ""
}

// Valid reports whether the session can still be used
func (s *Session) Valid() bool {
	_, ok := s.Token()
	return ok
}

// Invalidate marks the session unusable; the client calls it on a 401
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.invalid = true
	s.mu.Unlock()
}
