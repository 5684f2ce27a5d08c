package identity

import (
	"context"
	"sync"
)

// UserSession binds an authenticated identity to a transport-level session.
// A session holds at most one user id; absence means anonymous.
//
// Implementations wrap whatever the transport uses to track a caller:
// an in-process struct (MemorySession), a signed cookie (the fiber
// controller's JWT sessions), or an opaque id resolved through a
// SessionStore (StoreSession).
type UserSession interface {
	// GetUser returns the bound user id, or false when anonymous.
	GetUser(ctx context.Context) (string, bool)

	// SetUser binds the session to a user id, replacing any prior binding.
	SetUser(ctx context.Context, userID string) error

	// ClearUser drops the binding. Clearing an anonymous session is a no-op.
	ClearUser(ctx context.Context) error
}

// MemorySession is an in-process UserSession, used by embedded transports
// and tests. Safe for concurrent use.
type MemorySession struct {
	mu     sync.Mutex
	userID string
}

// NewMemorySession returns an anonymous in-process session.
func NewMemorySession() *MemorySession {
	return &MemorySession{}
}

func (s *MemorySession) GetUser(ctx context.Context) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.userID != ""
}

func (s *MemorySession) SetUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	return nil
}

func (s *MemorySession) ClearUser(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = ""
	return nil
}

var _ UserSession = (*MemorySession)(nil)
