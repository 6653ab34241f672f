package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/coachkit/livechat/internal/domain"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrBadSessionRecord = errors.New("malformed session record")
)

// SessionStore is the external collaborator holding live web sessions.
// Lookup is the only operation this subsystem needs: one call per
// handshake attempt. A miss must be ErrSessionNotFound.
type SessionStore interface {
	Lookup(ctx context.Context, sessionID string) (domain.Session, error)
}

// MemoryStore is an in-process SessionStore for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]domain.Session)}
}

func (s *MemoryStore) Put(sessionID string, sess domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = sess
}

func (s *MemoryStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *MemoryStore) Lookup(_ context.Context, sessionID string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return domain.Session{}, ErrSessionNotFound
	}
	return sess, nil
}
