package services

import (
	"sync"

	"github.com/google/uuid"

	"partyhub/apperr"
)

// Session binds an opaque bearer token to a player inside one game.
type Session struct {
	PlayerID string
	GameID   string
}

// SessionStore issues and resolves opaque session tokens. Implementations
// are injected into services and handlers rather than held as package state.
type SessionStore interface {
	Issue(playerID, gameID string) string
	Resolve(token string) (Session, error)
	Revoke(token string)
}

// memorySessions lives for the process lifetime only; tokens do not survive
// a restart and carry no TTL.
type memorySessions struct {
	mu      sync.RWMutex
	byToken map[string]Session
}

func NewMemorySessions() SessionStore {
	return &memorySessions{byToken: make(map[string]Session)}
}

func (s *memorySessions) Issue(playerID, gameID string) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.byToken[token] = Session{PlayerID: playerID, GameID: gameID}
	s.mu.Unlock()
	return token
}

func (s *memorySessions) Resolve(token string) (Session, error) {
	s.mu.RLock()
	sess, ok := s.byToken[token]
	s.mu.RUnlock()
	if !ok {
		return Session{}, apperr.Unauthorized("invalid or missing session token")
	}
	return sess, nil
}

func (s *memorySessions) Revoke(token string) {
	s.mu.Lock()
	delete(s.byToken, token)
	s.mu.Unlock()
}
