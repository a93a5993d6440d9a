package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Session is the credential handed out after creating or joining a game.
// Token is opaque to everything except the issuing authority.
type Session struct {
	Token       string    `json:"token"`
	PlayerID    string    `json:"playerId"`
	GameID      string    `json:"gameId"`
	JoinCode    string    `json:"joinCode"`
	DisplayName string    `json:"displayName"`
	AvatarID    string    `json:"avatarId"`
	IsHost      bool      `json:"isHost"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Valid reports whether the session carries a credential.
func (s Session) Valid() bool {
	return s.Token != ""
}

// ErrEmptySession is returned when saving a session without a token.
var ErrEmptySession = errors.New("session has no token")

// Store holds the process-wide current session.
type Store interface {
	Load(ctx context.Context) (Session, bool, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the session in memory for the life of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	current Session
	set     bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(_ context.Context) (Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.set, nil
}

func (m *MemoryStore) Save(_ context.Context, s Session) error {
	if !s.Valid() {
		return ErrEmptySession
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
	m.set = true
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = Session{}
	m.set = false
	return nil
}
