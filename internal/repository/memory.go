package repository

import (
	"context"
	"sync"

	"github.com/atinyakov/AuthPortal/internal/common"
	"github.com/atinyakov/AuthPortal/internal/models"
)

// MemoryStore keeps users and sessions in process memory.
// It satisfies both the user and the session repository contracts and is
// used by tests and by the server's -storage memory mode.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]models.User
	sessions map[string]models.Session
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]models.User),
		sessions: make(map[string]models.Session),
	}
}

func (m *MemoryStore) UserExists(_ context.Context, username string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.users[username]
	return ok, nil
}

func (m *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Username]; ok {
		return common.ErrUserExists
	}
	m.users[user.Username] = *user
	return nil
}

func (m *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

// DeleteAllUsers drops every user and every session.
func (m *MemoryStore) DeleteAllUsers(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.users)
	clear(m.sessions)
	return nil
}

func (m *MemoryStore) CreateSession(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = *s
	return nil
}

func (m *MemoryStore) GetSession(_ context.Context, token string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &s, nil
}

// DeleteAllSessions drops every session.
func (m *MemoryStore) DeleteAllSessions(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.sessions)
	return nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}
