package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Purav2003/epimech-admin/internal/models"
	"github.com/Purav2003/epimech-admin/internal/store"
)

type UserStore struct {
	mu    sync.RWMutex
	users map[string]models.User
	now   func() time.Time
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]models.User), now: time.Now}
}

func (s *UserStore) CreateUser(_ context.Context, u models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return nil, store.ErrConflict
		}
	}
	now := s.now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = u
	return &u, nil
}

func (s *UserStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *UserStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) UpdateUser(_ context.Context, u models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	for id, other := range s.users {
		if id != u.ID && other.Username == u.Username {
			return nil, store.ErrConflict
		}
	}
	cur.Username = u.Username
	cur.Email = u.Email
	cur.Password = u.Password
	cur.UpdatedAt = s.now().UTC()
	s.users[u.ID] = cur
	return &cur, nil
}
