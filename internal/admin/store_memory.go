package admin

import (
	"context"
	"strings"
	"sync"

	"datajanitor/pkg/platform/sentinel"
)

// InMemoryStore keeps service tests lightweight. It intentionally favors
// clarity over performance.
type InMemoryStore struct {
	mu    sync.RWMutex
	users []*User
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) ListByRole(_ context.Context, role string) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*User
	for _, u := range s.users {
		if strings.EqualFold(u.Role, role) {
			c := *u
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *InMemoryStore) FindByUsernameOrEmail(_ context.Context, username, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username || u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return sentinel.ErrConflict
		}
	}
	c := *u
	s.users = append(s.users, &c)
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			existing.UserID = u.UserID
			existing.Email = u.Email
			existing.Role = u.Role
			existing.IsActive = u.IsActive
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemoryStore) SweepRole(_ context.Context, role string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, u := range s.users {
		if strings.EqualFold(u.Role, role) && (u.Role != role || !u.IsActive) {
			u.Role = role
			u.IsActive = true
			n++
		}
	}
	return n, nil
}
