package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/hyperengineering/portfolio/internal/store"
	"github.com/hyperengineering/portfolio/internal/types"
)

// memoryUsers is the default user table when no persistent store is configured.
type memoryUsers struct {
	mu    sync.Mutex
	users []types.User
}

var _ store.UserStore = (*memoryUsers)(nil)

func (m *memoryUsers) CreateUser(ctx context.Context, user types.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(user.Email)) {
			return store.ErrDuplicateUser
		}
	}
	m.users = append(m.users, types.User{Name: strings.TrimSpace(user.Name), Email: strings.TrimSpace(user.Email)})
	return nil
}

func (m *memoryUsers) GetUser(ctx context.Context, email string) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			found := u
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memoryUsers) ListUsers(ctx context.Context) ([]types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.User{}, m.users...), nil
}

func (m *memoryUsers) CountUsers(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *memoryUsers) Close() error {
	return nil
}
