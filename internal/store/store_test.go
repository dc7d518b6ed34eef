package store

import (
	"context"

	"github.com/hyperengineering/portfolio/internal/types"
)

// mockStore is a compile-time check that the UserStore interface can be implemented.
type mockStore struct{}

var _ UserStore = (*mockStore)(nil)

func (m *mockStore) CreateUser(ctx context.Context, user types.User) error {
	return nil
}
func (m *mockStore) GetUser(ctx context.Context, email string) (*types.User, error) {
	return nil, ErrNotFound
}
func (m *mockStore) ListUsers(ctx context.Context) ([]types.User, error) {
	return nil, nil
}
func (m *mockStore) CountUsers(ctx context.Context) (int, error) {
	return 0, nil
}
func (m *mockStore) Close() error {
	return nil
}
