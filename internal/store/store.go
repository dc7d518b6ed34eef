package store

import (
	"context"

	"github.com/hyperengineering/portfolio/internal/types"
)

// UserStore defines the contract for the mock backend's registered users.
// Passwords are never stored.
type UserStore interface {
	CreateUser(ctx context.Context, user types.User) error
	GetUser(ctx context.Context, email string) (*types.User, error)
	ListUsers(ctx context.Context) ([]types.User, error)
	CountUsers(ctx context.Context) (int, error)
	Close() error
}
