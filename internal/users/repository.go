package users

import (
	"context"

	"github.com/synergy-shm/synergy/internal/rbac"
)

// Repository is the user data source.
type Repository interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, input NewUser) (*User, error)
	UpdateLevel(ctx context.Context, id string, level rbac.Level) error
}
