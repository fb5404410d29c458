package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// CreateUserInput is what an admin supplies to add an account.
type CreateUserInput struct {
	Username string
	Password string
	Role     domain.Role
}

// UserService holds the admin-only user management use cases.
type UserService interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}
