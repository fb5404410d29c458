package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create inserts a new user and returns it with its generated ID.
	// Returns domain.ErrUserExists when the username is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Update applies the non-nil fields of upd and returns the updated record.
	Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	// ListExcludingRole returns every user whose role differs from role.
	ListExcludingRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
}
