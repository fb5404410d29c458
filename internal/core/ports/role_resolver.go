package ports

import (
	"context"
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// RoleResolver returns the role a subject holds right now.
// domain.ErrIdentityNotFound signals the subject no longer exists and
// domain.ErrStoreUnavailable that the store could not be consulted.
type RoleResolver interface {
	CurrentRole(ctx context.Context, subjectID string) (domain.Role, error)
}

// RoleCache stores resolved roles for a bounded time.
type RoleCache interface {
	Get(ctx context.Context, subjectID string) (domain.Role, bool, error)
	Set(ctx context.Context, subjectID string, role domain.Role, ttl time.Duration) error
	Invalidate(ctx context.Context, subjectID string) error
}
