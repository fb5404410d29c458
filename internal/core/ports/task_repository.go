package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// TaskFilter scopes single-task lookups. Empty fields match anything.
// EditableBy keeps only tasks the subject is assigned to or created, so the
// ownership check and the write happen in one store operation.
type TaskFilter struct {
	ID         string
	AssignedTo string
	EditableBy string
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	FindOne(ctx context.Context, filter TaskFilter) (*domain.Task, error)
	ListByAssignee(ctx context.Context, userID string) ([]*domain.Task, error)
	// Update applies upd to the task matching filter and returns the new version.
	Update(ctx context.Context, filter TaskFilter, upd domain.TaskUpdate) (*domain.Task, error)
	// Delete removes the task matching filter and returns the removed document.
	Delete(ctx context.Context, filter TaskFilter) (*domain.Task, error)
}
