package ports

import (
	"context"
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// CreateTaskInput carries the fields accepted when creating a task.
// AssigneeUsername is resolved to a user ID by the service.
type CreateTaskInput struct {
	Title            string
	Description      string
	Status           domain.TaskStatus
	Priority         domain.TaskPriority
	DueDate          *time.Time
	AssigneeUsername string
	CreatedBy        string
}

// UpdateTaskInput is a partial update. AssigneeUsername, when set, is resolved
// to a user ID by the service.
type UpdateTaskInput struct {
	Title            *string
	Description      *string
	Status           *domain.TaskStatus
	Priority         *domain.TaskPriority
	DueDate          *time.Time
	AssigneeUsername *string
}

// TaskService defines task use cases for regular users and admins.
type TaskService interface {
	// Caller-scoped operations.
	CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error)
	ListMyTasks(ctx context.Context, subjectID string) ([]*domain.Task, error)
	UpdateTask(ctx context.Context, subjectID, taskID string, input UpdateTaskInput) (*domain.Task, error)
	DeleteTask(ctx context.Context, subjectID, taskID string) (*domain.Task, error)

	// Admin operations on a specific user's tasks.
	ListUserTasks(ctx context.Context, userID string) ([]*domain.Task, error)
	CreateUserTask(ctx context.Context, userID string, input CreateTaskInput) (*domain.Task, error)
	UpdateUserTask(ctx context.Context, userID, taskID string, input UpdateTaskInput) (*domain.Task, error)
	DeleteUserTask(ctx context.Context, userID, taskID string) error
}
