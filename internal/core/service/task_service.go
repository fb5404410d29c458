package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

type TaskService struct {
	tasks  ports.TaskRepository
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewTaskService(tasks ports.TaskRepository, users ports.UserRepository, logger zerolog.Logger) *TaskService {
	return &TaskService{tasks: tasks, users: users, logger: logger}
}

// CreateTask creates a task for the user named by input.AssigneeUsername.
func (s *TaskService) CreateTask(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, error) {
	if strings.TrimSpace(input.AssigneeUsername) == "" {
		return nil, domain.ErrMissingFields
	}
	assignee, err := s.resolveAssignee(ctx, input.AssigneeUsername)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, assignee, input)
}

func (s *TaskService) ListMyTasks(ctx context.Context, subjectID string) ([]*domain.Task, error) {
	return s.tasks.ListByAssignee(ctx, subjectID)
}

// UpdateTask lets the assignee or creator edit a task. Tasks the caller may
// not edit are reported as not found.
func (s *TaskService) UpdateTask(ctx context.Context, subjectID, taskID string, input ports.UpdateTaskInput) (*domain.Task, error) {
	if _, err := s.ownedTask(ctx, subjectID, taskID); err != nil {
		return nil, err
	}
	upd, err := s.toUpdate(ctx, input)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.Update(ctx, ports.TaskFilter{ID: taskID, EditableBy: subjectID}, upd)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("task_id", taskID).Str("subject_id", subjectID).Msg("task updated")
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, subjectID, taskID string) (*domain.Task, error) {
	task, err := s.tasks.Delete(ctx, ports.TaskFilter{ID: taskID, EditableBy: subjectID})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("task_id", taskID).Str("subject_id", subjectID).Msg("task deleted")
	return task, nil
}

func (s *TaskService) ListUserTasks(ctx context.Context, userID string) ([]*domain.Task, error) {
	return s.tasks.ListByAssignee(ctx, userID)
}

// CreateUserTask assigns a new task to userID directly, ignoring AssigneeUsername.
func (s *TaskService) CreateUserTask(ctx context.Context, userID string, input ports.CreateTaskInput) (*domain.Task, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, user, input)
}

func (s *TaskService) UpdateUserTask(ctx context.Context, userID, taskID string, input ports.UpdateTaskInput) (*domain.Task, error) {
	upd, err := s.toUpdate(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.tasks.Update(ctx, ports.TaskFilter{ID: taskID, AssignedTo: userID}, upd)
}

func (s *TaskService) DeleteUserTask(ctx context.Context, userID, taskID string) error {
	_, err := s.tasks.Delete(ctx, ports.TaskFilter{ID: taskID, AssignedTo: userID})
	return err
}

func (s *TaskService) create(ctx context.Context, assignee *domain.User, input ports.CreateTaskInput) (*domain.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, domain.ErrMissingFields
	}

	now := time.Now().UTC()
	task := &domain.Task{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		DueDate:     input.DueDate,
		Status:      input.Status,
		Priority:    input.Priority,
		AssignedTo:  assignee.ID,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	task.ApplyDefaults()

	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		s.logger.Error().Err(err).Str("assigned_to", assignee.ID).Msg("failed to create task")
		return nil, err
	}

	s.logger.Info().Str("task_id", created.ID).Str("assigned_to", assignee.ID).Msg("task created")
	return created, nil
}

// ownedTask reports a task the subject may not edit as not found, before any
// assignee lookup can leak a different error.
func (s *TaskService) ownedTask(ctx context.Context, subjectID, taskID string) (*domain.Task, error) {
	return s.tasks.FindOne(ctx, ports.TaskFilter{ID: taskID, EditableBy: subjectID})
}

func (s *TaskService) resolveAssignee(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrAssigneeNotFound
		}
		return nil, fmt.Errorf("resolve assignee: %w", err)
	}
	return user, nil
}

func (s *TaskService) toUpdate(ctx context.Context, input ports.UpdateTaskInput) (domain.TaskUpdate, error) {
	upd := domain.TaskUpdate{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Status:      input.Status,
		Priority:    input.Priority,
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return domain.TaskUpdate{}, domain.ErrMissingFields
	}
	if input.AssigneeUsername != nil {
		assignee, err := s.resolveAssignee(ctx, *input.AssigneeUsername)
		if err != nil {
			return domain.TaskUpdate{}, err
		}
		upd.AssignedTo = &assignee.ID
	}
	return upd, nil
}
