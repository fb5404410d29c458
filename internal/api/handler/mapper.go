package handler

import (
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateTaskInput(req createTaskRequest, createdBy string) ports.CreateTaskInput {
	return ports.CreateTaskInput{
		Title:            req.Title,
		Description:      req.Description,
		Status:           domain.TaskStatus(req.Status),
		Priority:         domain.TaskPriority(req.Priority),
		DueDate:          req.DueDate.ptr(),
		AssigneeUsername: req.AssignedTo,
		CreatedBy:        createdBy,
	}
}

func toUpdateTaskInput(req updateTaskRequest) ports.UpdateTaskInput {
	in := ports.UpdateTaskInput{
		Title:            req.Title,
		Description:      req.Description,
		DueDate:          req.DueDate.ptr(),
		AssigneeUsername: req.AssignedTo,
	}
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		in.Status = &s
	}
	if req.Priority != nil {
		p := domain.TaskPriority(*req.Priority)
		in.Priority = &p
	}
	return in
}

func toUserUpdate(req updateUserRequest) domain.UserUpdate {
	upd := domain.UserUpdate{
		Username: req.Username,
		Password: req.Password,
	}
	if req.Role != nil {
		r := domain.Role(*req.Role)
		upd.Role = &r
	}
	return upd
}

// nonNilUsers and nonNilTasks keep list responses as [] rather than null.
func nonNilUsers(users []*domain.User) []*domain.User {
	if users == nil {
		return []*domain.User{}
	}
	return users
}

func nonNilTasks(tasks []*domain.Task) []*domain.Task {
	if tasks == nil {
		return []*domain.Task{}
	}
	return tasks
}
