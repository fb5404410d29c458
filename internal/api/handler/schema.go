package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// --- Auth ---

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password" validate:"max=72"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// --- Admin users ---

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password" validate:"max=72"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password" validate:"omitempty,max=72"`
	Role     *string `json:"role"`
}

type usersResponse struct {
	Users []*domain.User `json:"users"`
}

type userMessageResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

// --- Tasks ---

// dateValue accepts RFC 3339 timestamps and plain YYYY-MM-DD dates, which is
// what HTML date inputs submit.
type dateValue struct {
	time.Time
}

func (d *dateValue) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func (d *dateValue) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

type createTaskRequest struct {
	Title       string     `json:"title"       validate:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"      validate:"omitempty,oneof=pending complete"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=low medium high"`
	DueDate     *dateValue `json:"dueDate"`
	// AssignedTo is a username. Ignored on admin routes, where the user comes from the path.
	AssignedTo string `json:"assignedTo"`
}

type updateTaskRequest struct {
	Title       *string    `json:"title"       validate:"omitempty,min=1"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"      validate:"omitempty,oneof=pending complete"`
	Priority    *string    `json:"priority"    validate:"omitempty,oneof=low medium high"`
	DueDate     *dateValue `json:"dueDate"`
	AssignedTo  *string    `json:"assignedTo"`
}

type tasksResponse struct {
	Tasks []*domain.Task `json:"tasks"`
}

type taskMessageResponse struct {
	Message string       `json:"message"`
	Task    *domain.Task `json:"task,omitempty"`
}
