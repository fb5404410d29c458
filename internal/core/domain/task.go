package domain

import "time"

type TaskStatus string

const (
	TaskPending  TaskStatus = "pending"
	TaskComplete TaskStatus = "complete"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Task is a unit of work assigned to a single user.
type Task struct {
	ID          string       `json:"_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	AssignedTo  string       `json:"assignedTo"`
	CreatedBy   string       `json:"createdBy,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// ApplyDefaults fills status and priority when the caller left them empty.
func (t *Task) ApplyDefaults() {
	if t.Status == "" {
		t.Status = TaskPending
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
}

// EditableBy reports whether the subject may modify the task without admin rights.
func (t *Task) EditableBy(subjectID string) bool {
	return subjectID != "" && (t.AssignedTo == subjectID || t.CreatedBy == subjectID)
}

// TaskUpdate carries a partial update. Nil fields are left untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Status      *TaskStatus
	Priority    *TaskPriority
	AssignedTo  *string
}
