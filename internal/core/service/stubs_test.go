package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	seq     int
	findErr error // if set, every lookup returns it
	finds   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	c := cloneUser(user)
	c.ID = fmt.Sprintf("u%d", r.seq)
	r.byID[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubUserRepo) ListExcludingRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.byID {
		if u.Role != role {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// In-memory task repository
// ---------------------------------------------------------------------------

type stubTaskRepo struct {
	byID map[string]*domain.Task
	seq  int
	// beforeWrite runs at the start of Update and Delete, standing in for a
	// concurrent writer.
	beforeWrite func()
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{byID: make(map[string]*domain.Task)}
}

func cloneTask(t *domain.Task) *domain.Task {
	clone := *t
	return &clone
}

func (r *stubTaskRepo) match(f ports.TaskFilter) (*domain.Task, bool) {
	t, ok := r.byID[f.ID]
	if !ok {
		return nil, false
	}
	if f.AssignedTo != "" && t.AssignedTo != f.AssignedTo {
		return nil, false
	}
	if f.EditableBy != "" && !t.EditableBy(f.EditableBy) {
		return nil, false
	}
	return t, true
}

func (r *stubTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.seq++
	c := cloneTask(task)
	c.ID = fmt.Sprintf("t%d", r.seq)
	r.byID[c.ID] = c
	return cloneTask(c), nil
}

func (r *stubTaskRepo) FindOne(_ context.Context, f ports.TaskFilter) (*domain.Task, error) {
	t, ok := r.match(f)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *stubTaskRepo) ListByAssignee(_ context.Context, userID string) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, t := range r.byID {
		if t.AssignedTo == userID {
			out = append(out, cloneTask(t))
		}
	}
	return out, nil
}

func (r *stubTaskRepo) Update(_ context.Context, f ports.TaskFilter, upd domain.TaskUpdate) (*domain.Task, error) {
	if r.beforeWrite != nil {
		r.beforeWrite()
	}
	t, ok := r.match(f)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.DueDate != nil {
		t.DueDate = upd.DueDate
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.Priority != nil {
		t.Priority = *upd.Priority
	}
	if upd.AssignedTo != nil {
		t.AssignedTo = *upd.AssignedTo
	}
	t.UpdatedAt = time.Now().UTC()
	return cloneTask(t), nil
}

func (r *stubTaskRepo) Delete(_ context.Context, f ports.TaskFilter) (*domain.Task, error) {
	if r.beforeWrite != nil {
		r.beforeWrite()
	}
	t, ok := r.match(f)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	delete(r.byID, t.ID)
	return cloneTask(t), nil
}

// ---------------------------------------------------------------------------
// In-memory role cache
// ---------------------------------------------------------------------------

type stubRoleCache struct {
	roles         map[string]domain.Role
	getErr        error
	invalidateErr error
	invalidated   []string
	lastTTL       time.Duration
}

func newStubRoleCache() *stubRoleCache {
	return &stubRoleCache{roles: make(map[string]domain.Role)}
}

func (c *stubRoleCache) Get(_ context.Context, id string) (domain.Role, bool, error) {
	if c.getErr != nil {
		return "", false, c.getErr
	}
	r, ok := c.roles[id]
	return r, ok, nil
}

func (c *stubRoleCache) Set(_ context.Context, id string, role domain.Role, ttl time.Duration) error {
	c.roles[id] = role
	c.lastTTL = ttl
	return nil
}

func (c *stubRoleCache) Invalidate(_ context.Context, id string) error {
	c.invalidated = append(c.invalidated, id)
	if c.invalidateErr != nil {
		return c.invalidateErr
	}
	delete(c.roles, id)
	return nil
}

var errStoreDown = errors.New("connection refused")

// minCostHasher keeps bcrypt fast in tests.
var minCostHasher = NewPasswordHasher(4)
