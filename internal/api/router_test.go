package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmanager/task-api/internal/api/handler"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
	"github.com/taskmanager/task-api/internal/core/service"
)

// memUsers is an in-memory credential store.
type memUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
	seq   int
	down  bool
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]*domain.User{}} }

func (m *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return nil, domain.ErrUserExists
		}
	}
	m.seq++
	cp := *u
	cp.ID = fmt.Sprintf("u%d", m.seq)
	m.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, fmt.Errorf("server selection timeout")
	}
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (m *memUsers) Update(_ context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
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
	out := *u
	return &out, nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUsers) ListExcludingRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.User
	for _, u := range m.users {
		if u.Role != role {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

// memTasks is an in-memory task store.
type memTasks struct {
	mu    sync.Mutex
	tasks map[string]*domain.Task
	seq   int
}

func newMemTasks() *memTasks { return &memTasks{tasks: map[string]*domain.Task{}} }

func (m *memTasks) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	cp := *t
	cp.ID = fmt.Sprintf("t%d", m.seq)
	m.tasks[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memTasks) match(f ports.TaskFilter) (*domain.Task, bool) {
	t, ok := m.tasks[f.ID]
	if !ok || (f.AssignedTo != "" && t.AssignedTo != f.AssignedTo) {
		return nil, false
	}
	if f.EditableBy != "" && !t.EditableBy(f.EditableBy) {
		return nil, false
	}
	return t, true
}

func (m *memTasks) FindOne(_ context.Context, f ports.TaskFilter) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.match(f)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	out := *t
	return &out, nil
}

func (m *memTasks) ListByAssignee(_ context.Context, userID string) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Task
	for _, t := range m.tasks {
		if t.AssignedTo == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memTasks) Update(_ context.Context, f ports.TaskFilter, upd domain.TaskUpdate) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.match(f)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.AssignedTo != nil {
		t.AssignedTo = *upd.AssignedTo
	}
	out := *t
	return &out, nil
}

func (m *memTasks) Delete(_ context.Context, f ports.TaskFilter) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.match(f)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	delete(m.tasks, t.ID)
	out := *t
	return &out, nil
}

type testServer struct {
	t     *testing.T
	srv   http.Handler
	users *memUsers
	auth  *service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()
	users := newMemUsers()
	tasks := newMemTasks()

	tokens, err := service.NewTokenService("router-test-secret-0123456789abcdef")
	require.NoError(t, err)
	hasher := service.NewPasswordHasher(4)
	authSvc := service.NewAuthService(users, tokens, hasher, log)

	e := NewRouter(Deps{
		Tokens:       tokens,
		Roles:        service.NewStoreRoleResolver(users),
		AuthService:  authSvc,
		UserService:  service.NewUserService(users, hasher, nil, log),
		TaskService:  service.NewTaskService(tasks, users, log),
		HealthChecks: map[string]handler.HealthCheck{"mongodb": func(context.Context) error { return nil }},
		Logger:       log,
		Registry:     prometheus.NewRegistry(),
	})
	return &testServer{t: t, srv: e, users: users, auth: authSvc}
}

func (s *testServer) do(method, path, token, body string) (int, map[string]any) {
	s.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.srv.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (s *testServer) login(username, password string) (string, string) {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/api/auth/login", "", fmt.Sprintf(`{"username":%q,"password":%q}`, username, password))
	require.Equal(s.t, http.StatusOK, code, body)
	user := body["user"].(map[string]any)
	return body["token"].(string), user["_id"].(string)
}

func TestRouter_RegisterLoginAndTasks(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(http.MethodPost, "/api/auth/register", "", `{"username":"alice","password":"pw1"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "User Created", body["message"])

	code, body = s.do(http.MethodPost, "/api/auth/register", "", `{"username":"alice","password":"pw2"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Username already exists", body["message"])

	code, body = s.do(http.MethodPost, "/api/auth/login", "", `{"username":"alice","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid Credentials", body["message"])

	token, aliceID := s.login("alice", "pw1")

	code, body = s.do(http.MethodPost, "/api/tasks/add-task", token, `{"title":"Ship it","assignedTo":"alice"}`)
	require.Equal(t, http.StatusCreated, code, body)
	task := body["task"].(map[string]any)
	assert.Equal(t, aliceID, task["assignedTo"])
	assert.Equal(t, "pending", task["status"])
	assert.Equal(t, "medium", task["priority"])

	code, body = s.do(http.MethodGet, "/api/tasks/task", token, "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["tasks"], 1)

	code, body = s.do(http.MethodPut, "/api/tasks/update-task/"+task["_id"].(string), token, `{"status":"complete"}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "complete", body["task"].(map[string]any)["status"])

	code, _ = s.do(http.MethodDelete, "/api/tasks/delete-task/"+task["_id"].(string), token, "")
	assert.Equal(t, http.StatusOK, code)
}

func TestRouter_LongPasswordsAreRejected(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	code, body := s.do(http.MethodPost, "/api/auth/register", "",
		fmt.Sprintf(`{"username":"alice","password":%q}`, strings.Repeat("a", 80)))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "password must be at most 72 characters", body["message"])

	// 40 characters but 80 bytes: passes the DTO check, stopped by the hasher.
	code, body = s.do(http.MethodPost, "/api/auth/register", "",
		fmt.Sprintf(`{"username":"alice","password":%q}`, strings.Repeat("é", 40)))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Password must be at most 72 bytes", body["message"])

	_, err := s.auth.BootstrapAdmin(ctx, "root", "rootpw")
	require.NoError(t, err)
	rootToken, _ := s.login("root", "rootpw")
	s.do(http.MethodPost, "/api/auth/register", "", `{"username":"bob","password":"pw"}`)
	_, bobID := s.login("bob", "pw")

	code, body = s.do(http.MethodPut, "/api/admin/update-user/"+bobID, rootToken,
		fmt.Sprintf(`{"password":%q}`, strings.Repeat("a", 80)))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "password must be at most 72 characters", body["message"])

	code, body = s.do(http.MethodPut, "/api/admin/update-user/"+bobID, rootToken,
		fmt.Sprintf(`{"password":%q}`, strings.Repeat("é", 40)))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Password must be at most 72 bytes", body["message"])

	s.login("bob", "pw")
}

func TestRouter_AuthBoundary(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(http.MethodGet, "/api/tasks/task", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "No token provided", body["message"])

	code, body = s.do(http.MethodGet, "/api/tasks/task", "garbage", "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Invalid credentials", body["message"])

	s.do(http.MethodPost, "/api/auth/register", "", `{"username":"bob","password":"pw"}`)
	token, _ := s.login("bob", "pw")

	code, body = s.do(http.MethodGet, "/api/admin/view-users", token, "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Admins only", body["message"])
}

func TestRouter_AdminDemotionTakesEffectImmediately(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.auth.BootstrapAdmin(ctx, "root", "rootpw")
	require.NoError(t, err)
	_, err = s.auth.BootstrapAdmin(ctx, "second", "secondpw")
	require.NoError(t, err)

	rootToken, _ := s.login("root", "rootpw")
	secondToken, secondID := s.login("second", "secondpw")

	code, _ := s.do(http.MethodGet, "/api/admin/view-users", secondToken, "")
	require.Equal(t, http.StatusOK, code)

	code, body := s.do(http.MethodPut, "/api/admin/update-user/"+secondID, rootToken, `{"role":"user"}`)
	require.Equal(t, http.StatusOK, code, body)

	// Same token, still unexpired, no longer admin.
	code, body = s.do(http.MethodGet, "/api/admin/view-users", secondToken, "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Admins only", body["message"])

	code, _ = s.do(http.MethodGet, "/api/tasks/task", secondToken, "")
	assert.Equal(t, http.StatusOK, code)
}

func TestRouter_DeletedUserAndStoreOutage(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.auth.BootstrapAdmin(ctx, "root", "rootpw")
	require.NoError(t, err)
	token, rootID := s.login("root", "rootpw")

	require.NoError(t, s.users.Delete(ctx, rootID))
	code, body := s.do(http.MethodGet, "/api/admin/view-users", token, "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Server Error", body["message"])

	_, err = s.auth.BootstrapAdmin(ctx, "root2", "rootpw")
	require.NoError(t, err)
	token, _ = s.login("root2", "rootpw")

	s.users.mu.Lock()
	s.users.down = true
	s.users.mu.Unlock()

	code, body = s.do(http.MethodGet, "/api/admin/view-users", token, "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Server Error", body["message"])
}

func TestRouter_OperationalRoutes(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "API is running", body["message"])

	code, body = s.do(http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, body = s.do(http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Not Found", body["message"])
}
