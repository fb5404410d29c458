package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/taskmanager/task-api/internal/api/middleware"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, username, password string) (*domain.User, error)
	loginFn    func(ctx context.Context, username, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	return s.registerFn(ctx, username, password)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

type stubUserService struct {
	listFn   func(ctx context.Context) ([]*domain.User, error)
	createFn func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error)
	updateFn func(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubUserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, in)
}

func (s *stubUserService) UpdateUser(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	return s.updateFn(ctx, id, upd)
}

func (s *stubUserService) DeleteUser(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

// stubTaskService only implements what a test sets; unset methods panic on a nil func.
type stubTaskService struct {
	createFn         func(ctx context.Context, in ports.CreateTaskInput) (*domain.Task, error)
	listMineFn       func(ctx context.Context, subjectID string) ([]*domain.Task, error)
	updateFn         func(ctx context.Context, subjectID, taskID string, in ports.UpdateTaskInput) (*domain.Task, error)
	deleteFn         func(ctx context.Context, subjectID, taskID string) (*domain.Task, error)
	listUserFn       func(ctx context.Context, userID string) ([]*domain.Task, error)
	createUserTaskFn func(ctx context.Context, userID string, in ports.CreateTaskInput) (*domain.Task, error)
	updateUserTaskFn func(ctx context.Context, userID, taskID string, in ports.UpdateTaskInput) (*domain.Task, error)
	deleteUserTaskFn func(ctx context.Context, userID, taskID string) error
}

func (s *stubTaskService) CreateTask(ctx context.Context, in ports.CreateTaskInput) (*domain.Task, error) {
	return s.createFn(ctx, in)
}

func (s *stubTaskService) ListMyTasks(ctx context.Context, subjectID string) ([]*domain.Task, error) {
	return s.listMineFn(ctx, subjectID)
}

func (s *stubTaskService) UpdateTask(ctx context.Context, subjectID, taskID string, in ports.UpdateTaskInput) (*domain.Task, error) {
	return s.updateFn(ctx, subjectID, taskID, in)
}

func (s *stubTaskService) DeleteTask(ctx context.Context, subjectID, taskID string) (*domain.Task, error) {
	return s.deleteFn(ctx, subjectID, taskID)
}

func (s *stubTaskService) ListUserTasks(ctx context.Context, userID string) ([]*domain.Task, error) {
	return s.listUserFn(ctx, userID)
}

func (s *stubTaskService) CreateUserTask(ctx context.Context, userID string, in ports.CreateTaskInput) (*domain.Task, error) {
	return s.createUserTaskFn(ctx, userID, in)
}

func (s *stubTaskService) UpdateUserTask(ctx context.Context, userID, taskID string, in ports.UpdateTaskInput) (*domain.Task, error) {
	return s.updateUserTaskFn(ctx, userID, taskID, in)
}

func (s *stubTaskService) DeleteUserTask(ctx context.Context, userID, taskID string) error {
	return s.deleteUserTaskFn(ctx, userID, taskID)
}

// request describes one handler invocation.
type request struct {
	method string
	target string
	body   string
	caller string // subject ID attached as if by Auth; empty means anonymous
	params map[string]string
}

func newContext(r request) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(r.method, r.target, strings.NewReader(r.body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if r.caller != "" {
		req = req.WithContext(middleware.WithIdentity(req.Context(), domain.Identity{
			SubjectID:   r.caller,
			ClaimedRole: domain.RoleUser,
		}))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if len(r.params) > 0 {
		names := make([]string, 0, len(r.params))
		values := make([]string, 0, len(r.params))
		for k, v := range r.params {
			names = append(names, k)
			values = append(values, v)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}
