package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/metrics"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// AdminHandler serves /api/admin. Every route is mounted behind Auth and
// RequireAdmin, so handlers here never check roles themselves.
type AdminHandler struct {
	users ports.UserService
	tasks ports.TaskService
}

func NewAdminHandler(users ports.UserService, tasks ports.TaskService) *AdminHandler {
	return &AdminHandler{users: users, tasks: tasks}
}

// ListUsers handles GET /api/admin/view-users.
//
// @Summary      List non-admin users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  usersResponse
// @Failure      401  {object}  messageResponse
// @Failure      403  {object}  messageResponse
// @Failure      500  {object}  messageResponse
// @Router       /api/admin/view-users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, usersResponse{Users: nonNilUsers(users)})
}

// CreateUser handles POST /api/admin/add-user.
//
// @Summary      Create a user with an explicit role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "Username, password and role"
// @Success      201   {object}  userMessageResponse
// @Failure      400   {object}  messageResponse
// @Failure      409   {object}  messageResponse
// @Router       /api/admin/add-user [post]
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.users.CreateUser(c.Request().Context(), ports.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		return respondError(c, err)
	}

	metrics.UsersCreatedTotal.WithLabelValues("admin").Inc()
	return c.JSON(http.StatusCreated, userMessageResponse{Message: "User created", User: user})
}

// UpdateUser handles PUT /api/admin/update-user/:id.
//
// @Summary      Update a user
// @Description  Role changes take effect on the user's next admin request.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  userMessageResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Failure      409   {object}  messageResponse
// @Router       /api/admin/update-user/{id} [put]
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.users.UpdateUser(c.Request().Context(), c.Param("id"), toUserUpdate(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, userMessageResponse{Message: "User updated", User: user})
}

// DeleteUser handles DELETE /api/admin/delete-user/:id.
//
// @Summary      Delete a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/admin/delete-user/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	if err := h.users.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted"})
}

// ListUserTasks handles GET /api/admin/user/:id/tasks.
//
// @Summary      List a user's tasks
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  tasksResponse
// @Router       /api/admin/user/{id}/tasks [get]
func (h *AdminHandler) ListUserTasks(c echo.Context) error {
	tasks, err := h.tasks.ListUserTasks(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tasksResponse{Tasks: nonNilTasks(tasks)})
}

// CreateUserTask handles POST /api/admin/user/:id/tasks.
//
// @Summary      Create a task for a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      createTaskRequest  true  "Task; assignedTo is ignored"
// @Success      201   {object}  taskMessageResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /api/admin/user/{id}/tasks [post]
func (h *AdminHandler) CreateUserTask(c echo.Context) error {
	admin, err := subjectID(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	task, err := h.tasks.CreateUserTask(c.Request().Context(), c.Param("id"), toCreateTaskInput(req, admin))
	if err != nil {
		return respondError(c, err)
	}

	metrics.TasksCreatedTotal.WithLabelValues(string(task.Priority)).Inc()
	return c.JSON(http.StatusCreated, taskMessageResponse{Message: "Task created", Task: task})
}

// UpdateUserTask handles PUT /api/admin/user/:id/tasks/:taskId.
//
// @Summary      Update one of a user's tasks
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string             true  "User ID"
// @Param        taskId  path      string             true  "Task ID"
// @Param        body    body      updateTaskRequest  true  "Fields to change"
// @Success      200     {object}  taskMessageResponse
// @Failure      404     {object}  messageResponse
// @Router       /api/admin/user/{id}/tasks/{taskId} [put]
func (h *AdminHandler) UpdateUserTask(c echo.Context) error {
	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	task, err := h.tasks.UpdateUserTask(c.Request().Context(), c.Param("id"), c.Param("taskId"), toUpdateTaskInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, taskMessageResponse{Message: "Task updated", Task: task})
}

// DeleteUserTask handles DELETE /api/admin/user/:id/tasks/:taskId.
//
// @Summary      Delete one of a user's tasks
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "User ID"
// @Param        taskId  path      string  true  "Task ID"
// @Success      200     {object}  messageResponse
// @Failure      404     {object}  messageResponse
// @Router       /api/admin/user/{id}/tasks/{taskId} [delete]
func (h *AdminHandler) DeleteUserTask(c echo.Context) error {
	if err := h.tasks.DeleteUserTask(c.Request().Context(), c.Param("id"), c.Param("taskId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Task deleted"})
}
