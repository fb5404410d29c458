package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/metrics"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// TaskHandler serves the caller-scoped task routes.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Create handles POST /api/tasks/add-task.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task; assignedTo is a username"
// @Success      201   {object}  taskMessageResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /api/tasks/add-task [post]
func (h *TaskHandler) Create(c echo.Context) error {
	subject, err := subjectID(c)
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

	task, err := h.service.CreateTask(c.Request().Context(), toCreateTaskInput(req, subject))
	if err != nil {
		return respondError(c, err)
	}

	metrics.TasksCreatedTotal.WithLabelValues(string(task.Priority)).Inc()
	return c.JSON(http.StatusCreated, taskMessageResponse{Message: "Task created", Task: task})
}

// List handles GET /api/tasks/task.
//
// @Summary      List my tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  tasksResponse
// @Failure      401  {object}  messageResponse
// @Failure      403  {object}  messageResponse
// @Router       /api/tasks/task [get]
func (h *TaskHandler) List(c echo.Context) error {
	subject, err := subjectID(c)
	if err != nil {
		return err
	}

	tasks, err := h.service.ListMyTasks(c.Request().Context(), subject)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tasksResponse{Tasks: nonNilTasks(tasks)})
}

// Update handles PUT /api/tasks/update-task/:id.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task ID"
// @Param        body  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  taskMessageResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /api/tasks/update-task/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	subject, err := subjectID(c)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	task, err := h.service.UpdateTask(c.Request().Context(), subject, c.Param("id"), toUpdateTaskInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, taskMessageResponse{Message: "Task updated", Task: task})
}

// Delete handles DELETE /api/tasks/delete-task/:id.
//
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  taskMessageResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/tasks/delete-task/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	subject, err := subjectID(c)
	if err != nil {
		return err
	}

	task, err := h.service.DeleteTask(c.Request().Context(), subject, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, taskMessageResponse{Message: "Task deleted", Task: task})
}
