package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// messageResponse is the envelope for every message-only response, errors included.
type messageResponse struct {
	Message string `json:"message"`
}

// ResolveError maps known domain errors to a status code and client message.
// ok is false for errors the caller should treat as unexpected.
func ResolveError(err error) (code int, msg string, ok bool) {
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return http.StatusBadRequest, "All fields are required", true
	case errors.Is(err, domain.ErrPasswordTooLong):
		return http.StatusBadRequest, "Password must be at most 72 bytes", true
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest, "Invalid role", true
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "Username already exists", true
	case errors.Is(err, domain.ErrAssigneeNotFound):
		return http.StatusNotFound, "Assigned User not found", true
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found", true
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, "Task not found", true
	case errors.Is(err, domain.ErrInvalidLogin):
		return http.StatusUnauthorized, "Invalid Credentials", true
	}
	return 0, "", false
}

// respondError writes known domain errors and hands anything else to the
// central error handler, which logs it and answers 500.
func respondError(c echo.Context, err error) error {
	if code, msg, ok := ResolveError(err); ok {
		return c.JSON(code, messageResponse{Message: msg})
	}
	return err
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, messageResponse{Message: msg})
}
