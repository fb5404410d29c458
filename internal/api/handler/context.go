package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/middleware"
)

// subjectID returns the caller attached by the Auth middleware. Routes mounted
// without Auth have no subject; treat that as unauthenticated rather than panic.
func subjectID(c echo.Context) (string, error) {
	id, ok := middleware.IdentityFrom(c.Request().Context())
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	return id.SubjectID, nil
}
