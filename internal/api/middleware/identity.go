package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/core/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a child context carrying id.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the identity attached by Auth, if any.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	if !ok || id.SubjectID == "" {
		return domain.Identity{}, false
	}
	return id, true
}

// attachIdentity swaps the request for a copy whose context carries id.
func attachIdentity(c echo.Context, id domain.Identity) {
	req := c.Request()
	c.SetRequest(req.WithContext(WithIdentity(req.Context(), id)))
}

type messageResponse struct {
	Message string `json:"message"`
}
