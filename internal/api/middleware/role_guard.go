package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/api/metrics"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
	"github.com/taskmanager/task-api/pkg/logger"
)

const (
	msgUnauthorized = "Unauthorized"
	msgAdminsOnly   = "Admins only"
	msgServerError  = "Server Error"
)

// RequireAdmin lets the request through only when the caller's role, as stored
// right now, is admin. The role embedded in the token is ignored so that a
// demotion takes effect on the next request rather than at token expiry.
//
// A missing user and an unreachable store both answer 500; they are told apart
// only in logs and in the rejection metric.
func RequireAdmin(roles ports.RoleResolver, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c.Request().Context())
			if !ok {
				metrics.AuthRejectionsTotal.WithLabelValues("missing_identity").Inc()
				return c.JSON(http.StatusUnauthorized, messageResponse{Message: msgUnauthorized})
			}

			start := time.Now()
			role, err := roles.CurrentRole(c.Request().Context(), id.SubjectID)
			metrics.RoleLookupDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				if !errors.Is(err, domain.ErrIdentityNotFound) && !errors.Is(err, domain.ErrStoreUnavailable) {
					err = fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
				}
				reason := rejectionReason(err)
				metrics.AuthRejectionsTotal.WithLabelValues(reason).Inc()
				reqLog := logger.WithRequest(log, requestID(c), id.SubjectID)
				reqLog.Error().
					Err(err).
					Str("reason", reason).
					Str("path", c.Path()).
					Msg("role lookup failed")
				return c.JSON(http.StatusInternalServerError, messageResponse{Message: msgServerError})
			}

			if role != domain.RoleAdmin {
				metrics.AuthRejectionsTotal.WithLabelValues(rejectionReason(domain.ErrInsufficientRole)).Inc()
				if id.ClaimedRole == domain.RoleAdmin {
					reqLog := logger.WithRequest(log, requestID(c), id.SubjectID)
					reqLog.Info().Err(domain.ErrInsufficientRole).Str("role", string(role)).Msg("stale admin claim rejected")
				}
				return c.JSON(http.StatusForbidden, messageResponse{Message: msgAdminsOnly})
			}

			attachIdentity(c, id.WithCurrentRole(role))
			return next(c)
		}
	}
}
