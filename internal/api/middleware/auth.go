package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/api/metrics"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
	"github.com/taskmanager/task-api/pkg/logger"
)

const (
	msgNoToken            = "No token provided"
	msgInvalidCredentials = "Invalid credentials"
)

// Auth requires a valid bearer token and attaches the caller's identity to the
// request context. It never consults the credential store.
//
//	missing header / wrong scheme / empty token -> 401
//	any verification failure                    -> 403
func Auth(verifier ports.TokenVerifier, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.AuthRejectionsTotal.WithLabelValues(rejectionReason(domain.ErrMissingCredential)).Inc()
				return c.JSON(http.StatusUnauthorized, messageResponse{Message: msgNoToken})
			}

			claim, err := verifier.Verify(token)
			if err != nil {
				if !errors.Is(err, domain.ErrInvalidCredential) {
					err = fmt.Errorf("%w: %w", domain.ErrInvalidCredential, err)
				}
				reason := rejectionReason(err)
				metrics.AuthRejectionsTotal.WithLabelValues(reason).Inc()
				reqLog := logger.WithRequest(log, requestID(c), "")
				reqLog.Debug().
					Err(err).
					Str("reason", reason).
					Str("path", c.Path()).
					Msg("token rejected")
				return c.JSON(http.StatusForbidden, messageResponse{Message: msgInvalidCredentials})
			}

			attachIdentity(c, domain.Identity{
				SubjectID:   claim.SubjectID,
				ClaimedRole: claim.Role,
			})
			return next(c)
		}
	}
}

// bearerToken extracts the token from "Bearer <token>". The scheme is matched
// case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// rejectionReason maps the auth error taxonomy onto the auth_rejections_total
// reason label. Anything unclassified counts as a store failure.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		return "missing_credential"
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenSignatureInvalid):
		return "bad_signature"
	case errors.Is(err, domain.ErrInvalidCredential):
		return "malformed"
	case errors.Is(err, domain.ErrInsufficientRole):
		return "insufficient_role"
	case errors.Is(err, domain.ErrIdentityNotFound):
		return "identity_not_found"
	default:
		return "store_unavailable"
	}
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
