package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Root(t *testing.T) {
	c, rec := newContext(request{method: http.MethodGet, target: "/"})

	require.NoError(t, NewHealthHandler(nil).Root(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "API is running", decodeBody(t, rec)["message"])
}

func TestHealthHandler_Readiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: connection refused") }

	t.Run("all dependencies up", func(t *testing.T) {
		h := NewHealthHandler(map[string]HealthCheck{"mongodb": ok, "redis": ok})
		c, rec := newContext(request{method: http.MethodGet, target: "/health/ready"})

		require.NoError(t, h.Readiness(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","dependencies":{"mongodb":{"status":"ok"},"redis":{"status":"ok"}}}`, rec.Body.String())
	})

	t.Run("one dependency down", func(t *testing.T) {
		h := NewHealthHandler(map[string]HealthCheck{"mongodb": down, "redis": ok})
		c, rec := newContext(request{method: http.MethodGet, target: "/health/ready"})

		require.NoError(t, h.Readiness(c))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "degraded", body["status"])
		mongo := body["dependencies"].(map[string]any)["mongodb"].(map[string]any)
		assert.Equal(t, "unhealthy", mongo["status"])
		assert.Contains(t, mongo["error"], "connection refused")
	})
}

func TestHealthHandler_Liveness(t *testing.T) {
	c, rec := newContext(request{method: http.MethodGet, target: "/health"})

	require.NoError(t, NewHealthHandler(nil).Liveness(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}
