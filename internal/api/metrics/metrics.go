// Package metrics defines and registers the custom Prometheus metrics of the
// task manager API. HTTP request metrics come from echoprometheus; this package
// only holds what the middleware and handlers record themselves.
//
// Metrics are registered with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskmanager"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthRejectionsTotal counts requests stopped at the auth boundary.
// Label:
//   - reason: "missing_credential", "expired", "bad_signature", "malformed",
//     "missing_identity", "insufficient_role", "identity_not_found", "store_unavailable"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected by the auth middleware or role guard.",
	},
	[]string{"reason"},
)

// RoleLookupDuration measures the live role re-fetch done by the admin guard.
var RoleLookupDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "role_lookup_duration_seconds",
		Help:      "Duration of the current-role lookup performed on admin routes.",
		Buckets:   prometheus.DefBuckets,
	},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Domain metrics ────────────────────────────────────────────────────────────

// UsersCreatedTotal counts created accounts.
// Label:
//   - source: "register" (self-service) or "admin"
var UsersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of user accounts created, by source.",
	},
	[]string{"source"},
)

// TasksCreatedTotal counts created tasks.
// Label:
//   - priority: "low", "medium" or "high"
var TasksCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_created_total",
		Help:      "Total number of tasks created, by priority.",
	},
	[]string{"priority"},
)
