// Package metrics defines and registers the custom Prometheus metrics of the
// identity service. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// ── Login metrics ─────────────────────────────────────────────────────────────

// LoginsTotal counts upstream logins.
// Labels:
//   - registration: provider registration id, "unknown" when not configured
//   - result: "success" or a short failure reason (e.g. "replayed", "no_tenant_access")
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by provider registration and result.",
	},
	[]string{"registration", "result"},
)

// TenantSwitchesTotal counts tenant switch requests.
// Label:
//   - result: "tenant_changed" or "not_allowed"
var TenantSwitchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tenant_switches_total",
		Help:      "Total number of tenant switch requests, by result.",
	},
	[]string{"result"},
)

// APIKeyAuthTotal counts API key authentication attempts.
// Label:
//   - result: "success", "malformed", "unknown" or "mismatch"
var APIKeyAuthTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_key_auth_total",
		Help:      "Total number of API key authentication attempts, by result.",
	},
	[]string{"result"},
)

// MemberOperationsTotal counts tenant membership changes.
// Labels:
//   - operation: "change_role", "remove" or "leave"
//   - result: "ok", "denied" or "error"
var MemberOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "member_operations_total",
		Help:      "Total number of tenant membership changes, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuthEventsRecordedTotal counts audit events persisted.
// Label:
//   - type: the auth event type (e.g. "login", "tenant_switch")
var AuthEventsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_recorded_total",
		Help:      "Total number of authentication audit events persisted.",
	},
	[]string{"type"},
)

// AuthEventsQueueDepth tracks the events waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuthEventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "auth_events_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuthEventProcessingDuration measures how long persisting one audit event takes.
// Label:
//   - result: "ok" or "error"
var AuthEventProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "auth_event_processing_duration_seconds",
		Help:      "Duration of audit event processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)
