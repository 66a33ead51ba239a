// Package metrics defines and registers all custom Prometheus metrics of the
// Speaky gateway. It is the single source of truth for metric names, labels,
// and help strings.
//
// All vectors are registered with the default registry through promauto, so
// importing the package is enough; /metrics serves them next to the echo
// request metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "speaky"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthStepTransitionsTotal counts accepted auth step transitions.
// Labels:
//   - from: the step left (phone, code)
//   - to: the step entered (code, profile, phone)
var AuthStepTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_step_transitions_total",
		Help:      "Total number of accepted auth step transitions.",
	},
	[]string{"from", "to"},
)

// RegistrationsTotal counts profile step submissions that reached the auth service.
// Label:
//   - result: "success", "rejected" or "transport"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of register calls, by result.",
	},
	[]string{"result"},
)

// ── Remote metrics ────────────────────────────────────────────────────────────

// RemoteRequestsTotal counts calls to the remote Speaky services.
// Labels:
//   - resource: auth, users, chats, upload
//   - action: the action discriminator (e.g. "register", "top_up")
//   - result: "ok", "rejected" or "transport"
var RemoteRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_requests_total",
		Help:      "Total number of remote service requests, by resource, action and result.",
	},
	[]string{"resource", "action", "result"},
)

// RemoteRequestDuration measures remote round trips.
var RemoteRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_request_duration_seconds",
		Help:      "Duration of remote service requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"resource"},
)

// ── Workspace metrics ─────────────────────────────────────────────────────────

// ViewSwitchesTotal counts view mounts.
// Label:
//   - view: the mounted view id, or "access_denied"
var ViewSwitchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "view_switches_total",
		Help:      "Total number of view mounts, by view.",
	},
	[]string{"view"},
)

// SessionConflictsTotal counts session writes rejected by the version check.
// Label:
//   - op: "replace" or "patch"
var SessionConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_conflicts_total",
		Help:      "Total number of stale session writes.",
	},
	[]string{"op"},
)

// NotificationsTotal counts pushed notifications.
// Label:
//   - level: success, error, info
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications pushed to clients, by level.",
	},
	[]string{"level"},
)

// ActiveWorkspaces is the number of workspaces held in memory.
var ActiveWorkspaces = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_workspaces",
		Help:      "Current number of client workspaces held in memory.",
	},
)

// ── Push metrics ──────────────────────────────────────────────────────────────

// EventsQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventsDroppedTotal counts events that could not be queued or delivered.
// Label:
//   - reason: "queue_full", "subscriber_slow" or "stopped"
var EventsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of push events dropped, by reason.",
	},
	[]string{"reason"},
)

// PushSubscribers is the number of open websocket subscriptions.
var PushSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "push_subscribers",
		Help:      "Current number of open websocket subscriptions.",
	},
)
