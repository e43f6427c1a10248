// Package metrics defines and registers all custom Prometheus metrics for the
// Cascade Forum portal. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package init
// through promauto and exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionEventsTotal counts session lifecycle events.
// Label:
//   - event: "login", "logout" or "rejected" (cleared after a backend 401)
var SessionEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_total",
		Help:      "Total number of session lifecycle events.",
	},
	[]string{"event"},
)

// GuardDecisionsTotal counts route guard outcomes.
// Labels:
//   - required: role the route requires
//   - decision: "sufficient", "insufficient" or "unauthenticated"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions.",
	},
	[]string{"required", "decision"},
)

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestsTotal counts calls made to the REST backend.
// Labels:
//   - method: HTTP method
//   - code: response status code, or "error" when no response arrived
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent to the REST backend.",
	},
	[]string{"method", "code"},
)

// BackendRequestDuration measures backend round trips.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of requests sent to the REST backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// ── Checkout metrics ──────────────────────────────────────────────────────────

// CheckoutTransitionsTotal counts committed checkout state transitions.
// Label:
//   - to: the state entered (e.g. "widget_open", "verified")
var CheckoutTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_transitions_total",
		Help:      "Total number of committed checkout state transitions.",
	},
	[]string{"to"},
)

// JournalEntriesTotal counts checkout journal writes.
// Label:
//   - result: "written", "failed" or "dropped" (worker queue full)
var JournalEntriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "journal_entries_total",
		Help:      "Total number of checkout journal entries, by outcome.",
	},
	[]string{"result"},
)

// JournalQueueDepth tracks entries waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index
var JournalQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "journal_queue_depth",
		Help:      "Current number of journal entries pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// JournalWriteDuration measures a single journal insert.
var JournalWriteDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "journal_write_duration_seconds",
		Help:      "Duration of checkout journal inserts.",
		Buckets:   prometheus.DefBuckets,
	},
)
