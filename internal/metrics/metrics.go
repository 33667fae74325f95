// Package metrics exposes the pipeline counters served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Suppression reasons.
const (
	ReasonFiltered  = "resolve_type_filtered"
	ReasonTransient = "transient_resolved"
	ReasonReplaced  = "replaced_pending"
	ReasonParse     = "parse_error"
)

var (
	AlertsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alertbridge_alerts_received_total",
		Help: "Inbound alert webhooks received.",
	})

	AlertsForwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alertbridge_alerts_forwarded_total",
		Help: "Alerts handed to a backend push.",
	}, []string{"backend"})

	AlertsSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alertbridge_alerts_suppressed_total",
		Help: "Alerts dropped before any push.",
	}, []string{"reason"})

	PushFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alertbridge_push_failures_total",
		Help: "Backend pushes that failed.",
	}, []string{"backend"})
)
