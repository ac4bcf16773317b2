package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicketsCreated tracks tickets accepted and stored.
	TicketsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "helpdesk_tickets_created_total",
			Help: "Total number of tickets stored",
		},
	)

	// RemoteCallAttempts tracks individual attempts against the remote store.
	RemoteCallAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helpdesk_remote_call_attempts_total",
			Help: "Total number of remote store call attempts",
		},
		[]string{"operation", "outcome"},
	)

	// RemoteCallRetries tracks calls that needed more than one attempt.
	RemoteCallRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helpdesk_remote_call_retries_total",
			Help: "Total number of remote store calls that were retried",
		},
		[]string{"operation"},
	)

	// HTTPRequestDuration tracks API request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "helpdesk_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// AuthDenied tracks requests rejected by the allowlist.
	AuthDenied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "helpdesk_auth_denied_total",
			Help: "Total number of requests denied by the allowlist",
		},
	)
)
