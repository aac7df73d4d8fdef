// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	TaskMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wavenote_task_mutations_total",
			Help: "Total number of task mutations by operation and outcome",
		},
		[]string{"op", "status"},
	)

	FormRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wavenote_form_rejections_total",
			Help: "Task form submissions rejected by validation",
		},
		[]string{"reason"},
	)

	AuthEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wavenote_auth_events_total",
			Help: "Sign-ups, logins and logouts by outcome",
		},
		[]string{"event", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wavenote_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "code"},
	)
)

// ObserveMutation counts one gateway operation.
func ObserveMutation(op string, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	TaskMutations.WithLabelValues(op, status).Inc()
}

func ObserveAuth(event string, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	AuthEvents.WithLabelValues(event, status).Inc()
}
