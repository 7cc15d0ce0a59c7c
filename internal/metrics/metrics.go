// Package metrics registers the Prometheus collectors exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by method, route and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studyroom_http_requests_total",
		Help: "HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})

	// HTTPDuration tracks request latency per route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "studyroom_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// ReservationOps counts lifecycle operations by operation and result.
	ReservationOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studyroom_reservation_operations_total",
		Help: "Reservation lifecycle operations by operation and result",
	}, []string{"operation", "result"})

	// Conflicts counts rejected reservations by scope (user, seat, storage).
	Conflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studyroom_reservation_conflicts_total",
		Help: "Rejected reservation attempts by conflict scope",
	}, []string{"scope"})

	// SessionMinutes observes check-out durations.
	SessionMinutes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "studyroom_session_duration_minutes",
		Help:    "Study session duration at check-out in minutes",
		Buckets: []float64{15, 30, 60, 90, 120, 180, 240, 360, 480, 720},
	})

	// EventsPublished counts domain events by routing key and result.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studyroom_events_published_total",
		Help: "Domain events published to the broker by routing key and result",
	}, []string{"routing_key", "result"})
)

// Result labels.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// ResultOf maps an error to a result label.
func ResultOf(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
