package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotseat",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	appointmentsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hotseat",
			Name:      "appointments_created_total",
			Help:      "Successfully committed appointments.",
		},
	)

	appointmentsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotseat",
			Name:      "appointments_rejected_total",
			Help:      "Rejected booking attempts by reason code.",
		},
		[]string{"reason"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotseat",
			Name:      "availability_cache_lookups_total",
			Help:      "Availability cache lookups by granularity and outcome.",
		},
		[]string{"granularity", "outcome"},
	)

	sideEffectFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotseat",
			Name:      "booking_side_effect_failures_total",
			Help:      "Post-commit side effects that failed after retries.",
		},
		[]string{"effect"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			appointmentsCreated,
			appointmentsRejected,
			cacheLookups,
			sideEffectFailures,
		)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncAppointmentCreated records a committed booking.
func IncAppointmentCreated() {
	appointmentsCreated.Inc()
}

// IncAppointmentRejected records a rejected booking with its reason code.
func IncAppointmentRejected(reason string) {
	appointmentsRejected.WithLabelValues(reason).Inc()
}

// IncCacheHit and IncCacheMiss record availability cache outcomes.
func IncCacheHit(granularity string)  { cacheLookups.WithLabelValues(granularity, "hit").Inc() }
func IncCacheMiss(granularity string) { cacheLookups.WithLabelValues(granularity, "miss").Inc() }

// IncSideEffectFailure records a failed best-effort side effect
// ("invalidate" or "notify").
func IncSideEffectFailure(effect string) {
	sideEffectFailures.WithLabelValues(effect).Inc()
}
