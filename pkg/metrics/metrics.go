package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pos"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	ordersCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Orders created, by initial status.",
		},
		[]string{"status"},
	)

	ordersDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "deleted_total",
			Help:      "Orders deleted directly or by the kitchen cancellation cascade.",
		},
	)

	stockUnits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stock",
			Name:      "adjusted_units_total",
			Help:      "Absolute stock units moved, by reason.",
		},
		[]string{"reason"},
	)

	kitchenTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kitchen",
			Name:      "transitions_total",
			Help:      "Kitchen ticket status transitions, by target status.",
		},
		[]string{"status"},
	)

	packageSessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "packages",
			Name:      "session_changes_total",
			Help:      "Treatment package sessions used or returned.",
		},
		[]string{"action"},
	)

	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Events published to the bus.",
		},
		[]string{"type"},
	)

	eventsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "Events dropped because a subscriber buffer was full.",
		},
		[]string{"type"},
	)

	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "job_runs_total",
			Help:      "Scheduled job runs.",
		},
		[]string{"job", "success"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		ordersCreated,
		ordersDeleted,
		stockUnits,
		kitchenTransitions,
		packageSessions,
		eventsPublished,
		eventsDropped,
		jobRuns,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one served request
func RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func RecordOrderCreated(status string) {
	ordersCreated.WithLabelValues(status).Inc()
}

func RecordOrderDeleted() {
	ordersDeleted.Inc()
}

// RecordStockAdjustment counts the absolute size of delta under reason
func RecordStockAdjustment(reason string, delta int) {
	if delta < 0 {
		delta = -delta
	}
	stockUnits.WithLabelValues(reason).Add(float64(delta))
}

func RecordKitchenTransition(status string) {
	kitchenTransitions.WithLabelValues(status).Inc()
}

func RecordPackageSession(action string) {
	packageSessions.WithLabelValues(action).Inc()
}

func RecordEventPublished(eventType string) {
	eventsPublished.WithLabelValues(eventType).Inc()
}

func RecordEventDropped(eventType string) {
	eventsDropped.WithLabelValues(eventType).Inc()
}

func RecordJobRun(job string, success bool) {
	jobRuns.WithLabelValues(job, strconv.FormatBool(success)).Inc()
}
