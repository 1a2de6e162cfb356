// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Core metrics
	StreakTransitions *prometheus.CounterVec
	StreakMilestones  prometheus.Counter
	StreakCount       prometheus.Gauge
	TokenAnalyses     *prometheus.CounterVec

	// Action metrics
	ActionsSubmitted *prometheus.CounterVec
	ProofsUploaded   *prometheus.CounterVec
	EventsPublished  *prometheus.CounterVec

	// Notification metrics
	NotificationsBroadcast prometheus.Counter
	WSClients              prometheus.Gauge

	// HTTP metrics
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRateLimited     *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastDailyReset prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg uses the default Prometheus registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "watch2give_vendor"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Core metrics
		StreakTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "streak",
			Name:      "transitions_total",
			Help:      "Total number of streak updates by transition",
		}, []string{"transition"}),
		StreakMilestones: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "streak",
			Name:      "milestones_total",
			Help:      "Total number of streak milestones reached",
		}),
		StreakCount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "streak",
			Name:      "count",
			Help:      "Current vendor streak count",
		}),
		TokenAnalyses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "requests_total",
			Help:      "Total number of token analyses by recommendation",
		}, []string{"recommendation"}),

		// Action metrics
		ActionsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actions",
			Name:      "submitted_total",
			Help:      "Total number of submitted actions by action and status",
		}, []string{"action", "status"}),
		ProofsUploaded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actions",
			Name:      "proofs_uploaded_total",
			Help:      "Total number of proof uploads by status",
		}, []string{"status"}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "events_published_total",
			Help:      "Total number of action events published by status",
		}, []string{"status"}),

		// Notification metrics
		NotificationsBroadcast: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "broadcast_total",
			Help:      "Total number of notifications broadcast to websocket clients",
		}),
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "ws_clients",
			Help:      "Number of connected websocket clients",
		}),

		// HTTP metrics
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		HTTPRateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter",
		}, []string{"route"}),

		// Database metrics
		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastDailyReset: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_daily_reset_timestamp",
			Help:      "Unix timestamp of the last midnight streak reset",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordStreakTransition records a streak update and the resulting count.
func RecordStreakTransition(transition string, count int) {
	DefaultMetrics.StreakTransitions.WithLabelValues(transition).Inc()
	DefaultMetrics.StreakCount.Set(float64(count))
}

// RecordStreakMilestone increments the milestone counter.
func RecordStreakMilestone() {
	DefaultMetrics.StreakMilestones.Inc()
}

// RecordDailyReset records the time of a midnight reset.
func RecordDailyReset(unixSeconds int64) {
	DefaultMetrics.LastDailyReset.Set(float64(unixSeconds))
}

// RecordTokenAnalysis records an analysis by its recommendation.
func RecordTokenAnalysis(recommendation string) {
	DefaultMetrics.TokenAnalyses.WithLabelValues(recommendation).Inc()
}

// RecordActionSubmitted records an action submission.
func RecordActionSubmitted(action, status string) {
	DefaultMetrics.ActionsSubmitted.WithLabelValues(action, status).Inc()
}

// RecordProofUpload records a proof upload.
func RecordProofUpload(status string) {
	DefaultMetrics.ProofsUploaded.WithLabelValues(status).Inc()
}

// RecordEventPublished records an event publish attempt.
func RecordEventPublished(status string) {
	DefaultMetrics.EventsPublished.WithLabelValues(status).Inc()
}

// RecordNotificationBroadcast increments the broadcast counter.
func RecordNotificationBroadcast() {
	DefaultMetrics.NotificationsBroadcast.Inc()
}

// UpdateWSClients sets the connected websocket client gauge.
func UpdateWSClients(n int) {
	DefaultMetrics.WSClients.Set(float64(n))
}

// RecordHTTPRequest records HTTP request latency.
func RecordHTTPRequest(route, method, status string, seconds float64) {
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(route, method, status).Observe(seconds)
}

// RecordRateLimited increments the rate limited counter.
func RecordRateLimited(route string) {
	DefaultMetrics.HTTPRateLimited.WithLabelValues(route).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
