package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gatehouse"

// PrometheusRecorder exports metrics through a Prometheus registry.
type PrometheusRecorder struct {
	signups         *prometheus.CounterVec
	logins          *prometheus.CounterVec
	logouts         prometheus.Counter
	rateLimited     *prometheus.CounterVec
	csrfRejected    prometheus.Counter
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
}

// NewPrometheus creates and registers all collectors on reg.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	m := &PrometheusRecorder{
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accounts",
			Name:      "signups_total",
			Help:      "Signup submissions by outcome.",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accounts",
			Name:      "logins_total",
			Help:      "Login submissions by outcome.",
		}, []string{"outcome"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accounts",
			Name:      "logouts_total",
			Help:      "Sessions ended by logout.",
		}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the auth rate limiter.",
		}, []string{"route"}),
		csrfRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "csrf_rejected_total",
			Help:      "Form submissions rejected for a missing or invalid CSRF token.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status_code"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status_code"}),
	}

	reg.MustRegister(
		m.signups,
		m.logins,
		m.logouts,
		m.rateLimited,
		m.csrfRejected,
		m.requestDuration,
		m.requestsTotal,
	)
	return m
}

// IncSignup increments the signup counter for an outcome.
func (m *PrometheusRecorder) IncSignup(outcome string) {
	m.signups.WithLabelValues(outcome).Inc()
}

// IncLogin increments the login counter for an outcome.
func (m *PrometheusRecorder) IncLogin(outcome string) {
	m.logins.WithLabelValues(outcome).Inc()
}

// IncLogout increments the logout counter.
func (m *PrometheusRecorder) IncLogout() {
	m.logouts.Inc()
}

// IncRateLimited increments the rate-limited counter for a route.
func (m *PrometheusRecorder) IncRateLimited(route string) {
	m.rateLimited.WithLabelValues(route).Inc()
}

// IncCSRFRejected increments the CSRF rejection counter.
func (m *PrometheusRecorder) IncCSRFRejected() {
	m.csrfRejected.Inc()
}

// ObserveHTTPRequest records request count and latency.
func (m *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	m.requestsTotal.WithLabelValues(method, route, code).Inc()
}
