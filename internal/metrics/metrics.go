// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "learning_platform"

// Metrics groups the service collectors.
type Metrics struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	payments        *prometheus.CounterVec
	quizSubmissions *prometheus.CounterVec
	accessDenied    prometheus.Counter
}

// New creates the collectors on a dedicated registry together with the
// Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_total",
			Help:      "Checkout attempts by outcome.",
		}, []string{"outcome"}),
		quizSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiz_submissions_total",
			Help:      "Graded quiz submissions by result.",
		}, []string{"result"}),
		accessDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_access_denied_total",
			Help:      "Requests to gated content rejected for lack of an active package.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.payments,
		m.quizSubmissions,
		m.accessDenied,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// PaymentProcessed counts a checkout attempt. outcome is granted,
// granted_with_ledger_warning or the failure kind.
func (m *Metrics) PaymentProcessed(outcome string) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(outcome).Inc()
}

// QuizGraded counts a graded submission; passed is a score of at least half the points.
func (m *Metrics) QuizGraded(percentage float64) {
	if m == nil {
		return
	}
	result := "failed"
	if percentage >= 50 {
		result = "passed"
	}
	m.quizSubmissions.WithLabelValues(result).Inc()
}

// AccessDenied counts a rejected gated request.
func (m *Metrics) AccessDenied() {
	if m == nil {
		return
	}
	m.accessDenied.Inc()
}
