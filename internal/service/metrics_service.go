package service

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trainhub/assignment-api/internal/models"
)

// MetricsService owns the Prometheus registry and the engine-level counters.
type MetricsService struct {
	registry *prometheus.Registry

	assignmentsCreated *prometheus.CounterVec
	capacityRejections prometheus.Counter
	autoAssignRuns     *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewMetricsService builds the registry and registers all collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &MetricsService{
		registry: registry,
		assignmentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assignments_created_total",
			Help: "Assignment records created, labelled by source.",
		}, []string{"source"}),
		capacityRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assignment_capacity_rejections_total",
			Help: "Placements refused because every qualifying group was full.",
		}),
		autoAssignRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auto_assign_runs_total",
			Help: "Auto-assign runs by terminal state.",
		}, []string{"state"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
	registry.MustRegister(m.assignmentsCreated, m.capacityRejections, m.autoAssignRuns, m.httpRequests, m.httpDuration)
	return m
}

// Handler exposes the registry for the /metrics endpoint.
func (m *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// AssignmentCreated counts one persisted assignment record.
func (m *MetricsService) AssignmentCreated(source models.AssignmentSource) {
	m.assignmentsCreated.WithLabelValues(string(source)).Inc()
}

// CapacityRejected counts one NoCapacity outcome.
func (m *MetricsService) CapacityRejected() {
	m.capacityRejections.Inc()
}

// AutoAssignFinished counts one run reaching a terminal state.
func (m *MetricsService) AutoAssignFinished(state models.AutoAssignState) {
	m.autoAssignRuns.WithLabelValues(string(state)).Inc()
}

// ObserveRequest records one HTTP request for the middleware.
func (m *MetricsService) ObserveRequest(method, path, status string, seconds float64) {
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(seconds)
}
