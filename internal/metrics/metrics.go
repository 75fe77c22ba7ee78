// Package metrics exposes Prometheus counters/histograms for the job
// queue, workflow engine, and HTTP surface, following the teacher's
// pkg/observability/metrics.go grouping.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics wraps a dedicated Prometheus registry with the orchestrator's
// counters and histograms.
type Metrics struct {
	registry *prometheus.Registry

	jobsSubmitted   *prometheus.CounterVec
	jobsCompleted   *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
	jobQueueDepth   prometheus.Gauge

	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	toolErrors   *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New builds a Metrics value and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		jobsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orchestrator_jobs_submitted_total",
			Help: "Total jobs submitted, by job_type.",
		}, []string{"job_type"}),
		jobsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orchestrator_jobs_completed_total",
			Help: "Total jobs reaching a terminal status, by status.",
		}, []string{"status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orchestrator_job_duration_seconds",
			Help:    "Job execution duration from PROCESSING to terminal.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}, []string{"job_type"}),
		jobQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orchestrator_job_queue_depth",
			Help: "Current number of jobs awaiting a worker.",
		}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orchestrator_tool_calls_total",
			Help: "Total tool adapter invocations, by tool.",
		}, []string{"tool"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orchestrator_tool_call_duration_seconds",
			Help:    "Tool adapter call duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
		toolErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orchestrator_tool_errors_total",
			Help: "Total tool adapter errors, by tool.",
		}, []string{"tool"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orchestrator_http_requests_total",
			Help: "Total HTTP requests, by route and status class.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orchestrator_http_request_duration_seconds",
			Help:    "HTTP request duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		m.jobsSubmitted, m.jobsCompleted, m.jobDuration, m.jobQueueDepth,
		m.toolCalls, m.toolDuration, m.toolErrors,
		m.httpRequests, m.httpDuration,
	)
	return m
}

// Registry returns the underlying Prometheus registry, for mounting a
// /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) RecordJobSubmitted(jobType string) {
	m.jobsSubmitted.WithLabelValues(jobType).Inc()
}

func (m *Metrics) RecordJobCompleted(jobType, status string, duration time.Duration) {
	m.jobsCompleted.WithLabelValues(status).Inc()
	m.jobDuration.WithLabelValues(jobType).Observe(duration.Seconds())
}

func (m *Metrics) SetQueueDepth(depth int) {
	m.jobQueueDepth.Set(float64(depth))
}

func (m *Metrics) RecordToolCall(tool string, duration time.Duration, err bool) {
	m.toolCalls.WithLabelValues(tool).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(duration.Seconds())
	if err {
		m.toolErrors.WithLabelValues(tool).Inc()
	}
}

func (m *Metrics) RecordHTTPRequest(route, statusClass string, duration time.Duration) {
	m.httpRequests.WithLabelValues(route, statusClass).Inc()
	m.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}
