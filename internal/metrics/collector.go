// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector registers and records the module's prometheus metrics.
type Collector struct {
	rpcRequestsTotal   *prometheus.CounterVec
	rpcRequestDuration *prometheus.HistogramVec

	stageRunsTotal   *prometheus.CounterVec
	stageRunDuration *prometheus.HistogramVec

	storeMergesTotal *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector creates a collector registered under the given namespace.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.rpcRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Total number of tool calls issued to the monitor service",
		},
		[]string{"tool", "outcome"},
	)

	c.rpcRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_request_duration_seconds",
			Help:      "Tool call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"tool"},
	)

	c.stageRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_runs_total",
			Help:      "Total number of workflow stage runs",
		},
		[]string{"stage", "status"},
	)

	c.stageRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_run_duration_seconds",
			Help:      "Workflow stage duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)

	c.storeMergesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_merges_total",
			Help:      "Total number of correlation store merges",
		},
		[]string{"backend", "status"},
	)

	c.httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served by the agents",
		},
		[]string{"agent", "path", "status"},
	)

	c.httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"agent", "path"},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// RecordRPCRequest records one tool call against the monitor service.
func (c *Collector) RecordRPCRequest(tool, outcome string, duration time.Duration) {
	c.rpcRequestsTotal.WithLabelValues(tool, outcome).Inc()
	c.rpcRequestDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordStageRun records one workflow stage run.
func (c *Collector) RecordStageRun(stage, status string, duration time.Duration) {
	c.stageRunsTotal.WithLabelValues(stage, status).Inc()
	c.stageRunDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordStoreMerge records one correlation store merge.
func (c *Collector) RecordStoreMerge(backend, status string) {
	c.storeMergesTotal.WithLabelValues(backend, status).Inc()
}

// RecordHTTPRequest records one request served by an agent endpoint.
func (c *Collector) RecordHTTPRequest(agent, path string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(agent, path, statusClass(status)).Inc()
	c.httpRequestDuration.WithLabelValues(agent, path).Observe(duration.Seconds())
}

func statusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
