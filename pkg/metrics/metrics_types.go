package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "patchbay"

// Registry holds all metrics for one engine instance. Each engine gets its
// own prometheus registry so tests and embedded hosts never collide.
type Registry struct {
	// Graph shape
	NodesTotal prometheus.Gauge
	EdgesTotal prometheus.Gauge

	// Engine operations
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Validation
	ConnectionRejections *prometheus.CounterVec
	FallbackAcceptances  prometheus.Counter

	// Port schemas
	SchemaFallbacks *prometheus.CounterVec

	// Parameter routing
	ParamUpdates *prometheus.CounterVec

	// System Metrics
	UptimeSeconds prometheus.Gauge
	GoRoutines    prometheus.Gauge

	registry *prometheus.Registry
	started  time.Time
}

// Operation outcome labels
const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusRejected = "rejected"
	StatusNoop     = "noop"
)

// Parameter routing result labels
const (
	ParamControl  = "control"
	ParamProperty = "property"
	ParamIgnored  = "ignored"
)
