package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.NodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "nodes_total",
			Help:      "Number of live graph nodes",
		},
	)

	r.EdgesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "edges_total",
			Help:      "Number of live graph edges",
		},
	)
}

func (r *Registry) initEngineMetrics() {
	r.OperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Engine commands by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	r.OperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Engine command duration in seconds",
			Buckets:   []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
		[]string{"operation"},
	)
}

func (r *Registry) initValidationMetrics() {
	r.ConnectionRejections = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "connection_rejections_total",
			Help:      "Proposed connections rejected by the validator, by reason code",
		},
		[]string{"code"},
	)

	r.FallbackAcceptances = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "connection_fallback_acceptances_total",
			Help:      "Connections accepted without port metadata",
		},
	)
}

func (r *Registry) initSchemaMetrics() {
	r.SchemaFallbacks = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "schema_fallbacks_total",
			Help:      "Schema lookups that fell back to the single audio in/out layout",
		},
		[]string{"unit_type"},
	)
}

func (r *Registry) initParamMetrics() {
	r.ParamUpdates = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "param_updates_total",
			Help:      "Parameter keys routed to units, by result",
		},
		[]string{"result"},
	)
}
