package metrics

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		started:  time.Now(),
	}

	r.initGraphMetrics()
	r.initEngineMetrics()
	r.initValidationMetrics()
	r.initSchemaMetrics()
	r.initParamMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
// System gauges are refreshed on every scrape.
func (r *Registry) Handler() http.Handler {
	inner := promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.UpdateSystemMetrics()
		inner.ServeHTTP(w, req)
	})
}

// RecordOperation records one engine command
func (r *Registry) RecordOperation(operation, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.OperationsTotal.WithLabelValues(operation, status).Inc()
	r.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetGraphSize publishes the current node and edge counts
func (r *Registry) SetGraphSize(nodes, edges int) {
	if r == nil {
		return
	}
	r.NodesTotal.Set(float64(nodes))
	r.EdgesTotal.Set(float64(edges))
}

// RecordRejection counts a rejected connection proposal
func (r *Registry) RecordRejection(code string) {
	if r == nil {
		return
	}
	r.ConnectionRejections.WithLabelValues(code).Inc()
}

// RecordFallbackAcceptance counts a connection accepted without port metadata
func (r *Registry) RecordFallbackAcceptance() {
	if r == nil {
		return
	}
	r.FallbackAcceptances.Inc()
}

// RecordSchemaFallback counts a schema lookup that used the default layout
func (r *Registry) RecordSchemaFallback(unitType string) {
	if r == nil {
		return
	}
	r.SchemaFallbacks.WithLabelValues(unitType).Inc()
}

// RecordParamUpdates counts routed parameter keys by result
func (r *Registry) RecordParamUpdates(controls, properties, ignored int) {
	if r == nil {
		return
	}
	r.ParamUpdates.WithLabelValues(ParamControl).Add(float64(controls))
	r.ParamUpdates.WithLabelValues(ParamProperty).Add(float64(properties))
	r.ParamUpdates.WithLabelValues(ParamIgnored).Add(float64(ignored))
}

// UpdateSystemMetrics refreshes uptime and goroutine gauges
func (r *Registry) UpdateSystemMetrics() {
	if r == nil {
		return
	}
	r.UptimeSeconds.Set(time.Since(r.started).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
}
