package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r)

	assert.NotNil(t, r.NodesTotal)
	assert.NotNil(t, r.EdgesTotal)
	assert.NotNil(t, r.OperationsTotal)
	assert.NotNil(t, r.ConnectionRejections)
	assert.NotNil(t, r.SchemaFallbacks)
	assert.NotNil(t, r.ParamUpdates)
	assert.NotNil(t, r.GetPrometheusRegistry())
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()

	a.RecordRejection("cycle")
	assert.Equal(t, 1.0, CounterValue(a.ConnectionRejections, "cycle"))
	assert.Equal(t, 0.0, CounterValue(b.ConnectionRejections, "cycle"))
}

func TestRecordOperation(t *testing.T) {
	r := NewRegistry()

	r.RecordOperation("CreateNode", StatusOK, 10*time.Microsecond)
	r.RecordOperation("CreateNode", StatusOK, 20*time.Microsecond)
	r.RecordOperation("CreateNode", StatusError, 5*time.Microsecond)

	assert.Equal(t, 2.0, CounterValue(r.OperationsTotal, "CreateNode", StatusOK))
	assert.Equal(t, 1.0, CounterValue(r.OperationsTotal, "CreateNode", StatusError))

	obs, err := r.OperationDuration.GetMetricWithLabelValues("CreateNode")
	require.NoError(t, err)
	var metric dto.Metric
	require.NoError(t, obs.(interface{ Write(*dto.Metric) error }).Write(&metric))
	assert.Equal(t, uint64(3), metric.GetHistogram().GetSampleCount())
}

func TestSetGraphSize(t *testing.T) {
	r := NewRegistry()
	r.SetGraphSize(3, 2)

	assert.Equal(t, 3.0, GaugeValue(r.NodesTotal))
	assert.Equal(t, 2.0, GaugeValue(r.EdgesTotal))
}

func TestRecordSchemaFallbackAndParams(t *testing.T) {
	r := NewRegistry()
	r.RecordSchemaFallback("Noise")
	r.RecordSchemaFallback("Noise")
	r.RecordParamUpdates(1, 2, 3)
	r.RecordFallbackAcceptance()

	assert.Equal(t, 2.0, CounterValue(r.SchemaFallbacks, "Noise"))
	assert.Equal(t, 1.0, CounterValue(r.ParamUpdates, ParamControl))
	assert.Equal(t, 2.0, CounterValue(r.ParamUpdates, ParamProperty))
	assert.Equal(t, 3.0, CounterValue(r.ParamUpdates, ParamIgnored))
	assert.Equal(t, 1.0, SingleCounterValue(r.FallbackAcceptances))
}

func TestNilRegistryIsSafe(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.RecordOperation("RemoveNode", StatusNoop, time.Millisecond)
		r.SetGraphSize(1, 1)
		r.RecordRejection("duplicate")
		r.RecordSchemaFallback("Gain")
		r.RecordParamUpdates(1, 1, 1)
		r.RecordFallbackAcceptance()
		r.UpdateSystemMetrics()
	})
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.SetGraphSize(4, 1)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)

	assert.True(t, strings.Contains(text, "patchbay_nodes_total 4"), text)
	assert.Contains(t, text, "patchbay_uptime_seconds")
	assert.Contains(t, text, "patchbay_goroutines")
}
