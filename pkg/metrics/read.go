package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// CounterValue reads the current value of one labelled counter. Missing
// label combinations read as zero. Used by the console stats view and tests.
func CounterValue(vec *prometheus.CounterVec, labels ...string) float64 {
	c, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	return readMetric(c).GetCounter().GetValue()
}

// GaugeValue reads the current value of a gauge.
func GaugeValue(g prometheus.Gauge) float64 {
	return readMetric(g).GetGauge().GetValue()
}

// SingleCounterValue reads an unlabelled counter.
func SingleCounterValue(c prometheus.Counter) float64 {
	return readMetric(c).GetCounter().GetValue()
}

func readMetric(m prometheus.Metric) *dto.Metric {
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		return &dto.Metric{}
	}
	return &out
}
