// Package metrics bundles the Prometheus instruments exported by
// vitaltrace-server.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the pipeline's counters. Register once per process (or per
// test registry).
type Metrics struct {
	ReadingsIngested prometheus.Counter
	FatalReadings    prometheus.Counter
	AppendFailures   prometheus.Counter
	SinkFailures     *prometheus.CounterVec
}

// New creates and registers the pipeline metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReadingsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitaltrace_readings_ingested_total",
			Help: "Readings durably persisted.",
		}),
		FatalReadings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitaltrace_fatal_readings_total",
			Help: "Readings classified fatal.",
		}),
		AppendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vitaltrace_store_append_failures_total",
			Help: "Store appends that failed and aborted ingestion.",
		}),
		SinkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vitaltrace_sink_failures_total",
			Help: "Background sink deliveries that failed.",
		}, []string{"sink"}),
	}
	reg.MustRegister(m.ReadingsIngested, m.FatalReadings, m.AppendFailures, m.SinkFailures)
	return m
}

// NewObserverGauge registers a gauge tracking currently connected live
// observers, sampled via count.
func NewObserverGauge(reg prometheus.Registerer, count func() int) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "vitaltrace_observers_connected",
		Help: "Currently connected WebSocket observers.",
	}, func() float64 { return float64(count()) }))
}
