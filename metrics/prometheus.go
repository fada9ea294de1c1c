package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder exposes engine counters and latencies under the
// "payflow" namespace, labeled by chain.
type PrometheusRecorder struct {
	counters  *prometheus.CounterVec
	histogram *prometheus.HistogramVec
}

func NewPrometheusRecorder() Recorder {
	counters := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payflow",
			Name:      "events_total",
			Help:      "payment engine event counters",
		},
		[]string{"type", "chain"},
	)

	histogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "payflow",
			Name:      "latency_seconds",
			Help:      "payment engine operation latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "chain"},
	)

	if err := prometheus.Register(counters); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			counters = are.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	if err := prometheus.Register(histogram); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			histogram = are.ExistingCollector.(*prometheus.HistogramVec)
		}
	}

	return &PrometheusRecorder{
		counters:  counters,
		histogram: histogram,
	}
}

func (p *PrometheusRecorder) IncCounter(name string, labels map[string]string) {
	p.counters.With(prometheus.Labels{
		"type":  name,
		"chain": labels["chain"],
	}).Inc()
}

func (p *PrometheusRecorder) ObserveLatency(name string, d time.Duration, labels map[string]string) {
	p.histogram.With(prometheus.Labels{
		"operation": name,
		"chain":     labels["chain"],
	}).Observe(d.Seconds())
}
