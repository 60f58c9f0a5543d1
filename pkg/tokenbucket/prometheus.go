package tokenbucket

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder is a MetricsRecorder backed by Prometheus collectors.
// Wire it in with WithRecorder and expose the registry via promhttp.
type PrometheusRecorder struct {
	calls   *prometheus.CounterVec
	latency prometheus.Histogram
}

// NewPrometheusRecorder creates the collectors and registers them with reg.
// It panics if collectors with the same names are already registered, so
// create at most one recorder per registry.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tokenbucket_calls_total",
			Help: "Bucket transitions, partitioned by admission outcome.",
		}, []string{"admitted"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tokenbucket_call_duration_seconds",
			Help:    "Latency of bucket transitions against the store.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(r.calls, r.latency)
	return r
}

func (r *PrometheusRecorder) Add(name string, value float64, tags map[string]string) {
	if name != "tokenbucket.call" {
		return
	}
	r.calls.With(prometheus.Labels{"admitted": tags["admitted"]}).Add(value)
}

func (r *PrometheusRecorder) Observe(name string, value float64, tags map[string]string) {
	if name != "tokenbucket.latency" {
		return
	}
	r.latency.Observe(value)
}
