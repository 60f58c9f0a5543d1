package tokenbucket

// MetricsRecorder receives operational metrics from a RedisStore.
//
// Add increments a counter, Observe records a sample in a distribution. The
// store emits "tokenbucket.call" (counter, tagged with admitted=true|false)
// and "tokenbucket.latency" (seconds).
type MetricsRecorder interface {
	Add(name string, value float64, tags map[string]string)
	Observe(name string, value float64, tags map[string]string)
}

// NoOpMetricsRecorder is a placeholder that does nothing.
// It ensures we never have to check 'if s.recorder != nil' in our hot path.
type NoOpMetricsRecorder struct{}

func (n *NoOpMetricsRecorder) Add(name string, value float64, tags map[string]string)     {}
func (n *NoOpMetricsRecorder) Observe(name string, value float64, tags map[string]string) {}
