package tokenbucket

import "time"

// Option configures a RedisStore.
type Option func(*RedisStore)

// WithPrefix sets the Redis key prefix (default "token-bucket-v1_"). The full
// key for a bucket is prefix + bucket id.
func WithPrefix(prefix string) Option {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// WithTimeout sets the per-call timeout applied to Redis operations
// (default 5s).
func WithTimeout(timeout time.Duration) Option {
	return func(s *RedisStore) {
		s.timeout = timeout
	}
}

// WithRecorder injects a metrics backend. By default metrics are discarded.
func WithRecorder(recorder MetricsRecorder) Option {
	return func(s *RedisStore) {
		if recorder != nil {
			s.recorder = recorder
		}
	}
}
