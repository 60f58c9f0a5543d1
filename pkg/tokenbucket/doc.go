// Package tokenbucket provides a distributed token-bucket rate limiter whose
// authoritative state lives in Redis rather than in process memory.
//
// The primary entry point is the Bucket handle:
//
//	remaining, err := bucket.Consume(ctx, 1)
//
// Consume returns the token balance after the call; when the bucket cannot
// cover the cost it additionally returns an *InsufficientTokensError carrying
// the bucket id, the attempted cost, and the current balance, so callers can
// decide on backoff without a second round trip.
//
// # Overview
//
// Each bucket is a named counter of tokens bounded by a capacity and refilled
// continuously over time:
//
//   - A bucket holds at most Capacity tokens.
//   - RefillRate tokens are added per minute, computed lazily at access time
//     (there is no background timer).
//   - Consume(ctx, cost) debits cost tokens when the refilled balance covers
//     it; cost may be fractional, and a cost exactly equal to the balance is
//     admitted, draining the bucket to zero.
//
// Multiple independent processes agree on a single bucket's remaining
// capacity without a central coordinator: the whole read-refill-consume-write
// cycle executes as one atomic operation inside the store.
//
// # Core Types
//
// BucketConfig defines the policy:
//
//   - ID: the bucket's identity within the store's key prefix
//   - Capacity: maximum tokens the bucket can hold (also the maximum burst)
//   - RefillRate: tokens added per minute
//
// Configuration is supplied on every access and never persisted, so changing
// Capacity or RefillRate simply changes the math applied on the next access.
//
// # Backends
//
// The package provides two Store implementations with the same Transition
// API:
//
//   - MemoryStore: an in-process store backed by a Go map. Useful for unit
//     tests, local development, and single-instance deployments. Its state is
//     local to the process and does not enforce a global limit across
//     replicas.
//
//   - RedisStore: a distributed store backed by Redis. It uses a Lua script
//     to perform the read/compute/write cycle atomically, which makes it safe
//     to use across many application instances while enforcing a single
//     global budget per bucket.
//
// Recommendation: use RedisStore in production when you need a global limit,
// and MemoryStore in tests (as a fast, dependency-free stand-in).
//
// # Concurrency
//
// MemoryStore is safe for concurrent use by multiple goroutines (it uses a
// mutex to protect its internal map). RedisStore delegates concurrency safety
// to Redis, which runs the transition script without interleaving against
// other invocations on the same key. Transitions on different bucket ids are
// fully independent and make no ordering promises relative to each other.
//
// # Context and Error Policy
//
// Consume and Tokens accept a context.Context. RedisStore passes it through
// to Redis operations so callers can enforce deadlines and cancel work.
//
// Denial is not an infrastructure failure: a denied Consume returns the
// balance and an error satisfying errors.Is(err, ErrInsufficientTokens). Any
// other error (connectivity, script registration) is propagated unmodified
// from the Redis client; this package performs no retries and imposes no
// fail-open or fail-closed policy.
//
// # Storage Details
//
// RedisStore keeps one hash per bucket under the key prefix + id
// (default prefix "token-bucket-v1_") with two fields:
//
//   - "tokens": current token balance (stored as text; fractional values are
//     meaningful)
//   - "last_refilled_at": last transition time, integer milliseconds since
//     the epoch
//
// Every record carries an expiration equal to the time the bucket needs to
// refill to capacity. A fully refilled bucket is behaviorally identical to an
// absent record, so expiry is the system's sole eviction mechanism: buckets
// that go idle disappear on their own, and a bucket that is full after a
// transition is never written at all.
//
// # Limitations and Notes
//
//   - Timestamps are supplied by callers. Across processes with badly skewed
//     clocks, elapsed time is clamped to zero rather than allowed to drain a
//     bucket below its stored balance.
//   - Tokens(ctx) is a zero-cost transition: it consumes nothing but still
//     resets the refill clock and the record's expiry as a side effect.
//   - RedisStore uses EVALSHA; if Redis restarts and its script cache is
//     cleared, the store transparently reloads the script and retries once.
//
// # Configuration
//
// RedisStore is configured using the Functional Options pattern:
//
//	store, _ := tokenbucket.NewRedisStore(client,
//		tokenbucket.WithPrefix("myapp:rate:"),
//		tokenbucket.WithTimeout(2*time.Second),
//		tokenbucket.WithRecorder(myMetrics),
//	)
//
// Supported options:
//
//   - WithPrefix(string): sets the key prefix (default "token-bucket-v1_").
//   - WithTimeout(time.Duration): sets the context timeout for Redis
//     operations (default 5s).
//   - WithRecorder(MetricsRecorder): injects a custom metrics backend;
//     NewPrometheusRecorder provides a Prometheus-based one.
//
// Named bucket policies can also be loaded from YAML via LoadConfigFromFile.
package tokenbucket
