package tokenbucket

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

//go:embed token_bucket.lua
var transitionScript string

const (
	defaultPrefix  = "token-bucket-v1_"
	defaultTimeout = 5 * time.Second
)

// RedisStore executes bucket transitions as a Lua script inside Redis, which
// serializes all invocations touching the same key. State is shared by every
// process pointed at the same Redis, so a single global budget per bucket is
// enforced across replicas.
type RedisStore struct {
	client    *redis.Client
	scriptSHA string
	prefix    string
	timeout   time.Duration
	recorder  MetricsRecorder
}

// NewRedisStore pings the client and registers the transition script with
// Redis. SCRIPT LOAD is idempotent, so any number of processes initializing
// against the same Redis converge on the same script SHA; re-registration is
// a no-op.
func NewRedisStore(client *redis.Client, opts ...Option) (*RedisStore, error) {
	s := &RedisStore{
		client:   client,
		prefix:   defaultPrefix,
		timeout:  defaultTimeout,
		recorder: &NoOpMetricsRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	sha, err := client.ScriptLoad(ctx, transitionScript).Result()
	if err != nil {
		return nil, err
	}
	s.scriptSHA = sha

	return s, nil
}

// Transition runs the atomic transition script for the bucket id. Redis
// guarantees the script runs without interleaving against other invocations
// on the same key; that is the only concurrency control in the system.
func (s *RedisStore) Transition(ctx context.Context, id string, capacity, cost, refillRate float64, nowMS int64) (Result, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := s.prefix + id
	args := []interface{}{capacity, cost, refillRate, nowMS}

	raw, err := s.client.EvalSha(ctx, s.scriptSHA, []string{key}, args...).Result()
	if err != nil && redis.HasErrorPrefix(err, "NOSCRIPT") {
		// The script cache was flushed (e.g. Redis restarted). Reload and
		// retry once; the SHA is a pure function of the script text.
		if _, loadErr := s.client.ScriptLoad(ctx, transitionScript).Result(); loadErr != nil {
			return Result{}, loadErr
		}
		raw, err = s.client.EvalSha(ctx, s.scriptSHA, []string{key}, args...).Result()
	}
	if err != nil {
		return Result{}, err
	}

	res, err := parseTransitionReply(raw)
	if err != nil {
		return Result{}, err
	}

	s.recorder.Add("tokenbucket.call", 1, map[string]string{
		"admitted": strconv.FormatBool(res.Admitted),
	})
	s.recorder.Observe("tokenbucket.latency", time.Since(start).Seconds(), nil)

	return res, nil
}

// parseTransitionReply decodes the script's {admitted, tokens} reply. The
// token balance travels as a string because Lua numbers returned to Redis are
// truncated to integers, and fractional tokens are meaningful.
func parseTransitionReply(raw interface{}) (Result, error) {
	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return Result{}, errors.New("invalid lua response format")
	}

	admitted, ok := values[0].(int64)
	if !ok {
		return Result{}, fmt.Errorf("unexpected admit flag type: %T", values[0])
	}

	tokens, err := replyToFloat(values[1])
	if err != nil {
		return Result{}, err
	}

	return Result{Admitted: admitted == 1, Tokens: tokens}, nil
}

func replyToFloat(val interface{}) (float64, error) {
	switch v := val.(type) {
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("unexpected numeric type: %T", val)
	}
}
