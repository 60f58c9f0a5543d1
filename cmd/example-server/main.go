package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/henriqueinonhe/token-bucket-redis/pkg/tokenbucket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	// Default: burst of 10, 300 tokens/minute (5 req/sec sustained) per IP.
	policy := tokenbucket.BucketPolicy{Capacity: 10, RefillRate: 300}
	opts := []tokenbucket.Option{
		tokenbucket.WithTimeout(100 * time.Millisecond),
	}

	if path := os.Getenv("BUCKETS_CONFIG"); path != "" {
		cfg, err := tokenbucket.LoadConfigFromFile(path)
		if err != nil {
			logger.Error("failed to load bucket config", "path", path, "error", err)
			os.Exit(1)
		}
		if p, ok := cfg.Buckets["default"]; ok {
			policy = p
		}
		if cfg.Prefix != "" {
			opts = append(opts, tokenbucket.WithPrefix(cfg.Prefix))
		}
		opts = append(opts, tokenbucket.WithTimeout(cfg.TimeoutDuration(100*time.Millisecond)))
	}

	registry := prometheus.NewRegistry()
	opts = append(opts, tokenbucket.WithRecorder(tokenbucket.NewPrometheusRecorder(registry)))

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	store, err := tokenbucket.NewRedisStore(client, opts...)
	if err != nil {
		logger.Error("failed to connect to redis", "addr", redisAddr, "error", err)
		os.Exit(1)
	}

	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	http.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		// Bucket handles are stateless, so building one per request is cheap.
		bucket, err := tokenbucket.NewBucket(store, policy.ToBucketConfig("ip_"+r.RemoteAddr))
		if err != nil {
			logger.Error("invalid bucket config", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		remaining, err := bucket.Consume(r.Context(), 1)

		var denied *tokenbucket.InsufficientTokensError
		switch {
		case errors.As(err, &denied):
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%.2f", denied.Tokens))
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("Rate limit exceeded\n"))
			return
		case err != nil:
			// Fail open: allow traffic when the store is unreachable.
			logger.Error("limiter error", "error", err)
		default:
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%.2f", remaining))
		}

		w.Write([]byte("Pong!\n"))
	})

	logger.Info("server listening", "addr", ":8080", "redis", redisAddr)
	if err := http.ListenAndServe(":8080", nil); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
