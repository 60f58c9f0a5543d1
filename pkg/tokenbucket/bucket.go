package tokenbucket

import (
	"context"
	"errors"
	"time"
)

// Bucket is a stateless handle on a single token bucket. It carries the
// bucket's identity and policy and delegates every access to the store's
// atomic transition; it holds no token state of its own.
type Bucket struct {
	store      Store
	id         string
	capacity   float64
	refillRate float64
}

// NewBucket validates the configuration and returns a handle for it.
// Validation is eager so that a non-positive capacity or refill rate can never
// reach the transition arithmetic.
func NewBucket(store Store, cfg BucketConfig) (*Bucket, error) {
	if store == nil {
		return nil, errors.New("store cannot be nil")
	}
	if cfg.ID == "" {
		return nil, ErrInvalidID
	}
	if cfg.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if cfg.RefillRate <= 0 {
		return nil, ErrInvalidRefillRate
	}

	return &Bucket{
		store:      store,
		id:         cfg.ID,
		capacity:   cfg.Capacity,
		refillRate: cfg.RefillRate,
	}, nil
}

// Consume debits cost tokens from the bucket and returns the remaining
// balance. When the refilled balance cannot cover the cost it returns the
// balance together with an *InsufficientTokensError; denial is a normal
// outcome, and the elapsed refill is still persisted. Any other error is an
// infrastructure failure propagated from the store.
func (b *Bucket) Consume(ctx context.Context, cost float64) (float64, error) {
	if cost < 0 {
		return 0, ErrInvalidCost
	}

	res, err := b.store.Transition(ctx, b.id, b.capacity, cost, b.refillRate, time.Now().UnixMilli())
	if err != nil {
		return 0, err
	}
	if !res.Admitted {
		return res.Tokens, &InsufficientTokensError{
			BucketID: b.id,
			Cost:     cost,
			Tokens:   res.Tokens,
		}
	}
	return res.Tokens, nil
}

// Tokens returns the current refilled token balance without consuming
// anything. It is a zero-cost transition, so it still resets the refill clock
// and the record's expiry as a side effect.
func (b *Bucket) Tokens(ctx context.Context) (float64, error) {
	res, err := b.store.Transition(ctx, b.id, b.capacity, 0, b.refillRate, time.Now().UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.Tokens, nil
}

// ID returns the bucket id supplied at construction.
func (b *Bucket) ID() string { return b.id }

// Capacity returns the capacity supplied at construction.
func (b *Bucket) Capacity() float64 { return b.capacity }

// RefillRate returns the refill rate, in tokens per minute, supplied at
// construction.
func (b *Bucket) RefillRate() float64 { return b.refillRate }
