package tokenbucket

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientTokens is returned (wrapped in an
	// *InsufficientTokensError) when a bucket cannot cover the requested cost.
	ErrInsufficientTokens = errors.New("insufficient tokens")

	// ErrInvalidCapacity is returned when a bucket is created with a
	// non-positive capacity.
	ErrInvalidCapacity = errors.New("bucket capacity must be positive")

	// ErrInvalidRefillRate is returned when a bucket is created with a
	// non-positive refill rate.
	ErrInvalidRefillRate = errors.New("refill rate must be positive")

	// ErrInvalidID is returned when a bucket is created with an empty id.
	ErrInvalidID = errors.New("bucket id cannot be empty")

	// ErrInvalidCost is returned when Consume is called with a negative cost.
	ErrInvalidCost = errors.New("cost cannot be negative")
)

// InsufficientTokensError reports a denied consumption. It carries the
// bucket's identity, the attempted cost, and the token balance after refill so
// the caller can decide on backoff without a second round trip.
type InsufficientTokensError struct {
	BucketID string
	Cost     float64
	Tokens   float64
}

func (e *InsufficientTokensError) Error() string {
	return fmt.Sprintf("insufficient tokens in bucket %q: requested %g, have %g", e.BucketID, e.Cost, e.Tokens)
}

// Unwrap makes errors.Is(err, ErrInsufficientTokens) work.
func (e *InsufficientTokensError) Unwrap() error {
	return ErrInsufficientTokens
}
