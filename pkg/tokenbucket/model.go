package tokenbucket

import (
	"context"
)

// BucketConfig describes a bucket's identity and policy. It is supplied by the
// caller on every access and never persisted: changing Capacity or RefillRate
// simply changes the math applied on the next access.
type BucketConfig struct {
	// ID uniquely identifies the bucket within the store's key prefix.
	ID string

	// Capacity is the maximum number of tokens the bucket can hold.
	Capacity float64

	// RefillRate is the number of tokens added per minute.
	RefillRate float64
}

// State is the persisted state of a bucket: its current token balance and the
// timestamp of the last transition, in milliseconds since the epoch.
//
// Absence of a stored state is itself a valid state and means the bucket is at
// full capacity (never accessed, or expired after refilling completely).
type State struct {
	Tokens         float64
	LastRefilledAt int64
}

// Result is the outcome of a single bucket transition.
type Result struct {
	// Admitted reports whether the requested cost was debited.
	Admitted bool

	// Tokens is the bucket's token balance after the transition (after refill,
	// and after the debit when admitted).
	Tokens float64
}

// Store executes atomic bucket transitions against some backing state.
//
// Transition performs the whole read-refill-consume-write cycle for the bucket
// identified by id as one indivisible unit with respect to concurrent calls on
// the same id. Implementations must not split it into separate get and set
// round trips. nowMS is the caller-supplied current time in milliseconds since
// the epoch.
type Store interface {
	Transition(ctx context.Context, id string, capacity, cost, refillRate float64, nowMS int64) (Result, error)
}
