package tokenbucket

import (
	"math"
)

// millisPerMinute converts a per-minute refill rate into a per-millisecond one.
const millisPerMinute = 60_000

// transition is the bucket state machine shared by every backend. Given the
// stored state (nil when no record exists), it computes the refilled balance,
// decides admission, and returns the new state together with the TTL, in
// seconds, after which the stored record would have refilled to capacity.
//
// A nil state is treated as a bucket that is full right now. The elapsed time
// is clamped to zero so that a caller clock behind the stored timestamp can
// never drain the bucket below its last persisted balance.
//
// A TTL of zero means the bucket is full after this transition, so the record
// should not be persisted at all: an absent record and a full bucket are
// indistinguishable.
func transition(st *State, capacity, cost, refillRate float64, nowMS int64) (State, Result, int64) {
	tokens := capacity
	lastRefilledAt := nowMS
	if st != nil {
		tokens = st.Tokens
		lastRefilledAt = st.LastRefilledAt
	}

	elapsed := nowMS - lastRefilledAt
	if elapsed < 0 {
		elapsed = 0
	}

	ratePerMS := refillRate / millisPerMinute
	refilled := math.Min(capacity, tokens+ratePerMS*float64(elapsed))

	admitted := cost <= refilled
	newTokens := refilled
	if admitted {
		newTokens = refilled - cost
	}

	ttlSeconds := int64(math.Ceil(((capacity - newTokens) / ratePerMS) / 1000))

	newState := State{
		Tokens:         newTokens,
		LastRefilledAt: nowMS,
	}
	return newState, Result{Admitted: admitted, Tokens: newTokens}, ttlSeconds
}
