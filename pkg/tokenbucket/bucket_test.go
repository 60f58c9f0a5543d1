package tokenbucket

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBucket_Validation(t *testing.T) {
	store := NewMemoryStore()

	tests := []struct {
		name    string
		store   Store
		cfg     BucketConfig
		wantErr error
	}{
		{"empty id", store, BucketConfig{Capacity: 10, RefillRate: 1}, ErrInvalidID},
		{"zero capacity", store, BucketConfig{ID: "b", RefillRate: 1}, ErrInvalidCapacity},
		{"negative capacity", store, BucketConfig{ID: "b", Capacity: -1, RefillRate: 1}, ErrInvalidCapacity},
		{"zero refill rate", store, BucketConfig{ID: "b", Capacity: 10}, ErrInvalidRefillRate},
		{"negative refill rate", store, BucketConfig{ID: "b", Capacity: 10, RefillRate: -5}, ErrInvalidRefillRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBucket(tt.store, tt.cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("nil store", func(t *testing.T) {
		_, err := NewBucket(nil, BucketConfig{ID: "b", Capacity: 10, RefillRate: 1})
		assert.Error(t, err)
	})
}

func TestBucket_Accessors(t *testing.T) {
	bucket, err := NewBucket(NewMemoryStore(), BucketConfig{ID: "api", Capacity: 200, RefillRate: 100})
	require.NoError(t, err)

	assert.Equal(t, "api", bucket.ID())
	assert.Equal(t, 200.0, bucket.Capacity())
	assert.Equal(t, 100.0, bucket.RefillRate())
}

func TestBucket_TokensOnFreshBucket(t *testing.T) {
	bucket, err := NewBucket(NewMemoryStore(), BucketConfig{ID: "fresh", Capacity: 200, RefillRate: 100})
	require.NoError(t, err)

	tokens, err := bucket.Tokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 200.0, tokens, "an unseen bucket reports full capacity")
}

func TestBucket_ConsumeDenialError(t *testing.T) {
	bucket, err := NewBucket(NewMemoryStore(), BucketConfig{ID: "small", Capacity: 5, RefillRate: 1})
	require.NoError(t, err)

	remaining, err := bucket.Consume(context.Background(), 6)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrInsufficientTokens)

	var denied *InsufficientTokensError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, "small", denied.BucketID)
	assert.Equal(t, 6.0, denied.Cost)
	assert.Equal(t, 5.0, denied.Tokens)
	assert.Equal(t, 5.0, remaining, "denial still reports the refilled balance")
}

func TestBucket_ConsumeNegativeCost(t *testing.T) {
	bucket, err := NewBucket(NewMemoryStore(), BucketConfig{ID: "b", Capacity: 5, RefillRate: 1})
	require.NoError(t, err)

	_, err = bucket.Consume(context.Background(), -1)
	assert.ErrorIs(t, err, ErrInvalidCost)
}

func TestBucket_FractionalCost(t *testing.T) {
	bucket, err := NewBucket(NewMemoryStore(), BucketConfig{ID: "frac", Capacity: 1, RefillRate: 1})
	require.NoError(t, err)

	remaining, err := bucket.Consume(context.Background(), 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, remaining, 1e-6)
}
