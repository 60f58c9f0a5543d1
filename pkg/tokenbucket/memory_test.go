package tokenbucket

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_Consume_Basics(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	bucket, err := NewBucket(store, BucketConfig{ID: "user_1", Capacity: 10, RefillRate: 60})
	if err != nil {
		t.Fatalf("NewBucket failed: %v", err)
	}

	remaining, err := bucket.Consume(ctx, 1)
	if err != nil {
		t.Errorf("Expected request to be admitted, got error: %v", err)
	}
	if remaining != 9 {
		t.Errorf("Expected 9 remaining tokens, got %g", remaining)
	}
}

func TestMemoryStore_Exhaustion(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	bucket, _ := NewBucket(store, BucketConfig{ID: "user_1", Capacity: 5, RefillRate: 1})

	for i := 0; i < 5; i++ {
		if _, err := bucket.Consume(ctx, 1); err != nil {
			t.Fatalf("Request %d was unexpectedly denied: %v", i, err)
		}
	}

	_, err := bucket.Consume(ctx, 1)
	if !errors.Is(err, ErrInsufficientTokens) {
		t.Errorf("The 6th request should have been denied (Capacity=5), got: %v", err)
	}
}

func TestMemoryStore_Refill(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// 600 tokens/minute is one token every 100ms.
	bucket, _ := NewBucket(store, BucketConfig{ID: "user_1", Capacity: 1, RefillRate: 600})

	bucket.Consume(ctx, 1)

	if _, err := bucket.Consume(ctx, 1); err == nil {
		t.Fatal("Should be denied immediately")
	}

	time.Sleep(150 * time.Millisecond)

	if _, err := bucket.Consume(ctx, 1); err != nil {
		t.Errorf("Refill failed! Waited 150ms for a 100ms token but was denied: %v", err)
	}
}

func TestMemoryStore_ExpiredEntryReadsAsFull(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now().UnixMilli()

	res, err := store.Transition(context.Background(), "expiring", 200, 10, 100, now)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Admitted || res.Tokens != 190 {
		t.Fatalf("Expected admitted with 190 tokens, got %+v", res)
	}

	// 10 tokens to full at 100/min expires the record after 6s. Past that
	// instant the entry must behave exactly like an absent record.
	res, err = store.Transition(context.Background(), "expiring", 200, 0, 100, now+6_000)
	if err != nil {
		t.Fatal(err)
	}
	if res.Tokens != 200 {
		t.Errorf("Expected a full bucket after expiry, got %g tokens", res.Tokens)
	}
}

func TestMemoryStore_FullBucketLeavesNoEntry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now().UnixMilli()

	res, err := store.Transition(context.Background(), "denied", 200, 201, 100, now)
	if err != nil {
		t.Fatal(err)
	}
	if res.Admitted {
		t.Error("Expected denial for a cost above capacity")
	}

	store.mu.Lock()
	_, exists := store.buckets["denied"]
	store.mu.Unlock()
	if exists {
		t.Error("A bucket that was absent and remains full should leave no entry")
	}
}

// Race Test
func TestMemoryStore_ThreadSafety(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	bucket, _ := NewBucket(store, BucketConfig{ID: "user_1", Capacity: 100, RefillRate: 1})

	var wg sync.WaitGroup
	wg.Add(100)
	for i := 0; i < 100; i++ {
		go func() {
			defer wg.Done()
			bucket.Consume(ctx, 1)
		}()
	}
	wg.Wait()

	_, err := bucket.Consume(ctx, 1)
	if err == nil {
		t.Errorf("Expected bucket to be exhausted after 100 concurrent requests, but 101st was admitted")
	}
}

func BenchmarkMemoryStore_Consume(b *testing.B) {
	ctx := context.Background()
	store := NewMemoryStore()

	bucket, _ := NewBucket(store, BucketConfig{ID: "user_1", Capacity: 100_000, RefillRate: 60_000})

	for i := 0; i < b.N; i++ {
		bucket.Consume(ctx, 1)
	}
}
