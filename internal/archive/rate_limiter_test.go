package archive

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterAllowsBurstUpToCapacity(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		start := time.Now()
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("Expected token %d immediately, got %v", i, err)
		}
		if time.Since(start) > 100*time.Millisecond {
			t.Errorf("Expected token %d without delay", i)
		}
	}
}

func TestRateLimiterWaitRespectsContext(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	ctx := context.Background()

	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("Expected first token, got %v", err)
	}

	// Bucket is empty and refills hourly; a short deadline must abort Wait.
	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx)
	if err != context.DeadlineExceeded {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
}

func TestRateLimiterRefills(t *testing.T) {
	rl := NewRateLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("Expected first token, got %v", err)
	}
	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("Expected refilled token, got %v", err)
	}
}
