package infra

import (
	"testing"
	"time"
)

func TestRateLimiter_BurstThenDeny(t *testing.T) {
	rl := NewRateLimiter(3, 1)

	for i := 0; i < 3; i++ {
		if !rl.TryAcquire() {
			t.Fatalf("burst token %d should be available", i)
		}
	}

	if rl.TryAcquire() {
		t.Error("fourth token should not be available immediately")
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := NewRateLimiter(1, 50)

	if !rl.TryAcquire() {
		t.Fatal("initial token should be available")
	}
	if rl.TryAcquire() {
		t.Fatal("bucket should be empty")
	}

	time.Sleep(40 * time.Millisecond)

	if !rl.TryAcquire() {
		t.Error("token should have refilled after waiting")
	}
}

func TestRateLimiter_WaitBlocks(t *testing.T) {
	rl := NewRateLimiter(1, 20)
	rl.Wait()

	start := time.Now()
	rl.Wait()
	elapsed := time.Since(start)

	if elapsed < 30*time.Millisecond {
		t.Errorf("second Wait returned after %v, expected to block ~50ms", elapsed)
	}
}
