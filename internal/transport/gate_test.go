package transport

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGateBoundsConcurrency(t *testing.T) {
	g := NewGate(2, 0)
	ctx := context.Background()

	if err := g.Acquire(ctx); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	if err := g.Acquire(ctx); err != nil {
		t.Fatalf("second acquire failed: %v", err)
	}

	blocked, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := g.Acquire(blocked); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("third acquire = %v, want deadline exceeded", err)
	}

	g.Release()
	if err := g.Acquire(ctx); err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
}

func TestGateCanceledContext(t *testing.T) {
	g := NewGate(1, 0)
	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("acquire on canceled context = %v, want context.Canceled", err)
	}
}

func TestGateMinimumCapacity(t *testing.T) {
	g := NewGate(0, 0)
	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	g.Release()
}

func TestGateRateLimiterReleasesSlotOnCancel(t *testing.T) {
	// A limiter that can never fire keeps Acquire parked in Wait; the
	// slot must be returned when the context gives up.
	g := NewGate(1, 0.0001)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	// First token is available immediately.
	if err := g.Acquire(ctx); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	g.Release()

	if err := g.Acquire(ctx); err == nil {
		t.Fatal("second acquire succeeded, want rate limit wait to expire")
	}

	// The slot freed inside Acquire must be usable again.
	ok, cancelOK := context.WithTimeout(context.Background(), time.Second)
	defer cancelOK()
	g.limiter.SetLimit(1000)
	if err := g.Acquire(ok); err != nil {
		t.Fatalf("acquire after failed wait: %v", err)
	}
}
