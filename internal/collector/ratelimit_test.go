package collector

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Slept() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.slept...)
}

func TestSlidingWindowLimiter_BurstThenWait(t *testing.T) {
	clock := newFakeClock()
	l := NewSlidingWindowLimiter(3, clock, zerolog.Nop(), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		waited, err := l.Wait(ctx)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if waited != 0 {
			t.Fatalf("call %d waited %v, want 0", i, waited)
		}
	}

	waited, err := l.Wait(ctx)
	if err != nil {
		t.Fatalf("4th call: %v", err)
	}
	if waited != time.Minute {
		t.Errorf("4th call waited %v, want %v", waited, time.Minute)
	}
	if got := l.InWindow(); got != 1 {
		t.Errorf("InWindow after wait = %d, want 1", got)
	}
}

func TestSlidingWindowLimiter_WaitsForOldest(t *testing.T) {
	clock := newFakeClock()
	l := NewSlidingWindowLimiter(3, clock, zerolog.Nop(), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := l.Wait(ctx); err != nil {
			t.Fatal(err)
		}
		clock.Advance(10 * time.Second)
	}
	// now is t0+30s, the oldest call was at t0
	waited, err := l.Wait(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if waited != 30*time.Second {
		t.Errorf("waited %v, want 30s", waited)
	}
	if got := l.InWindow(); got != 3 {
		t.Errorf("InWindow = %d, want 3", got)
	}
}

func TestSlidingWindowLimiter_SpacedCallsNeverWait(t *testing.T) {
	clock := newFakeClock()
	l := NewSlidingWindowLimiter(1, clock, zerolog.Nop(), nil)

	for i := 0; i < 10; i++ {
		if _, err := l.Wait(context.Background()); err != nil {
			t.Fatal(err)
		}
		clock.Advance(61 * time.Second)
	}
	if slept := clock.Slept(); len(slept) != 0 {
		t.Errorf("limiter slept %v, want no sleeps", slept)
	}
}

func TestSlidingWindowLimiter_WindowNeverExceedsCap(t *testing.T) {
	clock := newFakeClock()
	const limit = 5
	l := NewSlidingWindowLimiter(limit, clock, zerolog.Nop(), nil)

	steps := []time.Duration{0, 1, 3, 7, 0, 0, 12, 30, 2, 0, 0, 45, 5, 0, 61, 0, 0, 0, 0, 0, 0}
	for i, s := range steps {
		clock.Advance(s * time.Second)
		if _, err := l.Wait(context.Background()); err != nil {
			t.Fatal(err)
		}
		if got := l.InWindow(); got > limit {
			t.Fatalf("step %d: %d calls in window, cap %d", i, got, limit)
		}
	}
}

func TestSlidingWindowLimiter_CanceledWait(t *testing.T) {
	clock := newFakeClock()
	l := NewSlidingWindowLimiter(1, clock, zerolog.Nop(), nil)
	if _, err := l.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Wait(ctx); err == nil {
		t.Fatal("expected error from canceled wait")
	}
	if got := l.InWindow(); got != 1 {
		t.Errorf("InWindow = %d, want 1 (canceled call not recorded)", got)
	}
}

func TestSlidingWindowLimiter_DefaultLimit(t *testing.T) {
	l := NewSlidingWindowLimiter(0, newFakeClock(), zerolog.Nop(), nil)
	if l.limit != DefaultMaxRequestsPerMin {
		t.Errorf("limit = %d, want %d", l.limit, DefaultMaxRequestsPerMin)
	}
}
