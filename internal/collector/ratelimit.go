package collector

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"QuantAI/internal/metrics"
)

// DefaultMaxRequestsPerMin is the provider call cap per rolling minute.
const DefaultMaxRequestsPerMin = 60

const rateWindow = time.Minute

// Clock abstracts time for the rate limiter.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SlidingWindowLimiter caps outbound calls to limit per rolling 60 seconds.
// The lock is held while sleeping, so concurrent callers queue behind it.
type SlidingWindowLimiter struct {
	mu      sync.Mutex
	limit   int
	stamps  []time.Time
	clock   Clock
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func NewSlidingWindowLimiter(limit int, clock Clock, logger zerolog.Logger, m *metrics.Metrics) *SlidingWindowLimiter {
	if limit <= 0 {
		limit = DefaultMaxRequestsPerMin
	}
	if clock == nil {
		clock = realClock{}
	}
	return &SlidingWindowLimiter{
		limit:   limit,
		stamps:  make([]time.Time, 0, limit),
		clock:   clock,
		logger:  logger,
		metrics: m,
	}
}

// Wait blocks until a call may be made and records it. It returns how long
// it slept. A canceled context aborts the wait without recording a call.
func (l *SlidingWindowLimiter) Wait(ctx context.Context) (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.prune(now)

	var waited time.Duration
	if len(l.stamps) >= l.limit {
		wait := rateWindow - now.Sub(l.stamps[0])
		if wait > 0 {
			l.logger.Warn().
				Dur("sleep", wait).
				Int("in_window", len(l.stamps)).
				Msg("rate limit reached, sleeping")
			if err := l.clock.Sleep(ctx, wait); err != nil {
				return 0, err
			}
			waited = wait
			l.metrics.ObserveRateLimitWait(wait)
		}
		l.prune(l.clock.Now())
	}

	l.stamps = append(l.stamps, l.clock.Now())
	return waited, nil
}

// InWindow returns the number of calls recorded in the current window.
func (l *SlidingWindowLimiter) InWindow() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.clock.Now())
	return len(l.stamps)
}

// prune drops timestamps at least one window old. Stamps are kept in call order.
func (l *SlidingWindowLimiter) prune(now time.Time) {
	i := 0
	for i < len(l.stamps) && now.Sub(l.stamps[i]) >= rateWindow {
		i++
	}
	if i > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[i:]...)
	}
}
