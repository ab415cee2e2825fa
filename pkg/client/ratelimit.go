package client

import (
	"context"
	"sync"
	"time"
)

// Limiter is the sleep-based fixed-window rate limiter every vendor client
// uses. Once the window holds the configured number of requests, the next
// call blocks until the oldest request leaves the window, never longer than
// the window itself.
type Limiter struct {
	requests int
	window   time.Duration

	mu     sync.Mutex
	stamps []time.Time

	// Injectable for tests.
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewLimiter creates a limiter allowing requests per window. A non-positive
// request count disables limiting.
func NewLimiter(requests int, window time.Duration) *Limiter {
	return &Limiter{
		requests: requests,
		window:   window,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Wait blocks until a request slot is free, then claims it. It returns early
// only when ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.requests <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	if len(l.stamps) >= l.requests {
		wait := l.window - now.Sub(l.stamps[0])
		if wait > 0 {
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
		}

		now = l.now()
		l.prune(now)
	}

	l.stamps = append(l.stamps, now)

	return nil
}

// prune drops timestamps older than the window. Caller holds the lock.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)

	idx := 0
	for idx < len(l.stamps) && !l.stamps[idx].After(cutoff) {
		idx++
	}

	l.stamps = l.stamps[idx:]
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
