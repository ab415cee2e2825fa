package client

import "time"

// RetryPolicy bounds the retry loop around a single request: a fixed number
// of attempts with exponential backoff clamped between MinDelay and MaxDelay.
type RetryPolicy struct {
	MaxAttempts int
	MinDelay    time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy matches the behavior every vendor module shipped with:
// three attempts, 1s doubling up to 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		MinDelay:    1 * time.Second,
		MaxDelay:    10 * time.Second,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	q := p
	if q.MaxAttempts <= 0 {
		q.MaxAttempts = 1
	}

	if q.MinDelay <= 0 {
		q.MinDelay = time.Second
	}

	if q.MaxDelay < q.MinDelay {
		q.MaxDelay = q.MinDelay
	}

	return q
}

// Delay returns the backoff before the given retry (attempt is 1-based and
// counts completed attempts).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := p.MinDelay << (attempt - 1)
	if d > p.MaxDelay || d <= 0 {
		d = p.MaxDelay
	}

	return d
}
