package pipeline

import (
	"sync"
	"time"
)

// RateLimiter is a burst token bucket: the bucket snaps back to full capacity
// once per refill period instead of trickling tokens in continuously. The
// upstream feed tolerates short bursts but bans sustained connection storms,
// so callers get up to `tokens` dials back-to-back and then wait out the
// remainder of the period.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int64
	threshold  int64
	period     time.Duration
	lastRefill time.Time
}

// NewRateLimiter creates a bucket holding `tokens` that refills to full every
// `period`. The bucket starts empty; the first refill happens one period
// after construction.
func NewRateLimiter(tokens int64, period time.Duration) *RateLimiter {
	return &RateLimiter{
		threshold:  tokens,
		period:     period,
		lastRefill: time.Now(),
	}
}

// Acquire blocks until a token is available. There is no upper bound on the
// wait; callers are background connection-setup loops.
func (r *RateLimiter) Acquire() {
	for {
		if r.TryAcquire() {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
}

// TryAcquire takes a token if one is available and reports whether it did.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.Sub(r.lastRefill) >= r.period {
		r.tokens = r.threshold
		r.lastRefill = now
	}

	if r.tokens <= 0 {
		return false
	}
	r.tokens--
	return true
}
