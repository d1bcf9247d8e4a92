package geo

import (
	"context"
	"sync"
	"time"
)

// Throttle enforces a minimum spacing between outbound calls to a shared
// rate-limited service. The lock is held from Acquire until the release
// function runs, so calls guarded by one Throttle are strictly serialized
// and overlapping callers observe a monotonically advancing timestamp.
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewThrottle creates a Throttle with the given minimum spacing.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval}
}

// Acquire blocks until the spacing since the previous call has elapsed,
// then returns a release function. Release stamps the shared timestamp and
// must be called once the guarded call completes, regardless of outcome.
func (t *Throttle) Acquire(ctx context.Context) (release func(), err error) {
	t.mu.Lock()

	if !t.last.IsZero() {
		if wait := t.interval - time.Since(t.last); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				t.mu.Unlock()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return func() {
		t.last = time.Now()
		t.mu.Unlock()
	}, nil
}
