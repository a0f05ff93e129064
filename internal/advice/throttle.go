package advice

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/semaphore"
)

// DefaultMinRequestInterval is the minimum spacing between upstream calls.
const DefaultMinRequestInterval = 4 * time.Second

// Throttle spaces outbound upstream calls across every caller of the process.
// The upstream enforces account-wide limits, so there is a single gate rather
// than one per user.
type Throttle struct {
	sem      *semaphore.Weighted
	clock    clockwork.Clock
	interval time.Duration
	last     time.Time // guarded by sem
}

// NewThrottle creates a throttle. A negative interval selects the default,
// zero disables spacing, and a nil clock selects the real clock.
func NewThrottle(interval time.Duration, clock clockwork.Clock) *Throttle {
	if interval < 0 {
		interval = DefaultMinRequestInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Throttle{
		sem:      semaphore.NewWeighted(1),
		clock:    clock,
		interval: interval,
	}
}

// Wait blocks until the minimum interval has elapsed since the previous caller
// was released, records the release time, and reports how long it slept.
// Callers are admitted one at a time, so two callers never observe the same
// free slot. If ctx ends first the release time is left untouched.
func (t *Throttle) Wait(ctx context.Context) (time.Duration, error) {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	defer t.sem.Release(1)

	var waited time.Duration
	if !t.last.IsZero() {
		if wait := t.interval - t.clock.Since(t.last); wait > 0 {
			timer := t.clock.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return 0, ctx.Err()
			case <-timer.Chan():
			}
			waited = wait
		}
	}

	t.last = t.clock.Now()
	return waited, nil
}
