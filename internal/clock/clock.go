package clock

import "time"

// spinMargin is the residual slept away in a busy-wait. Larger values
// cost CPU; smaller values risk oversleeping past the deadline.
const spinMargin = 200 * time.Microsecond

// Clock supplies monotonic timestamps and deadline sleeps. Engine code
// depends on this interface so tests can substitute a fake.
type Clock interface {
	// NowNanos reports a monotonic timestamp in nanoseconds. It never
	// retreats.
	NowNanos() uint64
	// SleepUntil blocks until NowNanos() >= deadline. A deadline in the
	// past returns immediately.
	SleepUntil(deadline uint64)
}

// Monotonic is the production Clock backed by the runtime's monotonic
// reading of time.Time.
type Monotonic struct {
	epoch time.Time
}

// NewMonotonic constructs a Monotonic clock anchored at the current
// instant.
func NewMonotonic() *Monotonic {
	return &Monotonic{epoch: time.Now()}
}

// NowNanos reports nanoseconds elapsed since the clock was constructed.
func (c *Monotonic) NowNanos() uint64 {
	d := time.Since(c.epoch)
	if d < 0 {
		return 0
	}
	return uint64(d)
}

// SleepUntil sleeps the bulk of the remaining time and spins the final
// margin so wakeups land close to the deadline without the oversleep a
// bare time.Sleep exhibits.
func (c *Monotonic) SleepUntil(deadline uint64) {
	for {
		now := c.NowNanos()
		if now >= deadline {
			return
		}
		remaining := time.Duration(deadline - now)
		if remaining > spinMargin {
			time.Sleep(remaining - spinMargin)
			continue
		}
		// Short spin to finish precisely.
	}
}

var _ Clock = (*Monotonic)(nil)
