package clock

import (
	"testing"
	"time"
)

func TestMonotonicNeverRetreats(t *testing.T) {
	c := NewMonotonic()
	last := c.NowNanos()
	for i := 0; i < 1000; i++ {
		now := c.NowNanos()
		if now < last {
			t.Fatalf("clock retreated: %d -> %d", last, now)
		}
		last = now
	}
}

func TestSleepUntilReachesDeadline(t *testing.T) {
	c := NewMonotonic()
	deadline := c.NowNanos() + uint64(5*time.Millisecond)
	c.SleepUntil(deadline)
	if now := c.NowNanos(); now < deadline {
		t.Fatalf("woke before deadline: now=%d deadline=%d", now, deadline)
	}
}

func TestSleepUntilPastDeadlineReturnsImmediately(t *testing.T) {
	c := NewMonotonic()
	start := time.Now()
	c.SleepUntil(0)
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("expected immediate return, took %v", elapsed)
	}
}
