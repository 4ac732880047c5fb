package telemetry

import (
	"sync"
	"sync/atomic"
)

// Counters is an in-memory Metrics implementation backed by per-key
// atomics. Safe from any goroutine.
type Counters struct {
	mu     sync.RWMutex
	values map[string]*atomic.Uint64
}

// NewCounters constructs an empty counter set.
func NewCounters() *Counters {
	return &Counters{values: make(map[string]*atomic.Uint64)}
}

func (c *Counters) cell(key string) *atomic.Uint64 {
	c.mu.RLock()
	cell, ok := c.values[key]
	c.mu.RUnlock()
	if ok {
		return cell
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if cell, ok = c.values[key]; ok {
		return cell
	}
	cell = new(atomic.Uint64)
	c.values[key] = cell
	return cell
}

// Add increments the counter for key.
func (c *Counters) Add(key string, delta uint64) {
	c.cell(key).Add(delta)
}

// Store overwrites the counter for key.
func (c *Counters) Store(key string, value uint64) {
	c.cell(key).Store(value)
}

// Get loads the counter for key, zero when absent.
func (c *Counters) Get(key string) uint64 {
	c.mu.RLock()
	cell, ok := c.values[key]
	c.mu.RUnlock()
	if !ok {
		return 0
	}
	return cell.Load()
}

// Snapshot copies the current counter values.
func (c *Counters) Snapshot() map[string]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]uint64, len(c.values))
	for key, cell := range c.values {
		out[key] = cell.Load()
	}
	return out
}

var _ Metrics = (*Counters)(nil)
