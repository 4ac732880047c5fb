package sim

// DefaultRingCapacity holds roughly 4.2 s of ticks at 60 Hz, far beyond
// the default input delay of one tick.
const DefaultRingCapacity = 256

type scheduledSlot struct {
	tick   uint64
	inputs []ClientInput
}

// ScheduledRing stores inputs keyed by the absolute simulation tick
// they are due at. Slots are addressed tick mod capacity and stamped
// with the tick they currently represent; a mismatched stamp marks the
// slot's contents as stale wrap-around data. Only the engine goroutine
// touches the ring.
type ScheduledRing struct {
	slots []scheduledSlot
}

// NewScheduledRing constructs a ring with the given slot count.
// Capacities below 1 fall back to DefaultRingCapacity.
func NewScheduledRing(capacity int) *ScheduledRing {
	if capacity < 1 {
		capacity = DefaultRingCapacity
	}
	return &ScheduledRing{slots: make([]scheduledSlot, capacity)}
}

// Capacity reports the number of slots.
func (r *ScheduledRing) Capacity() int {
	if r == nil {
		return 0
	}
	return len(r.slots)
}

// Schedule appends input to the slot for targetTick. A slot still
// stamped with an older tick is lazily reset before the append, which
// is also what silently drops inputs whose tick already passed: their
// slot gets restamped by a later schedule or never matches on Take.
func (r *ScheduledRing) Schedule(targetTick uint64, input ClientInput) {
	slot := &r.slots[targetTick%uint64(len(r.slots))]
	if slot.tick != targetTick {
		slot.tick = targetTick
		slot.inputs = slot.inputs[:0]
	}
	slot.inputs = append(slot.inputs, input)
}

// Take returns the inputs due at currentTick and empties the slot. A
// stale or unstamped slot yields nil. The returned slice aliases the
// slot's backing storage and is valid until the slot's tick comes
// around again, at least Capacity ticks later.
func (r *ScheduledRing) Take(currentTick uint64) []ClientInput {
	slot := &r.slots[currentTick%uint64(len(r.slots))]
	if slot.tick != currentTick || len(slot.inputs) == 0 {
		return nil
	}
	out := slot.inputs
	slot.inputs = slot.inputs[:0]
	return out
}

// Reset clears every slot. Used on engine teardown.
func (r *ScheduledRing) Reset() {
	if r == nil {
		return
	}
	for i := range r.slots {
		r.slots[i].tick = 0
		r.slots[i].inputs = r.slots[i].inputs[:0]
	}
}
