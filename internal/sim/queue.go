package sim

import "sync"

// InputQueue hands parsed inputs from the receiver worker to the
// engine loop. Exactly one producer and one consumer. The drain swaps
// slice headers under the lock, so the consumer never holds the mutex
// for the length of the work.
type InputQueue struct {
	mu      sync.Mutex
	pending []QueuedInput
}

// NewInputQueue constructs an empty queue.
func NewInputQueue() *InputQueue {
	return &InputQueue{}
}

// Push stages one input.
func (q *InputQueue) Push(in QueuedInput) {
	q.mu.Lock()
	q.pending = append(q.pending, in)
	q.mu.Unlock()
}

// Drain exchanges the staged inputs for scratch (truncated to zero
// length) in O(1) and returns them in arrival order. Feed the previous
// return value back in as scratch to reuse both backing arrays across
// ticks. Inputs pushed concurrently with the swap land in the next
// drain.
func (q *InputQueue) Drain(scratch []QueuedInput) []QueuedInput {
	scratch = scratch[:0]
	q.mu.Lock()
	out := q.pending
	q.pending = scratch
	q.mu.Unlock()
	return out
}

// Len reports the number of staged inputs.
func (q *InputQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
