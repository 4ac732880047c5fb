package sim

import "sync/atomic"

// DefaultMaxPeers mirrors the transport's default peer capacity. The
// table length must match the transport's configured maximum so peer
// indices can be used directly as table indices.
const DefaultMaxPeers = 64

// AckTable tracks, per client, the last input sequence received off
// the wire and the last one applied by the simulation. The receiver
// worker is the only writer of the received column and the engine loop
// the only writer of the applied column; every cell is independently
// atomic, so readers may see the pair momentarily out of step. Ids at
// or beyond the table length are ignored.
type AckTable struct {
	received []atomic.Uint32
	applied  []atomic.Uint32
}

// NewAckTable constructs a zeroed table for n peers. Sizes below 1
// fall back to DefaultMaxPeers.
func NewAckTable(n int) *AckTable {
	if n < 1 {
		n = DefaultMaxPeers
	}
	return &AckTable{
		received: make([]atomic.Uint32, n),
		applied:  make([]atomic.Uint32, n),
	}
}

// Size reports the number of peer slots.
func (t *AckTable) Size() int {
	if t == nil {
		return 0
	}
	return len(t.received)
}

func (t *AckTable) inRange(clientID uint32) bool {
	return t != nil && clientID < uint32(len(t.received))
}

// RecordReceived stores the latest sequence seen off the wire for the
// client. Reports false for out-of-range ids.
func (t *AckTable) RecordReceived(clientID, seq uint32) bool {
	if !t.inRange(clientID) {
		return false
	}
	t.received[clientID].Store(seq)
	return true
}

// RecordApplied stores the latest sequence the simulation applied.
// Reports false for out-of-range ids.
func (t *AckTable) RecordApplied(clientID, seq uint32) bool {
	if !t.inRange(clientID) {
		return false
	}
	t.applied[clientID].Store(seq)
	return true
}

// Received loads the last received sequence for the client, zero when
// out of range.
func (t *AckTable) Received(clientID uint32) uint32 {
	if !t.inRange(clientID) {
		return 0
	}
	return t.received[clientID].Load()
}

// Applied loads the last applied sequence for the client, zero when
// out of range.
func (t *AckTable) Applied(clientID uint32) uint32 {
	if !t.inRange(clientID) {
		return 0
	}
	return t.applied[clientID].Load()
}

// Reset zeroes both columns. Called on engine startup; disconnects do
// not reset entries, a reconnecting peer with the same id overwrites.
func (t *AckTable) Reset() {
	if t == nil {
		return
	}
	for i := range t.received {
		t.received[i].Store(0)
		t.applied[i].Store(0)
	}
}
