package net

import "time"

// EventType identifies what a transport service call observed.
type EventType int

const (
	EventNone EventType = iota
	EventConnect
	EventReceive
	EventDisconnect
	EventDisconnectTimeout
)

// String reports a short label for logs.
func (t EventType) String() string {
	switch t {
	case EventConnect:
		return "connect"
	case EventReceive:
		return "receive"
	case EventDisconnect:
		return "disconnect"
	case EventDisconnectTimeout:
		return "disconnect-timeout"
	default:
		return "none"
	}
}

// Event is one transport occurrence. Peer is the transport-assigned
// peer index and doubles as the ack-table client id. Payload is only
// set for EventReceive and belongs to the receiver until the next
// service call.
type Event struct {
	Type    EventType
	Peer    uint32
	Channel uint8
	Payload []byte
}

// PacketFlag selects the outbound delivery class.
type PacketFlag uint32

const (
	// PacketReliable delivers in order with retransmission.
	PacketReliable PacketFlag = iota
	// PacketUnsequenced delivers without ordering guarantees. Adapters
	// over ordered transports treat this as advisory.
	PacketUnsequenced
)

// Host is the transport surface the engine depends on, shaped after a
// reliable-UDP host: a single service loop drains events while sends
// may originate from the engine goroutine. Implementations must
// tolerate Service and Send running on different goroutines.
type Host interface {
	// Service waits up to timeout for the next event. The second
	// return is false when no event arrived within the window.
	Service(timeout time.Duration) (Event, bool)
	// Send queues payload to the peer on the given logical channel.
	Send(peer uint32, channel uint8, flags PacketFlag, payload []byte) error
	// Flush pushes queued packets toward the sockets.
	Flush()
	// Peers lists the currently connected peer indices.
	Peers() []uint32
	// MaxPeers reports the configured peer capacity.
	MaxPeers() int
	// Close tears the host down and unblocks Service.
	Close() error
}
