package sim

// ClientInput is one parsed input sample from a connected client. It
// lives only long enough to travel receiver -> queue -> ring -> apply.
type ClientInput struct {
	ClientID   uint32
	ClientTick uint32
	Seq        uint32
	Buttons    uint32
	AxisX      float32
	AxisY      float32
}

// QueuedInput binds an input to the simulation tick it must be applied
// at. Produced by the receiver worker, consumed by the engine loop.
type QueuedInput struct {
	TargetTick uint64
	Input      ClientInput
}
