package sim

// Callbacks is the host surface the engine drives. Load runs once
// before the loop and is where the host creates its transport and
// spawns the receiver worker; Unload runs once after the loop and must
// join the worker before tearing the transport down. The engine never
// introspects what the host does in between.
type Callbacks interface {
	Load() error
	Unload()
	// SimulationUpdate fires once per simulation tick with the fixed
	// timestep and the inputs scheduled for that tick, already
	// acknowledged in the ack table. The slice aliases ring storage
	// and is only valid for the duration of the call.
	SimulationUpdate(dt float64, inputs []ClientInput)
	// NetworkUpdate fires once per network tick.
	NetworkUpdate()
}
