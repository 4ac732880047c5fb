package sim

import (
	"errors"
	"fmt"
	"sync/atomic"

	"netforge/internal/clock"
	"netforge/internal/telemetry"
)

const (
	// DefaultSimHz is the fallback simulation rate.
	DefaultSimHz = 60
	// DefaultNetHz is the fallback network emission rate.
	DefaultNetHz = 20
	// DefaultInputDelayTicks binds received inputs to the next tick.
	DefaultInputDelayTicks = 1

	// maxCatchUpTicks bounds how many ticks a single frame may execute
	// before the backlog is dropped. Spiral-of-death guard.
	maxCatchUpTicks = 5
	// maxFrameClampNs caps the measured frame time so a debugger pause
	// or machine suspend does not turn into an enormous backlog.
	maxFrameClampNs = uint64(250_000_000)

	nanosPerSecond = uint64(1_000_000_000)
)

// Engine metric keys.
const (
	metricSimTicksTotal    = "sim_ticks_total"
	metricNetTicksTotal    = "net_ticks_total"
	metricSimBacklogDrops  = "sim_backlog_drops_total"
	metricNetBacklogDrops  = "net_backlog_drops_total"
	metricInputsScheduled  = "inputs_scheduled_total"
	metricInputsLateOnRing = "inputs_late_total"
	metricTickDurationNs   = "sim_tick_duration_ns"
)

// Config tunes the engine loop. Zero or negative rates fall back to
// the defaults.
type Config struct {
	SimHz        int
	NetHz        int
	RingCapacity int
	MaxPeers     int
	Clock        clock.Clock
	Logger       telemetry.Logger
	Metrics      telemetry.Metrics
}

func (c Config) normalized() Config {
	if c.SimHz <= 0 {
		c.SimHz = DefaultSimHz
	}
	if c.NetHz <= 0 {
		c.NetHz = DefaultNetHz
	}
	if c.RingCapacity < 1 {
		c.RingCapacity = DefaultRingCapacity
	}
	if c.MaxPeers < 1 {
		c.MaxPeers = DefaultMaxPeers
	}
	if c.Clock == nil {
		c.Clock = clock.NewMonotonic()
	}
	if c.Logger == nil {
		c.Logger = telemetry.NopLogger()
	}
	if c.Metrics == nil {
		c.Metrics = telemetry.NopMetrics()
	}
	return c
}

// Engine owns the fixed-timestep loop: two independent accumulators
// drive the simulation and network clocks off one monotonic timebase,
// so neither rate leaks jitter into the other. The engine exclusively
// owns the ring; the queue is shared with the receiver worker; the ack
// table is shared per cell.
type Engine struct {
	cfg     Config
	clock   clock.Clock
	logger  telemetry.Logger
	metrics telemetry.Metrics

	queue *InputQueue
	ring  *ScheduledRing
	acks  *AckTable

	// simTick has one writer (the loop) and is read by the receiver
	// worker to stamp target ticks; a slightly stale read only delays
	// apply by a tick.
	simTick atomic.Uint64
	netTick uint64
	running atomic.Bool

	simPeriodNs uint64
	netPeriodNs uint64
	simDt       float64

	accSimNs uint64
	accNetNs uint64
	lastNs   uint64

	scratch []QueuedInput
}

// NewEngine constructs an engine from cfg, falling back to defaults
// for invalid rates and capacities.
func NewEngine(cfg Config) *Engine {
	cfg = cfg.normalized()
	e := &Engine{
		cfg:     cfg,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		queue:   NewInputQueue(),
		ring:    NewScheduledRing(cfg.RingCapacity),
		acks:    NewAckTable(cfg.MaxPeers),
	}
	e.simPeriodNs = nanosPerSecond / uint64(cfg.SimHz)
	e.netPeriodNs = nanosPerSecond / uint64(cfg.NetHz)
	e.simDt = 1.0 / float64(cfg.SimHz)
	return e
}

// Queue returns the receiver-to-simulation handoff queue.
func (e *Engine) Queue() *InputQueue {
	return e.queue
}

// Acks returns the per-client acknowledgement table.
func (e *Engine) Acks() *AckTable {
	return e.acks
}

// SimTick loads the current simulation tick id. Safe from any
// goroutine.
func (e *Engine) SimTick() uint64 {
	return e.simTick.Load()
}

// NetTick reports the network tick id. Engine goroutine only.
func (e *Engine) NetTick() uint64 {
	return e.netTick
}

// SimDt reports the fixed simulation timestep in seconds.
func (e *Engine) SimDt() float64 {
	return e.simDt
}

// Running reports whether the loop is live.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Stop requests a cooperative shutdown. Safe from any goroutine.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// Run executes Load, drives the loop until Stop, then executes Unload.
// A Load failure aborts before the loop and is returned wrapped;
// Unload does not run in that case, the host cleans up what it managed
// to create.
func (e *Engine) Run(cb Callbacks) error {
	if cb == nil {
		return errors.New("sim: nil callbacks")
	}
	e.acks.Reset()
	e.running.Store(true)
	if err := cb.Load(); err != nil {
		e.running.Store(false)
		return fmt.Errorf("load: %w", err)
	}

	e.lastNs = e.clock.NowNanos()
	e.accSimNs = 0
	e.accNetNs = 0
	for e.running.Load() {
		e.stepFrame(cb)
	}

	cb.Unload()
	e.ring.Reset()
	e.scratch = e.queue.Drain(e.scratch)
	return nil
}

// stepFrame performs one loop iteration: measure the frame, advance
// both accumulators, run due ticks, then sleep to the nearer of the
// next sim and net boundaries.
func (e *Engine) stepFrame(cb Callbacks) {
	now := e.clock.NowNanos()
	frame := now - e.lastNs
	e.lastNs = now
	if frame > maxFrameClampNs {
		frame = maxFrameClampNs
	}

	e.advance(cb, frame)

	sleep := e.nextDeadlineNs()
	if sleep > 0 {
		e.clock.SleepUntil(e.clock.NowNanos() + sleep)
	}
}

// advance applies one frame's worth of elapsed time to both clocks.
// Split from stepFrame so tests can drive the loop with synthetic
// frame times.
func (e *Engine) advance(cb Callbacks, frameNs uint64) {
	e.accSimNs += frameNs
	e.accNetNs += frameNs

	catchUp := 0
	for e.accSimNs >= e.simPeriodNs && catchUp < maxCatchUpTicks {
		e.simulationTick(cb)
		e.accSimNs -= e.simPeriodNs
		catchUp++
	}
	if e.accSimNs >= e.simPeriodNs {
		e.logger.Warnf("sim backlog exceeds catch-up limit (%d ticks); dropping surplus", maxCatchUpTicks)
		e.metrics.Add(metricSimBacklogDrops, 1)
		// Keep exactly one period pending so the next frame ticks
		// immediately without repeating the overload.
		e.accSimNs = e.simPeriodNs
	}

	catchUp = 0
	for e.accNetNs >= e.netPeriodNs && catchUp < maxCatchUpTicks {
		e.networkTick(cb)
		e.accNetNs -= e.netPeriodNs
		catchUp++
	}
	if e.accNetNs >= e.netPeriodNs {
		e.logger.Warnf("net backlog exceeds catch-up limit (%d ticks); dropping surplus", maxCatchUpTicks)
		e.metrics.Add(metricNetBacklogDrops, 1)
		e.accNetNs = e.netPeriodNs
	}
}

// simulationTick advances the simulation by one fixed step: publish
// the new tick id, drain the handoff queue, file the drained inputs in
// the ring by target tick, then apply the inputs due this tick and
// hand them to the host callback.
func (e *Engine) simulationTick(cb Callbacks) {
	tick := e.simTick.Add(1)
	start := e.clock.NowNanos()

	e.scratch = e.queue.Drain(e.scratch)
	for _, queued := range e.scratch {
		if queued.TargetTick < tick {
			// Arrived past its tick; the stamp check drops it on Take.
			e.metrics.Add(metricInputsLateOnRing, 1)
		}
		e.ring.Schedule(queued.TargetTick, queued.Input)
		e.metrics.Add(metricInputsScheduled, 1)
	}

	inputs := e.ring.Take(tick)
	for i := range inputs {
		e.acks.RecordApplied(inputs[i].ClientID, inputs[i].Seq)
	}
	cb.SimulationUpdate(e.simDt, inputs)

	e.metrics.Add(metricSimTicksTotal, 1)
	e.metrics.Store(metricTickDurationNs, e.clock.NowNanos()-start)
}

func (e *Engine) networkTick(cb Callbacks) {
	e.netTick++
	cb.NetworkUpdate()
	e.metrics.Add(metricNetTicksTotal, 1)
}

// nextDeadlineNs reports how long to sleep before the nearer of the
// next sim and net tick boundaries, zero when either is already due.
func (e *Engine) nextDeadlineNs() uint64 {
	var simRemaining, netRemaining uint64
	if e.accSimNs < e.simPeriodNs {
		simRemaining = e.simPeriodNs - e.accSimNs
	}
	if e.accNetNs < e.netPeriodNs {
		netRemaining = e.netPeriodNs - e.accNetNs
	}
	if simRemaining == 0 || netRemaining == 0 {
		return 0
	}
	if simRemaining < netRemaining {
		return simRemaining
	}
	return netRemaining
}
