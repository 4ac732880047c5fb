package net

import (
	"sync/atomic"
	"time"

	"netforge/internal/net/proto"
	"netforge/internal/sim"
	"netforge/internal/telemetry"
)

const serviceTimeout = time.Millisecond

// Metric names published by the receiver.
const (
	metricPacketsReceived = "net_packets_received_total"
	metricPacketsRejected = "net_packets_rejected_total"
	metricPeerConnects    = "net_peer_connects_total"
	metricPeerDisconnects = "net_peer_disconnects_total"
)

// ReceiverConfig tunes the intake worker.
type ReceiverConfig struct {
	// InputDelayTicks is added to the engine's current tick to stamp
	// each decoded input's target tick.
	InputDelayTicks uint64
	Logger          telemetry.Logger
	Metrics         telemetry.Metrics
}

// Receiver drains transport events on its own goroutine and hands
// decoded inputs to the engine through its queue. It is the only
// writer of the per-client received acks and the only reader of the
// engine's tick id outside the engine goroutine.
type Receiver struct {
	host    Host
	engine  *sim.Engine
	delay   uint64
	logger  telemetry.Logger
	metrics telemetry.Metrics

	running atomic.Bool
	done    chan struct{}
}

// NewReceiver wires an intake worker to a host and engine. Neither
// may be nil.
func NewReceiver(host Host, engine *sim.Engine, cfg ReceiverConfig) *Receiver {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	return &Receiver{
		host:    host,
		engine:  engine,
		delay:   cfg.InputDelayTicks,
		logger:  logger,
		metrics: metrics,
	}
}

// Start launches the service loop. Calling Start on a running
// receiver is a no-op.
func (r *Receiver) Start() {
	if r == nil || !r.running.CompareAndSwap(false, true) {
		return
	}
	r.done = make(chan struct{})
	go r.loop()
}

// Stop asks the loop to exit and waits for it to drain its current
// service call. Safe to call more than once.
func (r *Receiver) Stop() {
	if r == nil || !r.running.CompareAndSwap(true, false) {
		return
	}
	<-r.done
}

func (r *Receiver) loop() {
	defer close(r.done)
	for r.running.Load() {
		event, ok := r.host.Service(serviceTimeout)
		if !ok {
			continue
		}
		switch event.Type {
		case EventConnect:
			r.metrics.Add(metricPeerConnects, 1)
			r.logger.Infof("peer %d connected", event.Peer)
		case EventReceive:
			r.handleReceive(event)
		case EventDisconnect:
			r.metrics.Add(metricPeerDisconnects, 1)
			r.logger.Infof("peer %d disconnected", event.Peer)
		case EventDisconnectTimeout:
			r.metrics.Add(metricPeerDisconnects, 1)
			r.logger.Infof("peer %d timed out", event.Peer)
		}
	}
}

func (r *Receiver) handleReceive(event Event) {
	input, err := proto.DecodeClientInput(event.Payload, event.Peer)
	if err != nil {
		r.metrics.Add(metricPacketsRejected, 1)
		r.logger.Warnf("peer %d sent invalid input (%d bytes): %v", event.Peer, len(event.Payload), err)
		return
	}

	r.engine.Acks().RecordReceived(input.ClientID, input.Seq)
	r.engine.Queue().Push(sim.QueuedInput{
		TargetTick: r.engine.SimTick() + r.delay,
		Input:      input,
	})
	r.metrics.Add(metricPacketsReceived, 1)
}
