package net

import (
	"sync"
	"testing"
	"time"

	"netforge/internal/sim"
	"netforge/internal/telemetry"
	"netforge/logging"
)

// scriptedHost replays a fixed sequence of events and blocks once the
// script is exhausted, like an idle socket.
type scriptedHost struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (h *scriptedHost) Service(timeout time.Duration) (Event, bool) {
	h.mu.Lock()
	if len(h.events) == 0 {
		h.mu.Unlock()
		time.Sleep(timeout)
		return Event{}, false
	}
	event := h.events[0]
	h.events = h.events[1:]
	h.mu.Unlock()
	return event, true
}

func (h *scriptedHost) Send(peer uint32, channel uint8, flags PacketFlag, payload []byte) error {
	return nil
}

func (h *scriptedHost) Flush() {}

func (h *scriptedHost) Peers() []uint32 { return nil }

func (h *scriptedHost) MaxPeers() int { return sim.DefaultMaxPeers }

func (h *scriptedHost) Close() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	return nil
}

func waitForQueue(t *testing.T, engine *sim.Engine, want int) []sim.QueuedInput {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if engine.Queue().Len() >= want {
			return engine.Queue().Drain(nil)
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("queue never reached %d entries", want)
	return nil
}

func TestReceiverQueuesDecodedInput(t *testing.T) {
	engine := sim.NewEngine(sim.Config{})
	host := &scriptedHost{events: []Event{
		{Type: EventConnect, Peer: 2},
		{Type: EventReceive, Peer: 2, Payload: []byte(`{"clientTick":10,"seq":4,"buttons":1,"ax":0.5}`)},
	}}
	metrics := telemetry.NewCounters()

	recv := NewReceiver(host, engine, ReceiverConfig{InputDelayTicks: 1, Metrics: metrics})
	recv.Start()
	defer recv.Stop()

	queued := waitForQueue(t, engine, 1)
	if len(queued) != 1 {
		t.Fatalf("expected 1 queued input, got %d", len(queued))
	}
	got := queued[0]
	if got.Input.ClientID != 2 || got.Input.Seq != 4 || got.Input.Buttons != 1 {
		t.Fatalf("unexpected queued input: %+v", got.Input)
	}
	if got.TargetTick != engine.SimTick()+1 {
		t.Fatalf("expected target tick %d, got %d", engine.SimTick()+1, got.TargetTick)
	}
	if acked := engine.Acks().Received(2); acked != 4 {
		t.Fatalf("expected received ack 4, got %d", acked)
	}
	if metrics.Get(metricPacketsReceived) != 1 || metrics.Get(metricPeerConnects) != 1 {
		t.Fatalf("unexpected counters: %+v", metrics.Snapshot())
	}
}

func TestReceiverDropsInvalidPayload(t *testing.T) {
	engine := sim.NewEngine(sim.Config{})
	sink := logging.NewMemorySink()
	metrics := telemetry.NewCounters()
	host := &scriptedHost{events: []Event{
		{Type: EventReceive, Peer: 5, Payload: []byte(`{"seq":1}`)},
		{Type: EventReceive, Peer: 5, Payload: []byte(`{"clientTick":1,"seq":2}`)},
	}}

	recv := NewReceiver(host, engine, ReceiverConfig{
		InputDelayTicks: 1,
		Logger:          logging.New(sink, logging.LevelTrace),
		Metrics:         metrics,
	})
	recv.Start()
	defer recv.Stop()

	queued := waitForQueue(t, engine, 1)
	if len(queued) != 1 || queued[0].Input.Seq != 2 {
		t.Fatalf("expected only the valid input to be queued, got %+v", queued)
	}
	if metrics.Get(metricPacketsRejected) != 1 {
		t.Fatalf("expected one rejected packet, got %d", metrics.Get(metricPacketsRejected))
	}

	found := false
	for _, rec := range sink.Records() {
		if rec.Level == logging.LevelWarn {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a warning for the invalid payload")
	}
}

func TestReceiverStopJoinsLoop(t *testing.T) {
	engine := sim.NewEngine(sim.Config{})
	host := &scriptedHost{}

	recv := NewReceiver(host, engine, ReceiverConfig{InputDelayTicks: 1})
	recv.Start()
	recv.Stop()
	recv.Stop() // idempotent

	select {
	case <-recv.done:
	default:
		t.Fatalf("expected loop goroutine to have exited")
	}
}

func TestReceiverLogsDisconnects(t *testing.T) {
	engine := sim.NewEngine(sim.Config{})
	sink := logging.NewMemorySink()
	metrics := telemetry.NewCounters()
	host := &scriptedHost{events: []Event{
		{Type: EventDisconnect, Peer: 1},
		{Type: EventDisconnectTimeout, Peer: 3},
	}}

	recv := NewReceiver(host, engine, ReceiverConfig{
		Logger:  logging.New(sink, logging.LevelTrace),
		Metrics: metrics,
	})
	recv.Start()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && metrics.Get(metricPeerDisconnects) < 2 {
		time.Sleep(time.Millisecond)
	}
	recv.Stop()

	if got := metrics.Get(metricPeerDisconnects); got != 2 {
		t.Fatalf("expected 2 disconnect events, got %d", got)
	}
}
