package client

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	transport "netforge/internal/net"
	"netforge/internal/net/proto"
	"netforge/internal/net/ws"
	"netforge/internal/telemetry"
)

const (
	handshakeTimeout = 5 * time.Second
	shutdownGrace    = time.Second
	pumpTimeout      = time.Millisecond
)

// Source produces the input payload for one client tick. The stock
// source sends neutral inputs, which is enough to exercise the ack
// round trip.
type Source func(clientTick uint32) (buttons uint32, axisX, axisY float32)

// connection is the transport surface the loop needs; satisfied by
// the websocket dialer and by fakes in tests.
type connection interface {
	Service(timeout time.Duration) (transport.Event, bool)
	Send(payload []byte) error
	CloseGraceful(timeout time.Duration) error
}

// Config tunes a reference client.
type Config struct {
	// URL is the server endpoint, e.g. "ws://127.0.0.1:7777/".
	URL        string
	SendPeriod time.Duration
	Source     Source
	Logger     telemetry.Logger
}

// Client drives the reference loop: send one input per period, pump
// incoming snapshots, remember the latest one.
type Client struct {
	cfg    Config
	logger telemetry.Logger
	conn   connection

	clientTick uint32
	seq        uint32

	running atomic.Bool
	done    chan struct{}

	mu       sync.Mutex
	last     proto.Snapshot
	haveSnap bool
}

// Dial connects to the server and returns an idle client; call Start
// to begin the send loop.
func Dial(cfg Config) (*Client, error) {
	conn, err := ws.Dial(cfg.URL, handshakeTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return newClient(cfg, conn), nil
}

func newClient(cfg Config, conn connection) *Client {
	if cfg.SendPeriod <= 0 {
		cfg.SendPeriod = 16 * time.Millisecond
	}
	if cfg.Source == nil {
		cfg.Source = func(uint32) (uint32, float32, float32) { return 0, 0, 0 }
	}
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	return &Client{cfg: cfg, logger: logger, conn: conn}
}

// Start launches the loop goroutine. No-op when already running.
func (c *Client) Start() {
	if !c.running.CompareAndSwap(false, true) {
		return
	}
	c.done = make(chan struct{})
	go c.loop()
}

// Stop ends the loop, closes the connection gracefully and waits for
// the goroutine to exit.
func (c *Client) Stop() {
	if !c.running.CompareAndSwap(true, false) {
		return
	}
	<-c.done
}

// LastSnapshot reports the most recent server snapshot, if any
// arrived yet.
func (c *Client) LastSnapshot() (proto.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.haveSnap
}

func (c *Client) loop() {
	defer close(c.done)
	defer c.conn.CloseGraceful(shutdownGrace)

	ticker := time.NewTicker(c.cfg.SendPeriod)
	defer ticker.Stop()

	for c.running.Load() {
		select {
		case <-ticker.C:
			if err := c.sendInput(); err != nil {
				c.logger.Warnf("input send failed, stopping: %v", err)
				c.running.Store(false)
				return
			}
		default:
		}
		if !c.pump() {
			c.running.Store(false)
			return
		}
	}
}

func (c *Client) sendInput() error {
	c.clientTick++
	c.seq++
	buttons, ax, ay := c.cfg.Source(c.clientTick)
	payload, err := proto.EncodeInput(proto.InputMessage{
		ClientTick: c.clientTick,
		Seq:        c.seq,
		Buttons:    buttons,
		AxisX:      ax,
		AxisY:      ay,
	})
	if err != nil {
		return err
	}
	return c.conn.Send(payload)
}

// pump drains pending events; false means the connection is gone.
func (c *Client) pump() bool {
	for {
		event, ok := c.conn.Service(pumpTimeout)
		if !ok {
			return true
		}
		switch event.Type {
		case transport.EventConnect:
			c.logger.Infof("connected to %s", c.cfg.URL)
		case transport.EventReceive:
			c.handleSnapshot(event.Payload)
		case transport.EventDisconnect, transport.EventDisconnectTimeout:
			c.logger.Infof("server closed the connection")
			return false
		}
	}
}

func (c *Client) handleSnapshot(payload []byte) {
	snap, err := proto.DecodeSnapshot(payload)
	if err != nil {
		c.logger.Warnf("discarding malformed snapshot: %v", err)
		return
	}
	c.mu.Lock()
	c.last = snap
	c.haveSnap = true
	c.mu.Unlock()
	c.logger.Debugf("snapshot tick=%d ackApplied=%d ackRecv=%d", snap.ServerTick, snap.AckApplied, snap.AckRecv)
}
