package ws

import (
	"errors"
	"fmt"
	stdnet "net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	transport "netforge/internal/net"
	"netforge/internal/telemetry"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 10 * time.Second
	pingPeriod = 3 * time.Second

	eventBuffer = 1024
)

// HostConfig configures a websocket host.
type HostConfig struct {
	// Addr is the TCP listen address, e.g. ":7777".
	Addr string
	// MaxPeers bounds the slot table; peer ids are 0..MaxPeers-1.
	MaxPeers int
	Logger   telemetry.Logger
}

type peer struct {
	conn    *websocket.Conn
	session string

	// writeMu serializes frames; gorilla allows one concurrent writer.
	writeMu sync.Mutex

	timedOut bool
}

// Host serves websocket connections and adapts them to the transport
// event model: each connection occupies a slot in a fixed peer table
// and its frames surface through Service.
type Host struct {
	cfg      HostConfig
	logger   telemetry.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	slots []*peer

	events chan transport.Event
	done   chan struct{}

	listener stdnet.Listener
	server   *http.Server

	closeOnce sync.Once
}

// NewHost builds a host without binding a socket; call Start to
// listen, or mount Handler on an existing server.
func NewHost(cfg HostConfig) *Host {
	if cfg.MaxPeers <= 0 {
		cfg.MaxPeers = 64
	}
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	return &Host{
		cfg:    cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		slots:  make([]*peer, cfg.MaxPeers),
		events: make(chan transport.Event, eventBuffer),
		done:   make(chan struct{}),
	}
}

// Handler exposes the upgrade endpoint so callers can mount it on
// their own mux or an httptest server.
func (h *Host) Handler() http.Handler {
	return http.HandlerFunc(h.handleUpgrade)
}

// Start binds the listen socket and begins serving upgrades. The
// returned error covers bind failures; serve errors after a clean
// Close are swallowed.
func (h *Host) Start() error {
	listener, err := stdnet.Listen("tcp", h.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", h.cfg.Addr, err)
	}
	h.listener = listener
	h.server = &http.Server{Handler: h.Handler()}
	go func() {
		if err := h.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Errorf("websocket server stopped: %v", err)
		}
	}()
	return nil
}

func (h *Host) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnf("upgrade failed from %s: %v", r.RemoteAddr, err)
		return
	}

	p := &peer{conn: conn, session: uuid.NewString()}
	slot, ok := h.claimSlot(p)
	if !ok {
		h.logger.Warnf("rejecting %s: peer table full", r.RemoteAddr)
		message := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server full")
		conn.WriteMessage(websocket.CloseMessage, message)
		conn.Close()
		return
	}

	h.logger.Infof("session %s connected as peer %d from %s", p.session, slot, r.RemoteAddr)
	h.emit(transport.Event{Type: transport.EventConnect, Peer: slot})
	go h.pingLoop(p)
	h.readLoop(slot, p)
}

func (h *Host) claimSlot(p *peer) (uint32, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.slots {
		if h.slots[i] == nil {
			h.slots[i] = p
			return uint32(i), true
		}
	}
	return 0, false
}

func (h *Host) releaseSlot(slot uint32, p *peer) {
	h.mu.Lock()
	if int(slot) < len(h.slots) && h.slots[slot] == p {
		h.slots[slot] = nil
	}
	h.mu.Unlock()
}

// readLoop owns the connection's read side. A read deadline refreshed
// by pongs converts silent peers into timeout disconnects.
func (h *Host) readLoop(slot uint32, p *peer) {
	defer func() {
		h.releaseSlot(slot, p)
		p.conn.Close()
		kind := transport.EventDisconnect
		if p.timedOut {
			kind = transport.EventDisconnectTimeout
		}
		h.logger.Infof("session %s (peer %d) %s", p.session, slot, kind)
		h.emit(transport.Event{Type: kind, Peer: slot})
	}()

	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := p.conn.ReadMessage()
		if err != nil {
			var netErr stdnet.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				p.timedOut = true
			}
			return
		}
		h.emit(transport.Event{Type: transport.EventReceive, Peer: slot, Payload: payload})
	}
}

func (h *Host) pingLoop(p *peer) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.writeMu.Lock()
			err := p.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			p.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-h.done:
			return
		}
	}
}

// emit queues an event for Service. Blocks when the buffer is full so
// a slow consumer backpressures the socket reads; shutdown unblocks.
func (h *Host) emit(event transport.Event) {
	select {
	case h.events <- event:
	case <-h.done:
	}
}

// Service returns the next pending event, waiting up to timeout.
func (h *Host) Service(timeout time.Duration) (transport.Event, bool) {
	select {
	case event := <-h.events:
		return event, true
	case <-h.done:
		return transport.Event{}, false
	default:
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case event := <-h.events:
		return event, true
	case <-h.done:
		return transport.Event{}, false
	case <-timer.C:
		return transport.Event{}, false
	}
}

// Send writes payload to a connected peer. The channel and flags are
// advisory here: websocket multiplexes everything over one ordered
// stream, so unsequenced delivery degrades to ordered delivery.
func (h *Host) Send(peerID uint32, channel uint8, flags transport.PacketFlag, payload []byte) error {
	h.mu.Lock()
	var p *peer
	if int(peerID) < len(h.slots) {
		p = h.slots[peerID]
	}
	h.mu.Unlock()
	if p == nil {
		return fmt.Errorf("send to peer %d: not connected", peerID)
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteMessage(websocket.TextMessage, payload)
}

// Flush is a no-op; writes reach the socket in Send.
func (h *Host) Flush() {}

// Peers lists occupied slots.
func (h *Host) Peers() []uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	peers := make([]uint32, 0, len(h.slots))
	for i := range h.slots {
		if h.slots[i] != nil {
			peers = append(peers, uint32(i))
		}
	}
	return peers
}

// MaxPeers reports the slot table capacity.
func (h *Host) MaxPeers() int {
	return len(h.slots)
}

// Close shuts the listener and every connection down and unblocks any
// Service call. Safe to call more than once.
func (h *Host) Close() error {
	var err error
	h.closeOnce.Do(func() {
		close(h.done)
		if h.server != nil {
			err = h.server.Close()
		}
		h.mu.Lock()
		for i, p := range h.slots {
			if p != nil {
				p.conn.Close()
				h.slots[i] = nil
			}
		}
		h.mu.Unlock()
	})
	return err
}

var _ transport.Host = (*Host)(nil)
