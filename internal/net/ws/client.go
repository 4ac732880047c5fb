package ws

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	transport "netforge/internal/net"
)

// Client is the dialing side of the websocket transport. It mirrors
// the host's event surface with a single implicit peer 0.
type Client struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	events chan transport.Event
	done   chan struct{}

	closeOnce sync.Once
}

// Dial connects to a host endpoint, e.g. "ws://127.0.0.1:7777/ws".
// The handshake is bounded by timeout; success surfaces as an
// EventConnect from Service.
func Dial(url string, timeout time.Duration) (*Client, error) {
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	c := &Client{
		conn:   conn,
		events: make(chan transport.Event, eventBuffer),
		done:   make(chan struct{}),
	}
	c.events <- transport.Event{Type: transport.EventConnect}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case c.events <- transport.Event{Type: transport.EventDisconnect}:
			case <-c.done:
			}
			return
		}
		select {
		case c.events <- transport.Event{Type: transport.EventReceive, Payload: payload}:
		case <-c.done:
			return
		}
	}
}

// Service returns the next pending event, waiting up to timeout.
func (c *Client) Service(timeout time.Duration) (transport.Event, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case event := <-c.events:
		return event, true
	case <-c.done:
		return transport.Event{}, false
	case <-timer.C:
		return transport.Event{}, false
	}
}

// Send writes payload to the server.
func (c *Client) Send(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// CloseGraceful sends a close frame, waits up to timeout for the
// server's close echo, then tears the connection down.
func (c *Client) CloseGraceful(timeout time.Duration) error {
	var err error
	c.closeOnce.Do(func() {
		message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		c.writeMu.Lock()
		err = c.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(writeWait))
		c.writeMu.Unlock()

		deadline := time.Now().Add(timeout)
		for time.Now().Before(deadline) {
			event, ok := c.Service(time.Until(deadline))
			if !ok || event.Type == transport.EventDisconnect {
				break
			}
		}
		close(c.done)
		c.conn.Close()
	})
	return err
}
