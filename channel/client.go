// Package channel maintains the dashboard's single live-update channel to the
// fleet backend. The wire itself is supplied by a Transport; this package
// owns connection status, the last inbound frame, and operator notices.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"agvdash/protocol"
)

// ErrNotConnected is returned by transports asked to write while closed.
var ErrNotConnected = errors.New("channel not connected")

// Notice texts raised to operators.
const (
	NoticeConnectFailed = "Failed to connect to live updates"
	NoticeDisconnected  = "Disconnected from live updates"
)

// FrameFunc receives inbound frames. A transport calls it from one goroutine.
type FrameFunc func(f protocol.Frame)

// DropFunc is called by a transport when the connection is lost without
// Close having been called.
type DropFunc func(err error)

// Transport is one concrete wire to the backend.
type Transport interface {
	Name() string
	// Open authenticates with token and starts delivering frames. It
	// returns once the connection is usable.
	Open(ctx context.Context, token string, onFrame FrameFunc, onDrop DropFunc) error
	Write(f protocol.Frame) error
	// Close is idempotent and may be called from within onDrop.
	Close() error
}

// LogFunc is the logging hook used by Client.
type LogFunc func(format string, args ...any)

// Notifier receives operator-facing notices ("error", "warning", "info").
type Notifier func(level, message string)

// LastMessage is the most recent inbound frame.
type LastMessage struct {
	Event      string          `json:"type"`
	Data       json.RawMessage `json:"data,omitempty"`
	ReceivedAt time.Time       `json:"receivedAt"`
}

// Client owns the connection lifecycle for one Transport.
type Client struct {
	transport Transport
	token     string
	handler   FrameFunc

	connMu sync.Mutex // serialises Connect and Disconnect

	mu        sync.Mutex
	connected bool
	session   uint64 // bumped on every Connect/Disconnect; stale drops are ignored
	last      LastMessage
	hasLast   bool

	notify   Notifier
	onStatus func(connected bool)
	logFn    LogFunc
}

// NewClient builds a client. handler receives every inbound frame in
// delivery order.
func NewClient(t Transport, token string, handler FrameFunc) *Client {
	return &Client{
		transport: t,
		token:     token,
		handler:   handler,
		notify:    func(string, string) {},
		onStatus:  func(bool) {},
		logFn:     log.Printf,
	}
}

func (c *Client) SetNotifier(fn Notifier) {
	if fn != nil {
		c.notify = fn
	}
}

// SetStatusFunc registers a callback for connected/disconnected transitions.
func (c *Client) SetStatusFunc(fn func(connected bool)) {
	if fn != nil {
		c.onStatus = fn
	}
}

func (c *Client) SetLogFunc(fn LogFunc) {
	if fn != nil {
		c.logFn = fn
	}
}

// Transport returns the configured transport's name.
func (c *Client) Transport() string {
	return c.transport.Name()
}

// Connect opens the channel. Connecting while already connected does nothing.
// A failure raises a notice and is returned; there is no retry.
func (c *Client) Connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return nil
	}
	c.session++
	session := c.session
	c.mu.Unlock()

	// release anything left over from a dropped session
	c.transport.Close()

	err := c.transport.Open(ctx, c.token, c.receive, func(err error) { c.dropped(session, err) })
	if err != nil {
		c.logFn("channel: %s connect: %v", c.transport.Name(), err)
		c.notify("error", NoticeConnectFailed)
		return fmt.Errorf("channel connect: %w", err)
	}

	c.mu.Lock()
	if c.session != session {
		// dropped before Open returned
		c.mu.Unlock()
		c.notify("error", NoticeConnectFailed)
		return fmt.Errorf("channel connect: connection lost during handshake")
	}
	c.connected = true
	c.mu.Unlock()

	c.logFn("channel: connected via %s", c.transport.Name())
	c.onStatus(true)
	return nil
}

// Disconnect closes the channel. Calling it again does nothing.
func (c *Client) Disconnect() {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	c.mu.Lock()
	was := c.connected
	c.connected = false
	c.session++
	c.mu.Unlock()

	if !was {
		return
	}
	if err := c.transport.Close(); err != nil {
		c.logFn("channel: close: %v", err)
	}
	c.logFn("channel: disconnected")
	c.onStatus(false)
}

// SendMessage writes one outbound frame when connected. When not connected it
// logs a warning and drops the message; nothing is queued.
func (c *Client) SendMessage(eventType string, payload any) {
	if !c.IsConnected() {
		c.logFn("channel: not connected, dropping %s", eventType)
		return
	}
	f, err := protocol.NewFrame(eventType, payload)
	if err != nil {
		c.logFn("channel: %v", err)
		return
	}
	if err := c.transport.Write(f); err != nil {
		c.logFn("channel: send %s: %v", eventType, err)
	}
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// LastMessage returns the most recent inbound frame, if any arrived.
func (c *Client) LastMessage() (LastMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.hasLast
}

func (c *Client) receive(f protocol.Frame) {
	c.mu.Lock()
	c.last = LastMessage{Event: f.Event, Data: f.Data, ReceivedAt: time.Now().UTC()}
	c.hasLast = true
	c.mu.Unlock()

	if c.handler != nil {
		c.handler(f)
	}
}

func (c *Client) dropped(session uint64, err error) {
	c.mu.Lock()
	if session != c.session {
		c.mu.Unlock()
		return
	}
	was := c.connected
	c.connected = false
	c.session++
	c.mu.Unlock()

	c.logFn("channel: %s connection lost: %v", c.transport.Name(), err)
	if was {
		c.notify("warning", NoticeDisconnected)
		c.onStatus(false)
	}
}
