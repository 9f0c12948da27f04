// Package wsconn carries the live-update channel over a WebSocket. Each text
// message is one JSON frame: {"event": ..., "data": ..., "ts": ...}.
package wsconn

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"agvdash/channel"
	"agvdash/protocol"
)

const writeWait = 10 * time.Second

type Transport struct {
	url    string
	dialer *websocket.Dialer
	logFn  channel.LogFunc

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// New returns a transport for the given ws:// or wss:// URL.
func New(url string) *Transport {
	return &Transport{
		url: url,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		logFn: log.Printf,
	}
}

func (t *Transport) SetLogFunc(fn channel.LogFunc) {
	if fn != nil {
		t.logFn = fn
	}
}

func (t *Transport) Name() string { return "websocket" }

func (t *Transport) Open(ctx context.Context, token string, onFrame channel.FrameFunc, onDrop channel.DropFunc) error {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, resp, err := t.dialer.DialContext(ctx, t.url, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("websocket dial %s: %w (status %d)", t.url, err, resp.StatusCode)
		}
		return fmt.Errorf("websocket dial %s: %w", t.url, err)
	}

	t.mu.Lock()
	t.conn = conn
	t.closed = false
	t.mu.Unlock()

	go t.readLoop(conn, onFrame, onDrop)
	return nil
}

func (t *Transport) readLoop(conn *websocket.Conn, onFrame channel.FrameFunc, onDrop channel.DropFunc) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			closedByUs := t.closed || t.conn != conn
			t.mu.Unlock()
			if !closedByUs {
				onDrop(err)
			}
			return
		}
		f, err := protocol.DecodeFrame(data)
		if err != nil {
			t.logFn("wsconn: %v", err)
			continue
		}
		onFrame(f)
	}
}

func (t *Transport) Write(f protocol.Frame) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil || t.closed {
		return channel.ErrNotConnected
	}
	t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil || t.closed {
		return nil
	}
	t.closed = true
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return t.conn.Close()
}
