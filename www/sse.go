package www

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"agvdash/engine"
)

type SSEEvent struct {
	Event string
	Data  string
}

// EventHub fans engine events out to browser streams. Broadcast never
// blocks: engine events are emitted while the store is dispatching.
type EventHub struct {
	mu        sync.RWMutex
	clients   map[chan SSEEvent]struct{}
	broadcast chan SSEEvent
	stopOnce  sync.Once
	stopChan  chan struct{}
	keepalive time.Duration
}

func NewEventHub() *EventHub {
	return &EventHub{
		clients:   make(map[chan SSEEvent]struct{}),
		broadcast: make(chan SSEEvent, 256),
		stopChan:  make(chan struct{}),
		keepalive: 30 * time.Second,
	}
}

func (h *EventHub) Start() {
	go h.run()
}

func (h *EventHub) Stop() {
	h.stopOnce.Do(func() { close(h.stopChan) })
}

func (h *EventHub) run() {
	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case <-h.stopChan:
			return
		case evt := <-h.broadcast:
			h.send(evt)
		case <-keepalive.C:
			h.send(SSEEvent{Event: "keepalive", Data: "ping"})
		}
	}
}

func (h *EventHub) send(evt SSEEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.clients {
		select {
		case ch <- evt:
		default:
			// drop if full
		}
	}
}

func (h *EventHub) Broadcast(event, data string) {
	select {
	case h.broadcast <- SSEEvent{Event: event, Data: data}:
	default:
	}
}

func (h *EventHub) AddClient() chan SSEEvent {
	ch := make(chan SSEEvent, 64)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *EventHub) RemoveClient(ch chan SSEEvent) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SetupEngineListeners wires engine events to SSE broadcasts. The event
// name is the engine's; the data is the JSON payload. The returned func
// detaches the hub.
func (h *EventHub) SetupEngineListeners(eng *engine.Engine) func() {
	id := eng.Events.Subscribe(func(evt engine.Event) {
		data, err := json.Marshal(evt.Payload)
		if err != nil {
			log.Printf("sse: encode %s: %v", evt.Type, err)
			return
		}
		h.Broadcast(evt.Type.String(), string(data))
	})
	return func() { eng.Events.Unsubscribe(id) }
}

// streamFilter parses ?events=a,b into a set. Nil means every event.
func streamFilter(r *http.Request) map[string]bool {
	raw := r.URL.Query().Get("events")
	if raw == "" {
		return nil
	}
	want := map[string]bool{}
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			want[name] = true
		}
	}
	return want
}

// SSEHandler serves the SSE endpoint. Keepalives are always sent,
// whatever ?events= selects.
func (h *EventHub) SSEHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	want := streamFilter(r)
	ch := h.AddClient()
	defer h.RemoveClient(ch)

	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-ch:
			if want != nil && evt.Event != "keepalive" && !want[evt.Event] {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Event, evt.Data); err != nil {
				log.Printf("sse: write error: %v", err)
				return
			}
			flusher.Flush()
		}
	}
}
