package engine

import (
	"log"
	"sync"
	"time"
)

type EventType int

type SubscriberID int

type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   any
}

type subscriber struct {
	id   SubscriberID
	fn   func(Event)
	mask uint64 // bit per EventType; zero takes everything
}

func (s subscriber) wants(t EventType) bool {
	return s.mask == 0 || s.mask&(1<<uint(t)) != 0
}

// EventBus fans engine events out to in-process subscribers. Emit runs
// subscribers on the emitting goroutine, usually inside a store dispatch,
// so a subscriber must neither block nor dispatch.
//
// The subscriber list is replaced on every change and never edited in
// place, so Emit reads it without copying.
type EventBus struct {
	mu     sync.RWMutex
	subs   []subscriber
	nextID SubscriberID
	logFn  LogFunc
}

func NewEventBus() *EventBus {
	return &EventBus{logFn: log.Printf}
}

func (eb *EventBus) SetLogFunc(fn LogFunc) {
	if fn != nil {
		eb.logFn = fn
	}
}

// Subscribe registers a handler for all event types.
func (eb *EventBus) Subscribe(fn func(Event)) SubscriberID {
	return eb.add(fn, 0)
}

// SubscribeTypes registers a handler for specific event types.
func (eb *EventBus) SubscribeTypes(fn func(Event), types ...EventType) SubscriberID {
	var mask uint64
	for _, t := range types {
		mask |= 1 << uint(t)
	}
	return eb.add(fn, mask)
}

func (eb *EventBus) add(fn func(Event), mask uint64) SubscriberID {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.nextID++
	next := make([]subscriber, len(eb.subs), len(eb.subs)+1)
	copy(next, eb.subs)
	eb.subs = append(next, subscriber{id: eb.nextID, fn: fn, mask: mask})
	return eb.nextID
}

func (eb *EventBus) Unsubscribe(id SubscriberID) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	next := make([]subscriber, 0, len(eb.subs))
	for _, s := range eb.subs {
		if s.id != id {
			next = append(next, s)
		}
	}
	eb.subs = next
}

// Emit delivers evt to every matching subscriber in subscription order.
// A panicking subscriber is logged and skipped.
func (eb *EventBus) Emit(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	eb.mu.RLock()
	subs := eb.subs
	eb.mu.RUnlock()

	for _, s := range subs {
		if s.wants(evt.Type) {
			eb.deliver(s, evt)
		}
	}
}

func (eb *EventBus) deliver(s subscriber, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			eb.logFn("engine: subscriber %d panicked on %s: %v", s.id, evt.Type, r)
		}
	}()
	s.fn(evt)
}
