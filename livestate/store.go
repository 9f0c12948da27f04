package livestate

import "sync"

// ListenerID identifies a Store subscription.
type ListenerID int

// Listener is called after each dispatch with the action and the new State.
// A listener may call Snapshot but must not call Dispatch.
type Listener func(a Action, s State)

type listener struct {
	id ListenerID
	fn Listener
}

// Store owns the current State. Dispatches are serialised: one reducer runs
// at a time and listeners see every resulting State in dispatch order.
type Store struct {
	dispatchMu sync.Mutex // held for a whole dispatch, listeners included

	mu    sync.RWMutex
	state State

	lmu       sync.RWMutex
	listeners []listener
	nextID    ListenerID
}

func NewStore() *Store {
	return &Store{state: NewState()}
}

// Dispatch applies a and notifies listeners. It returns the new State.
func (st *Store) Dispatch(a Action) State {
	st.dispatchMu.Lock()
	defer st.dispatchMu.Unlock()

	st.mu.Lock()
	next := Reduce(st.state, a)
	st.state = next
	st.mu.Unlock()

	st.lmu.RLock()
	ls := make([]listener, len(st.listeners))
	copy(ls, st.listeners)
	st.lmu.RUnlock()

	for _, l := range ls {
		l.fn(a, next)
	}
	return next
}

// Snapshot returns the current State. The result must not be modified.
func (st *Store) Snapshot() State {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.state
}

// Subscribe registers fn for every subsequent dispatch.
func (st *Store) Subscribe(fn Listener) ListenerID {
	st.lmu.Lock()
	defer st.lmu.Unlock()
	st.nextID++
	st.listeners = append(st.listeners, listener{id: st.nextID, fn: fn})
	return st.nextID
}

// Unsubscribe removes a listener by ID.
func (st *Store) Unsubscribe(id ListenerID) {
	st.lmu.Lock()
	defer st.lmu.Unlock()
	for i, l := range st.listeners {
		if l.id == id {
			st.listeners = append(st.listeners[:i], st.listeners[i+1:]...)
			return
		}
	}
}
