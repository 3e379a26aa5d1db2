package syncer

import (
	"context"
	"sync"
)

// Event is a single-writer, multi-reader readiness signal. Waiters block
// until Set; Clear re-arms the event for the next cycle.
type Event struct {
	mu  sync.Mutex
	ch  chan struct{}
	set bool
}

// NewEvent returns an unset Event.
func NewEvent() *Event {
	return &Event{ch: make(chan struct{})}
}

// Set marks the event ready and releases every current and future waiter.
func (e *Event) Set() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.set {
		e.set = true
		close(e.ch)
	}
}

// Clear re-arms the event so subsequent waiters block until the next Set.
func (e *Event) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set {
		e.set = false
		e.ch = make(chan struct{})
	}
}

// IsSet reports whether the event is currently ready.
func (e *Event) IsSet() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.set
}

// Wait blocks until the event is set or the context is done.
func (e *Event) Wait(ctx context.Context) error {
	e.mu.Lock()
	if e.set {
		e.mu.Unlock()
		return nil
	}
	ch := e.ch
	e.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Gate holds the two readiness signals that order incremental event
// handling behind bulk reconciliation. It is owned by the Syncer and passed
// by reference to every handler; there is no ambient global state.
type Gate struct {
	// SyncComplete is set once the first full member reconciliation
	// finishes and is never cleared again for the process lifetime.
	SyncComplete *Event

	// TopologyReady is cleared at the start of every topology sync and set
	// only once the thread phase and archive reconciliation complete.
	TopologyReady *Event
}

// NewGate returns a Gate with both signals unset.
func NewGate() *Gate {
	return &Gate{
		SyncComplete:  NewEvent(),
		TopologyReady: NewEvent(),
	}
}

// WaitReady blocks until both signals are ready, so a handler never applies
// an incremental event against a half-synced mirror.
func (g *Gate) WaitReady(ctx context.Context) error {
	if err := g.SyncComplete.Wait(ctx); err != nil {
		return err
	}
	return g.TopologyReady.Wait(ctx)
}
