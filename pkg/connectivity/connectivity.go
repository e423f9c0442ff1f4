// Package connectivity exposes the device reachability signal consumed by the
// sync engine.
package connectivity

import "sync"

// Status is the current reachability of the remote service.
type Status int

const (
	// Unavailable means the remote service cannot be reached; sync work is
	// deferred, not failed.
	Unavailable Status = iota
	// Available means sync may proceed.
	Available
)

// String returns a readable status name.
func (s Status) String() string {
	if s == Available {
		return "available"
	}
	return "unavailable"
}

// Monitor reports the current reachability and a stream of changes.
type Monitor interface {
	// Current returns the status as of now.
	Current() Status
	// Observe returns a channel receiving every status change. The channel
	// is never closed by the monitor; callers stop reading when done.
	Observe() <-chan Status
}

// Manual is a Monitor driven by explicit Set calls. It backs tests and the
// user-facing "work offline" toggle.
type Manual struct {
	mu     sync.RWMutex
	status Status
	subs   []chan Status
}

// NewManual creates a Manual monitor with the given initial status.
func NewManual(initial Status) *Manual {
	return &Manual{status: initial}
}

// Current implements Monitor.
func (m *Manual) Current() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Observe implements Monitor.
func (m *Manual) Observe() <-chan Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan Status, 8)
	m.subs = append(m.subs, ch)
	return ch
}

// Set changes the status and notifies observers on change. Slow observers
// miss intermediate transitions rather than block the caller.
func (m *Manual) Set(status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == status {
		return
	}
	m.status = status
	for _, ch := range m.subs {
		select {
		case ch <- status:
		default:
		}
	}
}
