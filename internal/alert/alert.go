// Package alert delivers out-of-band "new activity" alerts (a terminal
// bell) behind a one-shot permission flow: the user is asked at most
// once, lazily, when the first alert-worthy event arrives, and a denial
// is remembered as a normal terminal state, never re-asked.
package alert

import (
	"fmt"
	"os"
	"sync"
)

// Permission is the user's standing decision about alerts.
type Permission string

const (
	PermissionUnset   Permission = ""
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// ParsePermission maps a stored config value to a Permission, treating
// anything unrecognized as unset.
func ParsePermission(s string) Permission {
	switch Permission(s) {
	case PermissionGranted, PermissionDenied:
		return Permission(s)
	default:
		return PermissionUnset
	}
}

// Notifier surfaces a short alert outside the main feed view.
type Notifier interface {
	Notify(title, body string)
}

// Bell rings the terminal bell. The body is ignored; terminals have no
// notification payload, the bell is the whole signal.
type Bell struct{}

// Notify writes BEL to stderr, which bypasses the TUI renderer.
func (Bell) Notify(_, _ string) {
	fmt.Fprint(os.Stderr, "\a")
}

// Noop swallows alerts. Used in tests and when permission is denied.
type Noop struct{}

// Notify does nothing.
func (Noop) Notify(_, _ string) {}

// Gate wraps a Notifier with the permission flow. While the decision is
// unset, the first alert publishes a single request on Requests() and
// alerts are suppressed until SetPermission is called.
//
// Gate is safe for use from the listener goroutine and the UI loop.
type Gate struct {
	mu        sync.Mutex
	state     Permission
	requested bool
	requests  chan struct{}
	next      Notifier
}

// NewGate creates a Gate around next with a previously stored decision.
func NewGate(state Permission, next Notifier) *Gate {
	if next == nil {
		next = Noop{}
	}
	return &Gate{
		state:    state,
		requests: make(chan struct{}, 1),
		next:     next,
	}
}

// Notify forwards the alert when permission is granted. With the
// decision unset it instead raises the one-time permission request.
func (g *Gate) Notify(title, body string) {
	g.mu.Lock()
	state := g.state
	ask := state == PermissionUnset && !g.requested
	if ask {
		g.requested = true
	}
	g.mu.Unlock()

	switch state {
	case PermissionGranted:
		g.next.Notify(title, body)
	case PermissionUnset:
		if ask {
			// Buffered; never blocks the caller.
			g.requests <- struct{}{}
		}
	}
}

// Requests signals when the user should be asked for permission. At
// most one value is ever sent.
func (g *Gate) Requests() <-chan struct{} {
	return g.requests
}

// SetPermission records the user's decision.
func (g *Gate) SetPermission(p Permission) {
	g.mu.Lock()
	g.state = p
	g.mu.Unlock()
}

// State returns the current decision.
func (g *Gate) State() Permission {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
