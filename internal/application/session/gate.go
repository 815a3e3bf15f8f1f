// Package session owns the authentication state a client sees and where
// that state routes it.
package session

import (
	"context"
	"sync"

	"gritgym/internal/domain/account"
)

// State is the gate's authentication state.
type State int

const (
	Checking State = iota
	Authenticated
	Unauthenticated
)

// String returns the state name used on the wire.
func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "checking"
	}
}

// Routes the gate sends clients to.
const (
	RouteLogin     = "/login"
	RouteDashboard = "/payments"
)

// Subscriber is the authentication provider capability the gate needs.
type Subscriber interface {
	Subscribe(token string, fn func(*account.Session)) (unsubscribe func())
}

// Gate tracks one client's session through the provider's change reports.
// INVARIANT: It holds at most one provider subscription, released by Close
type Gate struct {
	mu      sync.Mutex
	state   State
	session *account.Session
	resolve chan struct{}
	changes chan State
	unsub   func()
	closed  bool
}

// NewGate starts in Checking and subscribes to token on sub.
// POST: The first provider report moves the gate out of Checking
func NewGate(sub Subscriber, token string) *Gate {
	g := &Gate{
		state:   Checking,
		resolve: make(chan struct{}),
		changes: make(chan State, 1),
	}
	unsub := sub.Subscribe(token, g.report)

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		unsub()
		return g
	}
	g.unsub = unsub
	g.mu.Unlock()
	return g
}

// report applies a provider notification.
func (g *Gate) report(s *account.Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	next := Unauthenticated
	if s != nil {
		next = Authenticated
	}
	first := g.state == Checking
	changed := g.state != next
	g.state = next
	g.session = s
	if first {
		close(g.resolve)
	}
	if changed {
		select {
		case <-g.changes:
		default:
		}
		g.changes <- next
	}
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Session returns the current session, nil unless Authenticated.
func (g *Gate) Session() *account.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

// Route returns where a client in the current state belongs; "" while Checking.
func (g *Gate) Route() string {
	switch g.State() {
	case Authenticated:
		return RouteDashboard
	case Unauthenticated:
		return RouteLogin
	default:
		return ""
	}
}

// Wait blocks until the first report arrives or ctx ends.
func (g *Gate) Wait(ctx context.Context) (State, error) {
	select {
	case <-g.resolve:
		return g.State(), nil
	case <-ctx.Done():
		return Checking, ctx.Err()
	}
}

// Changes delivers the latest state after each transition.
// Only the newest undelivered state is kept. The channel is closed by Close.
func (g *Gate) Changes() <-chan State {
	return g.changes
}

// Close releases the provider subscription. Safe to call more than once.
func (g *Gate) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	unsub := g.unsub
	g.unsub = nil
	select {
	case <-g.changes:
	default:
	}
	close(g.changes)
	g.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}
