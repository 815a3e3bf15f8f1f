package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"gritgym/internal/adapters/http/middleware"
	"gritgym/internal/application/session"
)

// wsWriteWait bounds a single frame write.
const wsWriteWait = 10 * time.Second

// upgrader keeps gorilla's default same-origin check.
var upgrader = websocket.Upgrader{}

// sessionMessage is pushed to the dashboard on every gate transition.
type sessionMessage struct {
	State string `json:"state"`
	Route string `json:"route"`
}

// handleSessionSocket streams the caller's session gate over a websocket.
// The first frame is the resolved state; later frames follow sign-out or
// expiry. The socket closes once the gate reports unauthenticated.
func (s *server) handleSessionSocket(w http.ResponseWriter, r *http.Request) {
	gate := session.NewGate(s.auth, middleware.SessionToken(r))
	defer gate.Close()
	if _, err := gate.Wait(r.Context()); err != nil {
		return
	}
	// The first transition is sent below from State, not from Changes.
	select {
	case <-gate.Changes():
	default:
	}
	state := gate.State()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws_upgrade_failed", "error", err)
		return
	}
	defer conn.Close()

	// Reader: only needed to notice the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(st session.State) bool {
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		msg := sessionMessage{State: st.String(), Route: session.RouteDashboard}
		if st != session.Authenticated {
			msg.Route = session.RouteLogin
		}
		return conn.WriteJSON(msg) == nil
	}

	if !send(state) || state != session.Authenticated {
		return
	}
	for {
		select {
		case <-gone:
			return
		case st, ok := <-gate.Changes():
			if !ok {
				return
			}
			if !send(st) || st != session.Authenticated {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "signed out"),
					time.Now().Add(wsWriteWait))
				return
			}
		}
	}
}
