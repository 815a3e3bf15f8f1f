package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"gritgym/internal/adapters/auth"
	"gritgym/internal/adapters/http/middleware"
	accountStore "gritgym/internal/adapters/storage/account"
	"gritgym/internal/application/orchestrators"
	"gritgym/internal/application/session"
)

// handleRoot sends the client wherever its session gate routes it.
func (s *server) handleRoot(w http.ResponseWriter, r *http.Request) {
	gate := session.NewGate(s.auth, middleware.SessionToken(r))
	defer gate.Close()
	if _, err := gate.Wait(r.Context()); err != nil {
		return
	}
	http.Redirect(w, r, gate.Route(), http.StatusSeeOther)
}

// handleLoginForm renders the sign-in form; signed-in operators go to the dashboard.
func (s *server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, session.RouteDashboard, http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, http.StatusOK, "login.html", map[string]any{})
}

// handleLogin authenticates and sets the session cookie.
// Failures re-render the form with an inline message.
func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	email := r.FormValue("Email")

	sess, err := s.auth.SignIn(r.Context(), email, r.FormValue("Password"))
	if err != nil {
		msg := "Sign-in failed. Please try again."
		status := http.StatusUnauthorized
		switch {
		case errors.Is(err, orchestrators.ErrInvalidCredentials):
			msg = "Invalid email or password."
		case errors.Is(err, orchestrators.ErrAccountLocked):
			msg = "Too many failed attempts. Try again in 15 minutes."
			status = http.StatusTooManyRequests
		default:
			slog.Error("internal_error", "error", err.Error())
			status = http.StatusInternalServerError
		}
		renderTemplate(w, r, status, "login.html", map[string]any{
			"Error": msg,
			"Email": email,
		})
		return
	}

	middleware.SetSessionCookie(w, sess)
	http.Redirect(w, r, session.RouteDashboard, http.StatusSeeOther)
}

// handleLogout ends the session; open dashboard sockets are told to leave.
func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		if err := s.auth.SignOut(r.Context(), token); err != nil {
			slog.Warn("auth_event", "event", "logout_failed", "error", err)
		}
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, session.RouteLogin, http.StatusSeeOther)
}

// LoginVerifier adapts the login orchestrator to the auth provider.
func LoginVerifier(store accountStore.Store) auth.VerifyFunc {
	return func(ctx context.Context, email, password string) (auth.Identity, error) {
		res, err := orchestrators.ExecuteLogin(ctx, orchestrators.LoginInput{Email: email, Password: password},
			orchestrators.LoginDeps{AccountStore: store})
		if err != nil {
			return auth.Identity{}, err
		}
		return auth.Identity{AccountID: res.AccountID, Email: res.Email}, nil
	}
}
