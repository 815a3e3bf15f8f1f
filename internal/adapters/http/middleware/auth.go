package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"gritgym/internal/application/session"
	"gritgym/internal/domain/account"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionCookieName names the cookie carrying the session token.
const SessionCookieName = "gritgym_session"

// SecureCookies marks session cookies Secure; set in production.
var SecureCookies bool

// Auth resolves the cookie token through a session gate and stores the
// session in the context when the gate reports Authenticated.
// It does NOT block unauthenticated requests; use RequireAuth for that.
func Auth(sub session.Subscriber) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			gate := session.NewGate(sub, token)
			state, err := gate.Wait(r.Context())
			sess := gate.Session()
			gate.Close()
			if err == nil && state == session.Authenticated && sess != nil {
				r = r.WithContext(ContextWithSession(r.Context(), *sess))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth blocks unauthenticated requests: API calls get 401, pages are
// redirected to the login route.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			if strings.HasPrefix(r.URL.Path, "/api/") || strings.HasPrefix(r.URL.Path, "/ws/") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, session.RouteLogin, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (account.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(account.Session)
	return sess, ok
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, sess account.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// SessionToken returns the token from the session cookie, "" when absent.
func SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SetSessionCookie sets the session cookie to expire with the session.
func SetSessionCookie(w http.ResponseWriter, sess account.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.Token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(time.Until(sess.ExpiresAt).Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
