package web

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gritgym/internal/adapters/auth"
	"gritgym/internal/adapters/email"
	"gritgym/internal/adapters/http/middleware"
	"gritgym/internal/adapters/http/perf"
	accountStore "gritgym/internal/adapters/storage/account"
	"gritgym/internal/adapters/storage/docstore"
	outboxStore "gritgym/internal/adapters/storage/outbox"
	"gritgym/internal/application/orchestrators"
	"gritgym/internal/application/pages"
	"gritgym/internal/application/session"
	"gritgym/internal/config"
)

// The auth provider is the session source for gates.
var _ session.Subscriber = (*auth.Provider)(nil)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore accountStore.Store
	Documents    docstore.Store
	Outbox       outboxStore.Store // nil disables the notification retry queue
}

// Deps holds everything the HTTP surface needs.
type Deps struct {
	Stores    *Stores
	Auth      *auth.Provider
	Collector *perf.Collector
	Sender    email.Sender
	Config    *config.Config
	Now       func() time.Time // nil uses time.Now
	Done      <-chan struct{}  // stops background sweepers; nil runs them for the process lifetime
}

// server carries the dependencies shared by all handlers.
type server struct {
	stores    *Stores
	auth      *auth.Provider
	collector *perf.Collector
	notify    orchestrators.NotifyMemberDeps
	retry     orchestrators.RetryNotificationsDeps
	loc       *time.Location
	now       func() time.Time
}

// loadCSRFKey decodes the configured CSRF secret (hex-encoded, 32 bytes).
// In development an empty key is replaced by a random one per startup.
func loadCSRFKey(cfg *config.Config) ([]byte, error) {
	if cfg.CSRFKey != "" {
		key, err := hex.DecodeString(cfg.CSRFKey)
		if err != nil || len(key) != 32 {
			return nil, errors.New("GRIT_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key, nil
	}
	if cfg.IsProduction() {
		return nil, errors.New("GRIT_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate CSRF key: %w", err)
	}
	slog.Warn("csrf_key_random", "detail", "sessions won't survive restart; set GRIT_CSRF_KEY")
	return key, nil
}

// NewMux wires HTTP handlers for the app.
func NewMux(d Deps) (http.Handler, error) {
	cfg := d.Config
	now := d.Now
	if now == nil {
		now = time.Now
	}
	s := &server{
		stores:    d.Stores,
		auth:      d.Auth,
		collector: d.Collector,
		notify: orchestrators.NotifyMemberDeps{
			Sender:   d.Sender,
			From:     cfg.ResendFrom,
			ReplyTo:  cfg.ReplyTo,
			Location: cfg.Location,
			Now:      now,
		},
		loc: cfg.Location,
		now: now,
	}
	if d.Stores.Outbox != nil && d.Sender != nil {
		s.notify.Queue = d.Stores.Outbox
		s.retry = orchestrators.RetryNotificationsDeps{Outbox: d.Stores.Outbox, Sender: d.Sender, Now: now}
	}
	middleware.SecureCookies = cfg.IsProduction()

	csrfKey, err := loadCSRFKey(cfg)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	go limiter.RunSweeper(d.Done)

	// Applied inner to outer: SecurityHeaders -> CSRF -> Auth -> RateLimit -> Timing
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey, cfg.IsProduction(), nil),
		middleware.Auth(d.Auth),
		middleware.RateLimit(limiter),
		middleware.Timing(d.Collector, cfg.SlowRequest),
	), nil
}

func (s *server) registerRoutes(mux *http.ServeMux) {
	authed := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /login", s.handleLoginForm)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /healthz", handleHealth)

	mux.Handle("GET /payments", authed(s.handlePayments))
	mux.Handle("GET /payments/export.csv", authed(s.handleExportCSV))
	mux.Handle("GET /payments/export.xlsx", authed(s.handleExportXLSX))
	mux.Handle("GET /payments/{id}", authed(s.handlePaymentDetail))
	mux.Handle("GET /payments/{id}/expiry", authed(s.handleExpiryForm))
	mux.Handle("POST /payments/{id}/approve", authed(s.handleApprove))
	mux.Handle("POST /payments/{id}/reject", authed(s.handleReject))
	mux.Handle("POST /payments/{id}/expiry", authed(s.handleSetExpiry))
	mux.Handle("GET /members", authed(s.handleMembers))
	mux.Handle("GET /analytics", authed(s.handleAnalytics))

	mux.Handle("GET /api/payments", authed(s.handleAPIPayments))
	mux.Handle("POST /api/payments", authed(s.handleAPIIntake))
	mux.Handle("GET /api/payments/{id}", authed(s.handleAPIPayment))
	mux.Handle("POST /api/payments/{id}/approve", authed(s.handleAPIApprove))
	mux.Handle("POST /api/payments/{id}/reject", authed(s.handleAPIReject))
	mux.Handle("POST /api/payments/{id}/expiry", authed(s.handleAPISetExpiry))
	mux.Handle("GET /api/members", authed(s.handleAPIMembers))
	mux.Handle("GET /api/analytics", authed(s.handleAPIAnalytics))
	mux.Handle("GET /api/perf", authed(s.handlePerf))
	mux.Handle("GET /api/notifications", authed(s.handleListNotifications))
	mux.Handle("POST /api/notifications/{id}/retry", authed(s.handleRetryNotification))
	mux.Handle("POST /api/notifications/{id}/abandon", authed(s.handleAbandonNotification))
	mux.HandleFunc("GET /ws/session", s.handleSessionSocket)
}

// pageDeps builds the controller dependencies for one render pass.
func (s *server) pageDeps() pages.Deps {
	return pages.Deps{
		Documents: s.stores.Documents,
		Payments:  s.stores.Documents,
		Notify:    s.notify,
		Location:  s.loc,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
