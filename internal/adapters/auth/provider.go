// Package auth is the authentication provider: it verifies operator
// credentials, issues opaque session tokens and notifies subscribers when a
// session starts or ends.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"gritgym/internal/domain/account"
)

// DefaultTTL is the session lifetime when none is configured.
const DefaultTTL = 24 * time.Hour

// Identity is what a successful credential check yields.
type Identity struct {
	AccountID string
	Email     string
}

// VerifyFunc checks credentials. Its error is returned to the caller of SignIn unchanged.
type VerifyFunc func(ctx context.Context, email, password string) (Identity, error)

// Listener receives the session for a token, or nil once it has ended.
type Listener func(*account.Session)

// subscriber serializes deliveries to one listener.
type subscriber struct {
	mu sync.Mutex
	fn Listener
}

func (s *subscriber) deliver(sess *account.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fn(sess)
}

// Provider is an in-memory session table with change notification.
type Provider struct {
	mu        sync.Mutex
	sessions  map[string]account.Session
	listeners map[string]map[int]*subscriber
	nextID    int
	verify    VerifyFunc
	ttl       time.Duration
	now       func() time.Time
}

// NewProvider creates a provider. ttl <= 0 uses DefaultTTL.
func NewProvider(verify VerifyFunc, ttl time.Duration) *Provider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Provider{
		sessions:  make(map[string]account.Session),
		listeners: make(map[string]map[int]*subscriber),
		verify:    verify,
		ttl:       ttl,
		now:       time.Now,
	}
}

// SignIn verifies credentials and opens a session.
// POST: On success the session is stored and its listeners are notified
func (p *Provider) SignIn(ctx context.Context, email, password string) (account.Session, error) {
	id, err := p.verify(ctx, email, password)
	if err != nil {
		return account.Session{}, err
	}
	token, err := generateToken()
	if err != nil {
		return account.Session{}, err
	}
	now := p.now()
	s := account.Session{
		Token:     token,
		AccountID: id.AccountID,
		Email:     id.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(p.ttl),
	}
	p.mu.Lock()
	p.sessions[token] = s
	p.mu.Unlock()
	p.notify(token, &s)
	return s, nil
}

// SignOut ends the session for token. Unknown tokens are not an error.
// POST: Listeners for token receive nil
func (p *Provider) SignOut(_ context.Context, token string) error {
	p.mu.Lock()
	s, ok := p.sessions[token]
	delete(p.sessions, token)
	p.mu.Unlock()
	if ok {
		slog.Info("auth_event", "event", "logout", "email", s.Email)
		p.notify(token, nil)
	}
	return nil
}

func (p *Provider) lookupLocked(token string) *account.Session {
	s, ok := p.sessions[token]
	if !ok {
		return nil
	}
	if s.Expired(p.now()) {
		delete(p.sessions, token)
		return nil
	}
	return &s
}

// Subscribe registers fn for changes to token's session.
// POST: fn is called once immediately with the current state, then on every change
// INVARIANT: fn is never called while the provider lock is held
// INVARIANT: a change made after the current state was read reaches fn after it
func (p *Provider) Subscribe(token string, fn func(*account.Session)) (unsubscribe func()) {
	sub := &subscriber{fn: fn}
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	if p.listeners[token] == nil {
		p.listeners[token] = make(map[int]*subscriber)
	}
	p.listeners[token][id] = sub
	current := p.lookupLocked(token)
	sub.mu.Lock()
	p.mu.Unlock()

	fn(current)
	sub.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.listeners[token], id)
			if len(p.listeners[token]) == 0 {
				delete(p.listeners, token)
			}
		})
	}
}

func (p *Provider) notify(token string, s *account.Session) {
	p.mu.Lock()
	subs := make([]*subscriber, 0, len(p.listeners[token]))
	for _, sub := range p.listeners[token] {
		subs = append(subs, sub)
	}
	p.mu.Unlock()
	for _, sub := range subs {
		sub.deliver(s)
	}
}

// Sweep removes expired sessions and notifies their listeners.
// POST: Returns the number of sessions removed
func (p *Provider) Sweep() int {
	now := p.now()
	var expired []string
	p.mu.Lock()
	for token, s := range p.sessions {
		if s.Expired(now) {
			delete(p.sessions, token)
			expired = append(expired, token)
		}
	}
	p.mu.Unlock()
	for _, token := range expired {
		p.notify(token, nil)
	}
	if len(expired) > 0 {
		slog.Info("auth_event", "event", "sessions_expired", "count", len(expired))
	}
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx ends.
func (p *Provider) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Sweep()
		}
	}
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
