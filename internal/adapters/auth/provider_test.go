package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gritgym/internal/domain/account"
)

var errBadCreds = errors.New("invalid email or password")

func isLive(p *Provider, token string) bool {
	live := false
	p.Subscribe(token, func(cur *account.Session) { live = cur != nil })()
	return live
}

func fakeVerify(_ context.Context, email, password string) (Identity, error) {
	if password != "correct-horse-battery" {
		return Identity{}, errBadCreds
	}
	return Identity{AccountID: "a1", Email: email}, nil
}

// TestProvider_SignIn verifies sessions are created only for valid credentials.
func TestProvider_SignIn(t *testing.T) {
	p := NewProvider(fakeVerify, time.Hour)

	if _, err := p.SignIn(context.Background(), "admin@gritgym.ph", "nope"); !errors.Is(err, errBadCreds) {
		t.Fatalf("expected verify error, got %v", err)
	}
	s, err := p.SignIn(context.Background(), "admin@gritgym.ph", "correct-horse-battery")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if s.Token == "" || s.AccountID != "a1" {
		t.Errorf("session = %+v", s)
	}
	if !isLive(p, s.Token) {
		t.Error("session not stored")
	}
}

// TestProvider_Subscribe verifies the immediate report and later changes.
func TestProvider_Subscribe(t *testing.T) {
	p := NewProvider(fakeVerify, time.Hour)
	s, _ := p.SignIn(context.Background(), "admin@gritgym.ph", "correct-horse-battery")

	var got []*account.Session
	unsub := p.Subscribe(s.Token, func(cur *account.Session) { got = append(got, cur) })
	if len(got) != 1 || got[0] == nil {
		t.Fatalf("expected immediate authenticated report, got %v", got)
	}

	p.SignOut(context.Background(), s.Token)
	if len(got) != 2 || got[1] != nil {
		t.Fatalf("expected nil after sign-out, got %v", got)
	}

	unsub()
	unsub()
	p.notify(s.Token, nil)
	if len(got) != 2 {
		t.Errorf("listener called after unsubscribe")
	}
}

// TestProvider_SubscribeUnknownToken verifies an immediate nil report.
func TestProvider_SubscribeUnknownToken(t *testing.T) {
	p := NewProvider(fakeVerify, time.Hour)
	called := false
	p.Subscribe("nope", func(cur *account.Session) {
		called = true
		if cur != nil {
			t.Error("expected nil session")
		}
	})()
	if !called {
		t.Error("listener not called")
	}
}

// TestProvider_Sweep verifies expiry removes sessions and notifies listeners.
func TestProvider_Sweep(t *testing.T) {
	p := NewProvider(fakeVerify, time.Hour)
	now := time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }
	s, _ := p.SignIn(context.Background(), "admin@gritgym.ph", "correct-horse-battery")

	ended := false
	p.Subscribe(s.Token, func(cur *account.Session) {
		if cur == nil {
			ended = true
		}
	})

	if n := p.Sweep(); n != 0 {
		t.Fatalf("swept %d live sessions", n)
	}
	now = now.Add(time.Hour)
	if isLive(p, s.Token) {
		t.Error("expired session still current")
	}
	p.sessions[s.Token] = s
	if n := p.Sweep(); n != 1 || !ended {
		t.Errorf("Sweep = %d, ended = %v", n, ended)
	}
}

// TestProvider_SubscribeOrdersSignOutAfterInitialReport keeps a concurrent
// sign-out from being overwritten by the initial report.
func TestProvider_SubscribeOrdersSignOutAfterInitialReport(t *testing.T) {
	p := NewProvider(fakeVerify, time.Hour)
	s, _ := p.SignIn(context.Background(), "admin@gritgym.ph", "correct-horse-battery")

	var (
		mu   sync.Mutex
		got  []*account.Session
		done = make(chan struct{})
	)
	first := true
	unsub := p.Subscribe(s.Token, func(cur *account.Session) {
		if first {
			first = false
			go func() {
				p.SignOut(context.Background(), s.Token)
				close(done)
			}()
			time.Sleep(20 * time.Millisecond)
		}
		mu.Lock()
		got = append(got, cur)
		mu.Unlock()
	})
	defer unsub()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0] == nil || got[1] != nil {
		t.Fatalf("reports = %v, want [session nil]", got)
	}
}
