package account_test

import (
	"errors"
	"testing"
	"time"

	"gritgym/internal/domain/account"
)

// TestAccount_Validate tests validation of Account.
func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{"valid", "admin@gritgym.ph", nil},
		{"empty", "  ", account.ErrEmptyEmail},
		{"no at sign", "not-an-email", account.ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := account.Account{Email: tt.email}
			if err := a.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestAccount_Password tests hashing and verification.
func TestAccount_Password(t *testing.T) {
	var a account.Account
	if err := a.SetPassword("short"); !errors.Is(err, account.ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := a.SetPassword("correct-horse-battery"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if err := a.CheckPassword("correct-horse-battery"); err != nil {
		t.Errorf("CheckPassword(correct) = %v", err)
	}
	if err := a.CheckPassword("wrong-password-here"); !errors.Is(err, account.ErrWrongPassword) {
		t.Errorf("CheckPassword(wrong) = %v", err)
	}
}

// TestAccount_Lockout tests that the fifth failure locks the account.
func TestAccount_Lockout(t *testing.T) {
	now := time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)
	var a account.Account
	for i := 0; i < account.MaxFailedLogins-1; i++ {
		a.RecordFailedLogin(now)
	}
	if a.IsLocked(now) {
		t.Fatal("locked before reaching the limit")
	}
	a.RecordFailedLogin(now)
	if !a.IsLocked(now) {
		t.Fatal("expected lock after limit")
	}
	if a.IsLocked(now.Add(account.LockoutDuration)) {
		t.Error("lock should lapse after the lockout duration")
	}
	a.ResetFailedLogins()
	if a.FailedLogins != 0 || a.IsLocked(now) {
		t.Error("reset did not clear lock")
	}
}

// TestNormalizeEmail tests case folding for lookup.
func TestNormalizeEmail(t *testing.T) {
	if got := account.NormalizeEmail("  Admin@GritGym.PH "); got != "admin@gritgym.ph" {
		t.Errorf("got %q", got)
	}
}
