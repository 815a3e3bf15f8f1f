package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gritgym/internal/domain/account"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	AccountID string
	Email     string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	Now          func() time.Time
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked due to too many failed attempts")
)

// ExecuteLogin validates operator credentials.
// PRE: Valid email and password provided
// POST: Returns account info on success, records failed login on failure
// INVARIANT: A locked account is refused before the password is checked
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	if err := checkInput(input); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	acct, err := deps.AccountStore.GetByEmail(ctx, account.NormalizeEmail(input.Email))
	if err != nil {
		if !errors.Is(err, account.ErrNotFound) {
			return LoginResult{}, err
		}
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	}

	if acct.IsLocked(now()) {
		slog.Info("auth_event", "event", "login_blocked", "email", input.Email, "reason", "locked")
		return LoginResult{}, ErrAccountLocked
	}

	if err := acct.CheckPassword(input.Password); err != nil {
		acct.RecordFailedLogin(now())
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			slog.Error("internal_error", "error", err.Error(), "op", "record_failed_login")
		}
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", "wrong_password", "failed_logins", acct.FailedLogins)
		return LoginResult{}, ErrInvalidCredentials
	}

	if acct.FailedLogins > 0 {
		acct.ResetFailedLogins()
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			slog.Error("internal_error", "error", err.Error(), "op", "reset_failed_logins")
		}
	}

	slog.Info("auth_event", "event", "login_success", "email", acct.Email)
	return LoginResult{AccountID: acct.ID, Email: acct.Email}, nil
}
