package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gritgym/internal/domain/account"
)

// AccountStoreForSeed defines the store interface needed by SeedAdmin.
type AccountStoreForSeed interface {
	Count(ctx context.Context) (int, error)
	Save(ctx context.Context, a account.Account) error
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	AccountStore AccountStoreForSeed
}

// ExecuteSeedAdmin creates the first operator account if none exist.
// PRE: email and password satisfy account validation
// POST: Exactly one account exists when the store was empty; otherwise nothing changes
func ExecuteSeedAdmin(ctx context.Context, deps SeedAdminDeps, email, password string) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	acct := account.Account{
		ID:        uuid.NewString(),
		Email:     account.NormalizeEmail(email),
		CreatedAt: time.Now(),
	}
	if err := acct.Validate(); err != nil {
		return err
	}
	if err := acct.SetPassword(password); err != nil {
		return err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "admin_seeded", "email", acct.Email)
	return nil
}
