package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"gritgym/internal/adapters/storage/docstore"
	"gritgym/internal/domain/payment"
)

// PaymentSeedStore defines the store interface needed by SeedPayments.
type PaymentSeedStore interface {
	ListAll(ctx context.Context, collection string) ([]docstore.Document, error)
	PaymentCreator
}

// SeedPaymentsDeps holds dependencies for SeedPayments.
type SeedPaymentsDeps struct {
	Payments PaymentSeedStore
	Now      time.Time
}

type seedPayment struct {
	name, email, contact, ref, plan string
	amount                          float64
	status                          payment.Status
	createdAt                       any
	expiresInDays                   int // only for approved; 0 leaves expiresAt unset
}

// ExecuteSeedPayments fills an empty payments collection with sample submissions.
// PRE: Development environment only
// POST: Collection left untouched when it already has documents
// INVARIANT: Samples cover every status, expiry category and stored timestamp shape
func ExecuteSeedPayments(ctx context.Context, deps SeedPaymentsDeps) error {
	existing, err := deps.Payments.ListAll(ctx, payment.Collection)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	now := deps.Now
	day := 24 * time.Hour
	samples := []seedPayment{
		{"Jane Doe", "jane@example.com", "09171234567", "GCASH-1001", "Monthly", 1500, payment.StatusApproved, now.Add(-20 * day), 10},
		{"Marco Reyes", "marco@example.com", "09181234567", "BDO-2044", "Quarterly", 4000, payment.StatusApproved, map[string]any{"seconds": float64(now.Add(-60 * day).Unix()), "nanoseconds": float64(0)}, 3},
		{"Aiko Tan", "aiko@example.com", "09191234567", "GCASH-1002", "Monthly", 1500, payment.StatusApproved, now.Add(-45 * day).Format(time.RFC3339), -2},
		{"Ben Cruz", "ben@example.com", "09201234567", "MAYA-3001", "Annual", 15000, payment.StatusApproved, float64(now.Add(-5 * day).UnixMilli()), 360},
		{"Lea Santos", "lea@example.com", "09211234567", "GCASH-1003", "Monthly", 1500, payment.StatusPending, now.Add(-1 * day), 0},
		{"Rico Lim", "rico@example.com", "09221234567", "BDO-2045", "", 1200, payment.StatusPending, now.Add(-2 * time.Hour), 0},
		{"Nina Go", "nina@example.com", "09231234567", "GCASH-1004", "Quarterly", 4000, payment.StatusRejected, now.Add(-3 * day), 0},
	}

	for _, s := range samples {
		fields := map[string]any{
			payment.FieldFullName:        s.name,
			payment.FieldEmail:           s.email,
			payment.FieldContactNumber:   s.contact,
			payment.FieldReferenceNumber: s.ref,
			payment.FieldAmount:          s.amount,
			payment.FieldPaymentMethod:   "e-wallet",
			payment.FieldPlan:            s.plan,
			payment.FieldStatus:          string(s.status),
			payment.FieldCreatedAt:       s.createdAt,
			payment.FieldDurationDays:    payment.DefaultDurationDays,
		}
		if s.expiresInDays != 0 {
			fields[payment.FieldExpiresAt] = now.Add(time.Duration(s.expiresInDays) * day)
		}
		if _, err := deps.Payments.Create(ctx, payment.Collection, fields); err != nil {
			return err
		}
	}
	slog.Info("seed_event", "event", "payments_seeded", "count", len(samples))
	return nil
}
