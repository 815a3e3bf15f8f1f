package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gritgym/internal/domain/payment"
)

// Expiry modes.
const (
	ExpiryByDate     = "date"
	ExpiryByDuration = "duration"
)

// DateInputLayout is the format of the date picker value.
const DateInputLayout = "2006-01-02"

// ErrInvalidDate is returned when the date input cannot be parsed.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// SetExpiryInput carries input for SetExpiry.
type SetExpiryInput struct {
	ID   string    `validate:"required"`
	Mode string    `validate:"required,oneof=date duration"`
	Date string    `validate:"required_if=Mode date"`
	Days int       // used when Mode is duration
	Now  time.Time `validate:"required"`
}

// SetExpiryDeps holds dependencies for SetExpiry.
type SetExpiryDeps struct {
	Payments PaymentStore
}

// SetExpiryResult carries the fields that were written.
type SetExpiryResult struct {
	ExpiresAt    time.Time
	DurationDays int // 0 when durationDays was not written
}

// Apply patches a local copy with exactly the written fields.
func (r SetExpiryResult) Apply(p *payment.Payment) {
	p.ExpiresAt = r.ExpiresAt
	if r.DurationDays > 0 {
		p.DurationDays = r.DurationDays
	}
}

// ExecuteSetExpiry sets expiresAt from an explicit date or a duration from now.
// PRE: Payment is approved
// POST: By date writes {expiresAt}; by duration writes {expiresAt, durationDays}
// INVARIANT: A date before Now and a duration <= 0 are refused before any write
func ExecuteSetExpiry(ctx context.Context, input SetExpiryInput, deps SetExpiryDeps) (SetExpiryResult, error) {
	if err := checkInput(input); err != nil {
		return SetExpiryResult{}, err
	}

	var result SetExpiryResult
	switch input.Mode {
	case ExpiryByDate:
		date, err := time.ParseInLocation(DateInputLayout, input.Date, time.UTC)
		if err != nil {
			return SetExpiryResult{}, ErrInvalidDate
		}
		if result.ExpiresAt, err = payment.ExpiryByDate(date, input.Now); err != nil {
			return SetExpiryResult{}, err
		}
	default:
		at, err := payment.ExpiryByDuration(input.Days, input.Now)
		if err != nil {
			return SetExpiryResult{}, err
		}
		result = SetExpiryResult{ExpiresAt: at, DurationDays: input.Days}
	}

	current, err := loadPayment(ctx, deps.Payments, input.ID)
	if err != nil {
		return SetExpiryResult{}, err
	}
	if err := current.CheckSetExpiry(); err != nil {
		return SetExpiryResult{}, err
	}

	fields := map[string]any{payment.FieldExpiresAt: result.ExpiresAt}
	if result.DurationDays > 0 {
		fields[payment.FieldDurationDays] = result.DurationDays
	}
	if err := writeFields(ctx, deps.Payments, input.ID, fields); err != nil {
		return SetExpiryResult{}, err
	}
	slog.Info("payment_event", "event", "expiry_set", "id", input.ID, "mode", input.Mode, "expires_at", result.ExpiresAt)
	return result, nil
}
