package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gritgym/internal/adapters/storage/docstore"
	"gritgym/internal/application/projections"
	"gritgym/internal/domain/notification"
	"gritgym/internal/domain/payment"
)

// PaymentStore defines the document operations payment mutations need.
type PaymentStore interface {
	Get(ctx context.Context, collection, id string) (docstore.Document, error)
	UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error
}

// ReviewPaymentInput carries input for approve and reject.
type ReviewPaymentInput struct {
	ID string `validate:"required"`
}

// ReviewPaymentDeps holds dependencies for approve and reject.
type ReviewPaymentDeps struct {
	Payments PaymentStore
	Notify   NotifyMemberDeps
}

// ReviewPaymentResult is the status that was written.
type ReviewPaymentResult struct {
	Status payment.Status
}

// Apply patches a local copy with exactly the written field.
func (r ReviewPaymentResult) Apply(p *payment.Payment) {
	p.Status = r.Status
}

// ExecuteApprovePayment moves a payment to approved.
// PRE: Payment exists and is pending (or already approved)
// POST: Store holds status=approved; the member is notified when the status changed
// INVARIANT: Only the status field is written
func ExecuteApprovePayment(ctx context.Context, input ReviewPaymentInput, deps ReviewPaymentDeps) (ReviewPaymentResult, error) {
	return review(ctx, input, deps, payment.StatusApproved, payment.Payment.CheckApprove, notification.KindApproved)
}

// ExecuteRejectPayment moves a payment to rejected.
// PRE: Payment exists and is pending (or already rejected)
// POST: Store holds status=rejected; the member is notified when the status changed
// INVARIANT: Only the status field is written
func ExecuteRejectPayment(ctx context.Context, input ReviewPaymentInput, deps ReviewPaymentDeps) (ReviewPaymentResult, error) {
	return review(ctx, input, deps, payment.StatusRejected, payment.Payment.CheckReject, notification.KindRejected)
}

func review(
	ctx context.Context,
	input ReviewPaymentInput,
	deps ReviewPaymentDeps,
	to payment.Status,
	check func(payment.Payment) error,
	kind notification.Kind,
) (ReviewPaymentResult, error) {
	if err := checkInput(input); err != nil {
		return ReviewPaymentResult{}, err
	}
	current, err := loadPayment(ctx, deps.Payments, input.ID)
	if err != nil {
		return ReviewPaymentResult{}, err
	}
	if err := check(current); err != nil {
		return ReviewPaymentResult{}, err
	}

	if err := writeFields(ctx, deps.Payments, input.ID, map[string]any{payment.FieldStatus: string(to)}); err != nil {
		return ReviewPaymentResult{}, err
	}
	slog.Info("payment_event", "event", "status_changed", "id", input.ID, "from", current.Status, "to", to)

	result := ReviewPaymentResult{Status: to}
	if current.Status != to {
		updated := current
		result.Apply(&updated)
		if err := ExecuteNotifyMember(ctx, NotifyMemberInput{Payment: updated, Kind: kind}, deps.Notify); err != nil {
			slog.Warn("notify_failed", "id", input.ID, "error", err)
		}
	}
	return result, nil
}

func loadPayment(ctx context.Context, store PaymentStore, id string) (payment.Payment, error) {
	p, err := projections.QueryGetPayment(ctx, projections.GetPaymentQuery{ID: id}, projections.GetPaymentDeps{Documents: store})
	if err != nil && !errors.Is(err, payment.ErrNotFound) {
		return payment.Payment{}, fmt.Errorf("failed to load payment: %w", err)
	}
	return p, err
}

func writeFields(ctx context.Context, store PaymentStore, id string, fields map[string]any) error {
	err := store.UpdateFields(ctx, payment.Collection, id, fields)
	if errors.Is(err, docstore.ErrNotFound) {
		return payment.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}
