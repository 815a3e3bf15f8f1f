package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"gritgym/internal/domain/payment"
)

// PaymentCreator defines the store interface needed by IntakePayment.
type PaymentCreator interface {
	Create(ctx context.Context, collection string, fields map[string]any) (string, error)
}

// EmergencyContactInput is the optional emergency contact block.
type EmergencyContactInput struct {
	Person        string `json:"person"`
	ContactNumber string `json:"contactNumber"`
	Address       string `json:"address"`
}

// IntakePaymentInput carries a membership payment submission.
type IntakePaymentInput struct {
	FullName         string                 `json:"fullName" validate:"required"`
	Email            string                 `json:"email" validate:"required"`
	ContactNumber    string                 `json:"contactNumber" validate:"required"`
	ReferenceNumber  string                 `json:"referenceNumber"`
	Amount           float64                `json:"amount"`
	PaymentMethod    string                 `json:"paymentMethod"`
	Plan             string                 `json:"plan"`
	DurationDays     int                    `json:"durationDays"`
	EmergencyContact *EmergencyContactInput `json:"emergencyContact"`
}

// IntakePaymentDeps holds dependencies for IntakePayment.
type IntakePaymentDeps struct {
	Payments PaymentCreator
	Now      func() time.Time
}

// ExecuteIntakePayment stores a new pending payment.
// PRE: fullName, email and contactNumber are present
// POST: Document has status=pending, createdAt=now and no expiresAt; returns its id
func ExecuteIntakePayment(ctx context.Context, input IntakePaymentInput, deps IntakePaymentDeps) (string, error) {
	if err := checkInput(input); err != nil {
		return "", err
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	days := input.DurationDays
	if days <= 0 {
		days = payment.DefaultDurationDays
	}

	fields := map[string]any{
		payment.FieldFullName:        input.FullName,
		payment.FieldEmail:           input.Email,
		payment.FieldContactNumber:   input.ContactNumber,
		payment.FieldReferenceNumber: input.ReferenceNumber,
		payment.FieldAmount:          input.Amount,
		payment.FieldPaymentMethod:   input.PaymentMethod,
		payment.FieldPlan:            input.Plan,
		payment.FieldStatus:          string(payment.StatusPending),
		payment.FieldCreatedAt:       now(),
		payment.FieldDurationDays:    days,
	}
	if ec := input.EmergencyContact; ec != nil {
		fields[payment.FieldEmergencyContact] = map[string]any{
			"person":        ec.Person,
			"contactNumber": ec.ContactNumber,
			"address":       ec.Address,
		}
	}

	id, err := deps.Payments.Create(ctx, payment.Collection, fields)
	if err != nil {
		return "", err
	}
	slog.Info("payment_event", "event", "submitted", "id", id, "plan", input.Plan)
	return id, nil
}
