package payment

import (
	"errors"
	"time"

	"gritgym/internal/domain/expiry"
	"gritgym/internal/domain/timestamp"
)

// Collection is the document-store collection holding payment records.
const Collection = "payments"

// Status is the review state of a payment.
type Status string

// Status constants
const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Statuses lists the valid statuses in display order.
var Statuses = []Status{StatusPending, StatusApproved, StatusRejected}

// DefaultDurationDays is the membership length assumed when none was recorded.
const DefaultDurationDays = 30

// Document field names.
const (
	FieldFullName         = "fullName"
	FieldEmail            = "email"
	FieldContactNumber    = "contactNumber"
	FieldReferenceNumber  = "referenceNumber"
	FieldAmount           = "amount"
	FieldPaymentMethod    = "paymentMethod"
	FieldPlan             = "plan"
	FieldStatus           = "status"
	FieldCreatedAt        = "createdAt"
	FieldExpiresAt        = "expiresAt"
	FieldDurationDays     = "durationDays"
	FieldEmergencyContact = "emergencyContact"
)

// Domain errors
var (
	ErrInvalidTransition = errors.New("payment status does not allow this change")
	ErrNotApproved       = errors.New("expiry can only be set on approved payments")
	ErrExpiryInPast      = errors.New("expiry date must be in the future")
	ErrInvalidDuration   = errors.New("duration must be greater than 0")
	ErrNotFound          = errors.New("payment not found")
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Title returns the capitalised status for badges.
func (s Status) Title() string {
	if s == "" {
		return ""
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// EmergencyContact is the optional emergency contact captured at submission.
type EmergencyContact struct {
	Person        string
	ContactNumber string
	Address       string
}

// Payment is the canonical view-model of one membership payment.
type Payment struct {
	ID               string
	FullName         string
	Email            string
	ContactNumber    string
	ReferenceNumber  string
	Amount           float64
	PaymentMethod    string
	Plan             string
	Status           Status
	CreatedAt        any
	ExpiresAt        any
	DurationDays     int
	EmergencyContact *EmergencyContact
}

// Created returns the normalized submission time.
func (p Payment) Created() timestamp.Instant {
	return timestamp.Normalize(p.CreatedAt)
}

// Expires returns the normalized expiry time.
func (p Payment) Expires() timestamp.Instant {
	return timestamp.Normalize(p.ExpiresAt)
}

// Expiry derives the expiry status of the payment at now.
// INVARIANT: Pending payments are not special-cased; no expiresAt means unknown
func (p Payment) Expiry(now time.Time) expiry.Status {
	return expiry.Evaluate(p.Expires(), now)
}

// IsPending reports whether the payment awaits review.
func (p Payment) IsPending() bool {
	return p.Status == StatusPending
}

// IsApproved reports whether the payment is an active membership.
func (p Payment) IsApproved() bool {
	return p.Status == StatusApproved
}

// CanApprove reports whether approving is allowed (idempotent for approved).
func (p Payment) CanApprove() bool {
	return p.Status == StatusPending || p.Status == StatusApproved
}

// CanReject reports whether rejecting is allowed (idempotent for rejected).
func (p Payment) CanReject() bool {
	return p.Status == StatusPending || p.Status == StatusRejected
}

// CheckApprove validates the pending→approved transition.
// PRE: Payment was loaded from the store
// POST: Returns ErrInvalidTransition for rejected payments
func (p Payment) CheckApprove() error {
	if !p.CanApprove() {
		return ErrInvalidTransition
	}
	return nil
}

// CheckReject validates the pending→rejected transition.
// PRE: Payment was loaded from the store
// POST: Returns ErrInvalidTransition for approved payments
func (p Payment) CheckReject() error {
	if !p.CanReject() {
		return ErrInvalidTransition
	}
	return nil
}

// CheckSetExpiry validates that expiry may be edited.
// INVARIANT: expiresAt changes only while approved
func (p Payment) CheckSetExpiry() error {
	if p.Status != StatusApproved {
		return ErrNotApproved
	}
	return nil
}

// ExpiryByDate returns the expiry for an explicit date, which must not be before now.
// PRE: date was parsed from a YYYY-MM-DD input
// POST: Returns ErrExpiryInPast when date < now
func ExpiryByDate(date, now time.Time) (time.Time, error) {
	if date.Before(now) {
		return time.Time{}, ErrExpiryInPast
	}
	return date, nil
}

// ExpiryByDuration returns now + days.
// PRE: days > 0
// POST: Returns ErrInvalidDuration for days <= 0
func ExpiryByDuration(days int, now time.Time) (time.Time, error) {
	if days <= 0 {
		return time.Time{}, ErrInvalidDuration
	}
	return now.Add(time.Duration(days) * 24 * time.Hour), nil
}
