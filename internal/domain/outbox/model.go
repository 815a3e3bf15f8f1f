// Package outbox models member emails whose delivery failed and that wait
// for an operator to retry or abandon them.
package outbox

import (
	"errors"
	"time"
)

// Status constants for the delivery lifecycle.
const (
	StatusPending   = "pending"
	StatusSent      = "sent"
	StatusAbandoned = "abandoned"
)

// Domain errors
var (
	ErrNotFound      = errors.New("outbox entry not found")
	ErrNoRecipient   = errors.New("recipient is required")
	ErrEmptySubject  = errors.New("subject is required")
	ErrEmptyBody     = errors.New("body is required")
	ErrNotRetryable  = errors.New("entry is no longer pending")
	ErrMissingCreate = errors.New("created_at must be set")
)

// Entry is one queued member email.
type Entry struct {
	ID              string
	PaymentID       string
	Kind            string // notification kind, e.g. "approved"
	To              string
	From            string
	ReplyTo         string
	Subject         string
	HTML            string
	Status          string
	Attempts        int
	LastAttemptedAt time.Time
	CreatedAt       time.Time
	MessageID       string // provider receipt once sent
	LastError       string
}

// Validate checks that the Entry has valid data.
// PRE: Entry struct is populated
// POST: Status defaults to pending
func (e *Entry) Validate() error {
	if e.To == "" {
		return ErrNoRecipient
	}
	if e.Subject == "" {
		return ErrEmptySubject
	}
	if e.HTML == "" {
		return ErrEmptyBody
	}
	if e.CreatedAt.IsZero() {
		return ErrMissingCreate
	}
	if e.Status == "" {
		e.Status = StatusPending
	}
	return nil
}

// CanRetry reports whether an operator may attempt delivery again.
func (e Entry) CanRetry() bool {
	return e.Status == StatusPending
}

// MarkSent records a successful delivery.
// POST: Status is sent, LastError cleared
func (e *Entry) MarkSent(messageID string, now time.Time) {
	e.Attempts++
	e.LastAttemptedAt = now
	e.Status = StatusSent
	e.MessageID = messageID
	e.LastError = ""
}

// MarkFailed records a failed attempt.
// POST: Status stays pending, LastError holds the provider error
func (e *Entry) MarkFailed(err error, now time.Time) {
	e.Attempts++
	e.LastAttemptedAt = now
	e.LastError = err.Error()
}

// MarkAbandoned stops an entry from being retried.
// PRE: Entry is pending
func (e *Entry) MarkAbandoned() error {
	if !e.CanRetry() {
		return ErrNotRetryable
	}
	e.Status = StatusAbandoned
	return nil
}
