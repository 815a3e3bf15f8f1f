// Package email delivers member notifications through an external provider.
package email

import (
	"context"
	"time"
)

// SendRequest contains the data needed to send one email.
type SendRequest struct {
	To      []string
	From    string // e.g. "Grit Gym <noreply@gritgym.ph>"; empty uses the sender default
	Subject string
	HTML    string
	ReplyTo string
}

// SendResult contains the provider's acceptance receipt.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender sends email via an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
