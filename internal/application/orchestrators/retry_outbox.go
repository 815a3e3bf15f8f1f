package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gritgym/internal/adapters/email"
	"gritgym/internal/domain/outbox"
)

// ErrDeliveryFailed reports that a retried email was refused again.
var ErrDeliveryFailed = errors.New("delivery failed")

// OutboxStore defines the store interface needed by notification retries.
type OutboxStore interface {
	GetByID(ctx context.Context, id string) (outbox.Entry, error)
	Save(ctx context.Context, e outbox.Entry) error
}

// RetryNotificationsDeps holds dependencies for RetryNotification and AbandonNotification.
type RetryNotificationsDeps struct {
	Outbox OutboxStore
	Sender email.Sender
	Now    func() time.Time
}

// ExecuteRetryNotification makes one operator-requested delivery attempt.
// PRE: Entry exists and is pending; Sender is set
// POST: Entry is saved as sent, or stays pending with the new error and ErrDeliveryFailed is returned
func ExecuteRetryNotification(ctx context.Context, id string, deps RetryNotificationsDeps) (outbox.Entry, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	entry, err := deps.Outbox.GetByID(ctx, id)
	if err != nil {
		return outbox.Entry{}, err
	}
	if !entry.CanRetry() {
		return entry, outbox.ErrNotRetryable
	}

	res, sendErr := deps.Sender.Send(ctx, email.SendRequest{
		To:      []string{entry.To},
		From:    entry.From,
		Subject: entry.Subject,
		HTML:    entry.HTML,
		ReplyTo: entry.ReplyTo,
	})
	if sendErr != nil {
		entry.MarkFailed(sendErr, now())
	} else {
		entry.MarkSent(res.MessageID, now())
	}
	if err := deps.Outbox.Save(ctx, entry); err != nil {
		return entry, fmt.Errorf("failed to save outbox entry: %w", err)
	}

	if sendErr != nil {
		slog.Warn("notify_retry_failed", "outbox_id", id, "attempt", entry.Attempts, "error", sendErr)
		return entry, fmt.Errorf("%w: %v", ErrDeliveryFailed, sendErr)
	}
	slog.Info("notify_sent", "id", entry.PaymentID, "outbox_id", id, "attempt", entry.Attempts, "message_id", res.MessageID)
	return entry, nil
}

// ExecuteAbandonNotification stops a queued email from being retried.
// PRE: Entry exists and is pending
func ExecuteAbandonNotification(ctx context.Context, id string, deps RetryNotificationsDeps) (outbox.Entry, error) {
	entry, err := deps.Outbox.GetByID(ctx, id)
	if err != nil {
		return outbox.Entry{}, err
	}
	if err := entry.MarkAbandoned(); err != nil {
		return entry, err
	}
	if err := deps.Outbox.Save(ctx, entry); err != nil {
		return entry, fmt.Errorf("failed to save outbox entry: %w", err)
	}
	slog.Info("outbox_event", "event", "abandoned", "outbox_id", id)
	return entry, nil
}
