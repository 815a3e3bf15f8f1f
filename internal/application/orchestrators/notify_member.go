package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gritgym/internal/adapters/email"
	"gritgym/internal/domain/notification"
	"gritgym/internal/domain/outbox"
	"gritgym/internal/domain/payment"
)

// NotificationQueue stores emails whose delivery failed for operator retry.
type NotificationQueue interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// NotifyMemberInput carries input for NotifyMember.
type NotifyMemberInput struct {
	Payment payment.Payment
	Kind    notification.Kind
}

// NotifyMemberDeps holds dependencies for NotifyMember. A nil Sender disables notifications.
// A nil Queue returns failed deliveries to the caller.
type NotifyMemberDeps struct {
	Sender   email.Sender
	Queue    NotificationQueue
	From     string
	ReplyTo  string
	Location *time.Location
	Now      func() time.Time
}

// ExecuteNotifyMember emails the member about a review outcome.
// PRE: Payment carries the post-review status
// POST: One email is handed to the sender; payments without email are skipped.
// A failed send is queued for operator retry when a Queue is configured.
func ExecuteNotifyMember(ctx context.Context, input NotifyMemberInput, deps NotifyMemberDeps) error {
	if deps.Sender == nil {
		return nil
	}
	expires := input.Payment.Expires().Format("Jan 2, 2006", deps.Location, "")
	msg, err := notification.Compose(input.Payment, input.Kind, expires)
	if errors.Is(err, notification.ErrNoRecipient) {
		slog.Info("notify_skipped", "id", input.Payment.ID, "reason", "no_email")
		return nil
	}
	if err != nil {
		return err
	}
	html, err := msg.HTML()
	if err != nil {
		return err
	}
	req := email.SendRequest{
		To:      []string{msg.To},
		From:    deps.From,
		Subject: msg.Subject,
		HTML:    html,
		ReplyTo: deps.ReplyTo,
	}
	res, err := deps.Sender.Send(ctx, req)
	if err != nil {
		if deps.Queue == nil {
			return err
		}
		return enqueueNotification(ctx, deps, input, req, err)
	}
	slog.Info("notify_sent", "id", input.Payment.ID, "kind", input.Kind, "message_id", res.MessageID)
	return nil
}

func enqueueNotification(ctx context.Context, deps NotifyMemberDeps, input NotifyMemberInput, req email.SendRequest, sendErr error) error {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	at := now()
	entry := outbox.Entry{
		ID:        uuid.NewString(),
		PaymentID: input.Payment.ID,
		Kind:      string(input.Kind),
		To:        req.To[0],
		From:      req.From,
		ReplyTo:   req.ReplyTo,
		Subject:   req.Subject,
		HTML:      req.HTML,
		CreatedAt: at,
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	entry.MarkFailed(sendErr, at)
	if err := deps.Queue.Save(ctx, entry); err != nil {
		return fmt.Errorf("send failed (%v) and could not be queued: %w", sendErr, err)
	}
	slog.Warn("notify_queued", "id", input.Payment.ID, "outbox_id", entry.ID, "error", sendErr)
	return nil
}
