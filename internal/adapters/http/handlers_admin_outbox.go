package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"gritgym/internal/application/orchestrators"
	"gritgym/internal/domain/outbox"
)

// notificationJSON is the wire shape of a queued member email.
type notificationJSON struct {
	ID              string     `json:"id"`
	PaymentID       string     `json:"paymentId"`
	Kind            string     `json:"kind"`
	To              string     `json:"to"`
	Subject         string     `json:"subject"`
	Status          string     `json:"status"`
	Attempts        int        `json:"attempts"`
	LastAttemptedAt *time.Time `json:"lastAttemptedAt"`
	LastError       string     `json:"lastError,omitempty"`
}

func toNotificationJSON(e outbox.Entry) notificationJSON {
	out := notificationJSON{
		ID:        e.ID,
		PaymentID: e.PaymentID,
		Kind:      e.Kind,
		To:        e.To,
		Subject:   e.Subject,
		Status:    e.Status,
		Attempts:  e.Attempts,
		LastError: e.LastError,
	}
	if !e.LastAttemptedAt.IsZero() {
		at := e.LastAttemptedAt.UTC()
		out.LastAttemptedAt = &at
	}
	return out
}

// handleListNotifications lists queued member emails. ?status= defaults to pending.
func (s *server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	if s.stores.Outbox == nil {
		writeJSONError(w, http.StatusNotFound, "Notification queue disabled")
		return
	}
	status := r.URL.Query().Get("status")
	switch status {
	case "":
		status = outbox.StatusPending
	case outbox.StatusPending, outbox.StatusSent, outbox.StatusAbandoned:
	default:
		writeJSONError(w, http.StatusBadRequest, "Unknown status "+strconv.Quote(status))
		return
	}
	limit := 50
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= 100 {
		limit = n
	}

	entries, err := s.stores.Outbox.ListByStatus(r.Context(), status, limit)
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]notificationJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, toNotificationJSON(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": out, "status": status})
}

// handleRetryNotification makes one delivery attempt for a pending email.
func (s *server) handleRetryNotification(w http.ResponseWriter, r *http.Request) {
	s.controlNotification(w, r, orchestrators.ExecuteRetryNotification)
}

// handleAbandonNotification stops a pending email from being retried.
func (s *server) handleAbandonNotification(w http.ResponseWriter, r *http.Request) {
	s.controlNotification(w, r, orchestrators.ExecuteAbandonNotification)
}

func (s *server) controlNotification(
	w http.ResponseWriter,
	r *http.Request,
	fn func(context.Context, string, orchestrators.RetryNotificationsDeps) (outbox.Entry, error),
) {
	if s.retry.Outbox == nil {
		writeJSONError(w, http.StatusNotFound, "Notification queue disabled")
		return
	}
	entry, err := fn(r.Context(), r.PathValue("id"), s.retry)
	switch {
	case errors.Is(err, outbox.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "Notification not found")
	case errors.Is(err, outbox.ErrNotRetryable):
		writeJSONError(w, http.StatusConflict, "Notification is no longer pending")
	case errors.Is(err, orchestrators.ErrDeliveryFailed):
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":        "Email could not be delivered",
			"notification": toNotificationJSON(entry),
		})
	case err != nil:
		internalError(w, err)
	default:
		writeJSON(w, http.StatusOK, toNotificationJSON(entry))
	}
}
