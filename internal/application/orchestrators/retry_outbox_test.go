package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"gritgym/internal/domain/notification"
	"gritgym/internal/domain/outbox"
	"gritgym/internal/domain/payment"
)

// --- Mock outbox store ---

type mockOutbox struct {
	entries map[string]outbox.Entry
	saveErr error
}

func newMockOutbox() *mockOutbox {
	return &mockOutbox{entries: map[string]outbox.Entry{}}
}

// GetByID returns a stored entry.
func (m *mockOutbox) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return outbox.Entry{}, outbox.ErrNotFound
	}
	return e, nil
}

// Save stores the entry.
func (m *mockOutbox) Save(_ context.Context, e outbox.Entry) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.entries[e.ID] = e
	return nil
}

func (m *mockOutbox) only(t *testing.T) outbox.Entry {
	t.Helper()
	if len(m.entries) != 1 {
		t.Fatalf("outbox holds %d entries, want 1", len(m.entries))
	}
	for _, e := range m.entries {
		return e
	}
	return outbox.Entry{}
}

// TestExecuteNotifyMember_QueuesFailedSend stores the message for retry.
func TestExecuteNotifyMember_QueuesFailedSend(t *testing.T) {
	queue := newMockOutbox()
	sender := &mockSender{err: errors.New("provider down")}
	deps := NotifyMemberDeps{
		Sender:   sender,
		Queue:    queue,
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	}
	p := payment.Payment{ID: "p1", FullName: "Jane", Email: "j@x.com", Status: payment.StatusApproved}

	if err := ExecuteNotifyMember(context.Background(), NotifyMemberInput{Payment: p, Kind: notification.KindApproved}, deps); err != nil {
		t.Fatalf("queued send should not error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Errorf("attempts = %d, want 1", len(sender.sent))
	}
	e := queue.only(t)
	if e.PaymentID != "p1" || e.To != "j@x.com" || e.Attempts != 1 || e.Status != outbox.StatusPending {
		t.Errorf("entry = %+v", e)
	}
	if !e.LastAttemptedAt.Equal(testNow) || e.LastError != "provider down" {
		t.Errorf("last attempt = %v, error = %q", e.LastAttemptedAt, e.LastError)
	}
}

// TestExecuteNotifyMember_QueueFailure reports both errors.
func TestExecuteNotifyMember_QueueFailure(t *testing.T) {
	queue := newMockOutbox()
	queue.saveErr = errors.New("disk full")
	deps := NotifyMemberDeps{Sender: &mockSender{err: errors.New("down")}, Queue: queue}
	p := payment.Payment{ID: "p1", Email: "j@x.com"}
	err := ExecuteNotifyMember(context.Background(), NotifyMemberInput{Payment: p, Kind: notification.KindRejected}, deps)
	if !errors.Is(err, queue.saveErr) {
		t.Errorf("err = %v", err)
	}
}

func queuedEntry(id string) outbox.Entry {
	return outbox.Entry{
		ID: id, PaymentID: "p1", To: "j@x.com", Subject: "s", HTML: "<p>b</p>",
		Status: outbox.StatusPending, Attempts: 1, LastError: "down", CreatedAt: testNow,
	}
}

// TestExecuteRetryNotification makes exactly one attempt per call.
func TestExecuteRetryNotification(t *testing.T) {
	later := testNow.Add(time.Hour)
	tests := []struct {
		name         string
		entry        outbox.Entry
		sendErr      error
		wantErr      error
		wantStatus   string
		wantAttempts int
		wantSends    int
	}{
		{"delivered", queuedEntry("q"), nil, nil, outbox.StatusSent, 2, 1},
		{"refused again", queuedEntry("q"), errors.New("still down"), ErrDeliveryFailed, outbox.StatusPending, 2, 1},
		{"already sent", func() outbox.Entry { e := queuedEntry("q"); e.Status = outbox.StatusSent; return e }(), nil, outbox.ErrNotRetryable, outbox.StatusSent, 1, 0},
		{"abandoned", func() outbox.Entry { e := queuedEntry("q"); e.Status = outbox.StatusAbandoned; return e }(), nil, outbox.ErrNotRetryable, outbox.StatusAbandoned, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockOutbox()
			store.entries["q"] = tt.entry
			sender := &mockSender{err: tt.sendErr}
			deps := RetryNotificationsDeps{Outbox: store, Sender: sender, Now: func() time.Time { return later }}

			_, err := ExecuteRetryNotification(context.Background(), "q", deps)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			got := store.entries["q"]
			if got.Status != tt.wantStatus || got.Attempts != tt.wantAttempts {
				t.Errorf("entry = %+v", got)
			}
			if len(sender.sent) != tt.wantSends {
				t.Errorf("sends = %d, want %d", len(sender.sent), tt.wantSends)
			}
		})
	}
}

// TestExecuteRetryNotification_RecordsError keeps the latest provider error.
func TestExecuteRetryNotification_RecordsError(t *testing.T) {
	store := newMockOutbox()
	store.entries["q"] = queuedEntry("q")
	deps := RetryNotificationsDeps{Outbox: store, Sender: &mockSender{err: errors.New("quota")}, Now: func() time.Time { return testNow }}

	e, _ := ExecuteRetryNotification(context.Background(), "q", deps)
	if e.LastError != "quota" || store.entries["q"].LastError != "quota" {
		t.Errorf("last error = %q", e.LastError)
	}
}

// TestExecuteAbandonNotification stops a pending entry.
func TestExecuteAbandonNotification(t *testing.T) {
	store := newMockOutbox()
	store.entries["q"] = queuedEntry("q")
	deps := RetryNotificationsDeps{Outbox: store}
	ctx := context.Background()

	if _, err := ExecuteAbandonNotification(ctx, "q", deps); err != nil {
		t.Fatalf("abandon: %v", err)
	}
	if store.entries["q"].Status != outbox.StatusAbandoned {
		t.Errorf("status = %v", store.entries["q"].Status)
	}
	if _, err := ExecuteAbandonNotification(ctx, "q", deps); !errors.Is(err, outbox.ErrNotRetryable) {
		t.Errorf("second abandon = %v", err)
	}
	if _, err := ExecuteAbandonNotification(ctx, "missing", deps); !errors.Is(err, outbox.ErrNotFound) {
		t.Errorf("missing = %v", err)
	}
}
