// Package pages holds the per-request controllers behind the Payments,
// Members and Analytics screens. Each controller fetches the whole payments
// collection once, derives its own view and, for Payments, applies
// mutations to its local list after the store accepts them.
package pages

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"gritgym/internal/application/orchestrators"
	"gritgym/internal/application/projections"
	"gritgym/internal/domain/payment"
	"gritgym/internal/domain/timestamp"
)

// Display layouts.
const (
	DateTimeLayout = "Jan 2, 2006, 03:04 PM"
	DateLayout     = "Jan 2, 2006"
	NotAvailable   = "N/A"
)

// ErrDiscarded is returned by Load when the result arrived after the page was abandoned.
var ErrDiscarded = errors.New("fetch result discarded")

// Deps holds the collaborators every page controller shares.
type Deps struct {
	Documents projections.DocumentLister
	Payments  orchestrators.PaymentStore
	Notify    orchestrators.NotifyMemberDeps
	Location  *time.Location
}

// base is the render-pass state shared by the controllers.
type base struct {
	name        string
	deps        Deps
	now         time.Time
	payments    payment.List
	fetchFailed bool
	unmounted   atomic.Bool
}

func newBase(name string, deps Deps, now time.Time) base {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	return base{name: name, deps: deps, now: now}
}

// Load fetches the collection for this render pass.
// POST: On fetch failure the error is logged and the list is empty
// INVARIANT: A result arriving after Unmount or ctx end is discarded, never applied
func (b *base) Load(ctx context.Context) error {
	res, err := projections.QueryGetPayments(ctx, projections.GetPaymentsQuery{}, projections.GetPaymentsDeps{Documents: b.deps.Documents})
	if b.unmounted.Load() || ctx.Err() != nil {
		slog.Debug("fetch_discarded", "page", b.name)
		return ErrDiscarded
	}
	if err != nil {
		slog.Error("fetch_failed", "page", b.name, "error", err)
		b.payments = payment.List{}
		b.fetchFailed = true
		return nil
	}
	b.payments = res.Payments
	return nil
}

// Unmount marks the page abandoned; any in-flight Load result is dropped.
func (b *base) Unmount() {
	b.unmounted.Store(true)
}

// Now is the instant sampled for this render pass.
func (b *base) Now() time.Time {
	return b.now
}

// Payments returns the loaded list.
func (b *base) Payments() payment.List {
	return b.payments
}

// FetchFailed reports whether Load degraded to an empty list.
func (b *base) FetchFailed() bool {
	return b.fetchFailed
}

func (b *base) format(at timestamp.Instant, layout string) string {
	return at.Format(layout, b.deps.Location, NotAvailable)
}
