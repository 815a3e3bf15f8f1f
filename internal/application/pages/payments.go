package pages

import (
	"context"
	"log/slog"
	"time"

	"gritgym/internal/application/listutil"
	"gritgym/internal/application/orchestrators"
	"gritgym/internal/domain/expiry"
	"gritgym/internal/domain/payment"
)

// QuickAddDays are the duration shortcuts offered by the expiry editor.
var QuickAddDays = []int{7, 30, 90}

// PaymentRow is one payment prepared for display.
type PaymentRow struct {
	payment.Payment
	CreatedText string
	ExpiresText string
	Expiry      expiry.Status
	ShowApprove bool
	ShowReject  bool
	ShowExpiry  bool
}

// PaymentsView is the filtered payments table.
type PaymentsView struct {
	Rows        []PaymentRow
	Params      listutil.ListParams
	Total       int
	Statuses    []payment.Status
	FetchFailed bool
}

// ExpiryEditor is the state of the set-expiry form.
type ExpiryEditor struct {
	Row         PaymentRow
	DateValue   string // YYYY-MM-DD of the current expiry, "" when unset
	DefaultDays int
	QuickAdd    []int
}

// PaymentsPage controls the payments screen for one render pass.
type PaymentsPage struct {
	base
}

// NewPaymentsPage creates the controller; now is sampled once by the caller.
func NewPaymentsPage(deps Deps, now time.Time) *PaymentsPage {
	return &PaymentsPage{base: newBase("payments", deps, now)}
}

func (p *PaymentsPage) row(pm payment.Payment) PaymentRow {
	return PaymentRow{
		Payment:     pm,
		CreatedText: p.format(pm.Created(), DateTimeLayout),
		ExpiresText: p.format(pm.Expires(), DateTimeLayout),
		Expiry:      pm.Expiry(p.now),
		ShowApprove: pm.IsPending(),
		ShowReject:  pm.IsPending(),
		ShowExpiry:  pm.IsApproved(),
	}
}

// Filtered applies the status filter then the search, keeping store order.
func (p *PaymentsPage) Filtered(params listutil.ListParams) payment.List {
	return p.payments.WithStatus(params.Status).Search(params.Search)
}

// View builds the table for params.
func (p *PaymentsPage) View(params listutil.ListParams) PaymentsView {
	filtered := p.Filtered(params)
	rows := make([]PaymentRow, len(filtered))
	for i, pm := range filtered {
		rows[i] = p.row(pm)
	}
	return PaymentsView{
		Rows:        rows,
		Params:      params,
		Total:       len(p.payments),
		Statuses:    payment.Statuses,
		FetchFailed: p.fetchFailed,
	}
}

// Detail returns one row from the loaded list.
func (p *PaymentsPage) Detail(id string) (PaymentRow, bool) {
	pm, ok := p.payments.Find(id)
	if !ok {
		return PaymentRow{}, false
	}
	return p.row(pm), true
}

// Editor returns the expiry form state for an approved payment.
func (p *PaymentsPage) Editor(id string) (ExpiryEditor, bool) {
	row, ok := p.Detail(id)
	if !ok || !row.ShowExpiry {
		return ExpiryEditor{}, false
	}
	days := row.DurationDays
	if days <= 0 {
		days = payment.DefaultDurationDays
	}
	return ExpiryEditor{
		Row:         row,
		DateValue:   row.Expires().Format(orchestrators.DateInputLayout, time.UTC, ""),
		DefaultDays: days,
		QuickAdd:    QuickAddDays,
	}, true
}

func (p *PaymentsPage) reviewDeps() orchestrators.ReviewPaymentDeps {
	return orchestrators.ReviewPaymentDeps{Payments: p.deps.Payments, Notify: p.deps.Notify}
}

// Approve writes status=approved and patches the local record.
// POST: On error the local list is unchanged
func (p *PaymentsPage) Approve(ctx context.Context, id string) error {
	res, err := orchestrators.ExecuteApprovePayment(ctx, orchestrators.ReviewPaymentInput{ID: id}, p.reviewDeps())
	if err != nil {
		slog.Warn("mutation_failed", "op", "approve", "id", id, "error", err)
		return err
	}
	p.payments = p.payments.Patch(id, res.Apply)
	return nil
}

// Reject writes status=rejected and patches the local record.
// POST: On error the local list is unchanged
func (p *PaymentsPage) Reject(ctx context.Context, id string) error {
	res, err := orchestrators.ExecuteRejectPayment(ctx, orchestrators.ReviewPaymentInput{ID: id}, p.reviewDeps())
	if err != nil {
		slog.Warn("mutation_failed", "op", "reject", "id", id, "error", err)
		return err
	}
	p.payments = p.payments.Patch(id, res.Apply)
	return nil
}

// SetExpiryByDate sets expiresAt to the given YYYY-MM-DD (UTC midnight).
func (p *PaymentsPage) SetExpiryByDate(ctx context.Context, id, date string) error {
	return p.setExpiry(ctx, orchestrators.SetExpiryInput{ID: id, Mode: orchestrators.ExpiryByDate, Date: date, Now: p.now})
}

// SetExpiryByDuration sets expiresAt to now+days and records durationDays.
func (p *PaymentsPage) SetExpiryByDuration(ctx context.Context, id string, days int) error {
	return p.setExpiry(ctx, orchestrators.SetExpiryInput{ID: id, Mode: orchestrators.ExpiryByDuration, Days: days, Now: p.now})
}

func (p *PaymentsPage) setExpiry(ctx context.Context, input orchestrators.SetExpiryInput) error {
	res, err := orchestrators.ExecuteSetExpiry(ctx, input, orchestrators.SetExpiryDeps{Payments: p.deps.Payments})
	if err != nil {
		slog.Warn("mutation_failed", "op", "set_expiry", "id", input.ID, "error", err)
		return err
	}
	p.payments = p.payments.Patch(input.ID, res.Apply)
	return nil
}
