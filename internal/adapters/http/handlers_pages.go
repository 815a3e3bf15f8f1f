package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"gritgym/internal/application/listutil"
	"gritgym/internal/application/pages"
	"gritgym/internal/domain/export"
)

// flash is a one-shot notice shown above the payments table.
type flash struct {
	Message string
	Error   bool
}

// queryURL renders list params for links; Encode output is already escaped.
func queryURL(p listutil.ListParams) template.URL {
	return template.URL(p.Query().Encode())
}

// loadPaymentsPage runs the fetch for a payments render pass.
// POST: ok is false when the request ended before the fetch returned
func (s *server) loadPaymentsPage(ctx context.Context) (*pages.PaymentsPage, bool) {
	page := pages.NewPaymentsPage(s.pageDeps(), s.now())
	context.AfterFunc(ctx, page.Unmount)
	if err := page.Load(ctx); errors.Is(err, pages.ErrDiscarded) {
		return nil, false
	}
	return page, true
}

func (s *server) renderPayments(w http.ResponseWriter, r *http.Request, status int, page *pages.PaymentsPage, params listutil.ListParams, f *flash) {
	renderTemplate(w, r, status, "payments.html", map[string]any{
		"View":   page.View(params),
		"Query":  queryURL(params),
		"Flash":  f,
		"Active": "payments",
	})
}

// handlePayments renders the filtered payments table.
func (s *server) handlePayments(w http.ResponseWriter, r *http.Request) {
	page, ok := s.loadPaymentsPage(r.Context())
	if !ok {
		return
	}
	s.renderPayments(w, r, http.StatusOK, page, listutil.ParseListParams(r.URL.Query()), nil)
}

// handlePaymentDetail renders one payment including its emergency contact.
func (s *server) handlePaymentDetail(w http.ResponseWriter, r *http.Request) {
	page, ok := s.loadPaymentsPage(r.Context())
	if !ok {
		return
	}
	row, found := page.Detail(r.PathValue("id"))
	if !found {
		http.NotFound(w, r)
		return
	}
	renderTemplate(w, r, http.StatusOK, "payment_detail.html", map[string]any{
		"Row":    row,
		"Query":  queryURL(listutil.ParseListParams(r.URL.Query())),
		"Active": "payments",
	})
}

// handleExpiryForm renders the expiry editor for an approved payment.
func (s *server) handleExpiryForm(w http.ResponseWriter, r *http.Request) {
	page, ok := s.loadPaymentsPage(r.Context())
	if !ok {
		return
	}
	editor, found := page.Editor(r.PathValue("id"))
	if !found {
		http.NotFound(w, r)
		return
	}
	renderTemplate(w, r, http.StatusOK, "expiry.html", map[string]any{
		"Editor": editor,
		"Query":  queryURL(listutil.ParseListParams(r.URL.Query())),
		"Active": "payments",
	})
}

// mutate loads the page, applies fn and re-renders the table from the patched
// local list with a flash describing the outcome.
func (s *server) mutate(w http.ResponseWriter, r *http.Request, success string, fn func(ctx context.Context, page *pages.PaymentsPage, id string) error) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	page, ok := s.loadPaymentsPage(r.Context())
	if !ok {
		return
	}
	params := listutil.ParseListParams(r.Form)

	status := http.StatusOK
	f := &flash{Message: success}
	if err := fn(r.Context(), page, r.PathValue("id")); err != nil {
		status, f.Message = mutationStatus(err)
		f.Error = true
	}
	s.renderPayments(w, r, status, page, params, f)
}

func (s *server) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "Payment approved.", func(ctx context.Context, page *pages.PaymentsPage, id string) error {
		return page.Approve(ctx, id)
	})
}

func (s *server) handleReject(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "Payment rejected.", func(ctx context.Context, page *pages.PaymentsPage, id string) error {
		return page.Reject(ctx, id)
	})
}

// handleSetExpiry applies the editor's "date" or "duration" submission.
func (s *server) handleSetExpiry(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "Expiry updated.", func(ctx context.Context, page *pages.PaymentsPage, id string) error {
		return applyExpiryForm(ctx, page, id, r.Form)
	})
}

func applyExpiryForm(ctx context.Context, page *pages.PaymentsPage, id string, form url.Values) error {
	if form.Get("mode") == "duration" {
		days, _ := strconv.Atoi(form.Get("days"))
		return page.SetExpiryByDuration(ctx, id, days)
	}
	return page.SetExpiryByDate(ctx, id, form.Get("date"))
}

// handleMembers renders one page of active members.
func (s *server) handleMembers(w http.ResponseWriter, r *http.Request) {
	page := pages.NewMembersPage(s.pageDeps(), s.now())
	context.AfterFunc(r.Context(), page.Unmount)
	if err := page.Load(r.Context()); errors.Is(err, pages.ErrDiscarded) {
		return
	}
	params := listutil.ParseListParams(r.URL.Query())
	view := page.View(params)

	prev, next := view.Params, view.Params
	prev.Page--
	next.Page++
	renderTemplate(w, r, http.StatusOK, "members.html", map[string]any{
		"View":      view,
		"PrevQuery": queryURL(prev),
		"NextQuery": queryURL(next),
		"Active":    "members",
	})
}

// handleAnalytics renders the aggregate cards and charts.
func (s *server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	page := pages.NewAnalyticsPage(s.pageDeps(), s.now())
	context.AfterFunc(r.Context(), page.Unmount)
	if err := page.Load(r.Context()); errors.Is(err, pages.ErrDiscarded) {
		return
	}
	renderTemplate(w, r, http.StatusOK, "analytics.html", map[string]any{
		"View":   page.View(),
		"Active": "analytics",
	})
}

// exportRows returns the payments matching the current filter and search.
func (s *server) exportRows(r *http.Request) (*pages.PaymentsPage, listutil.ListParams, bool) {
	page, ok := s.loadPaymentsPage(r.Context())
	return page, listutil.ParseListParams(r.URL.Query()), ok
}

// handleExportCSV downloads the filtered payments as CSV.
func (s *server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	page, params, ok := s.exportRows(r)
	if !ok {
		return
	}
	body := export.ToCSV(page.Filtered(params), export.LayoutFormatter(pages.DateLayout, s.loc))
	name := export.Filename(page.Now().In(s.loc), export.FormatCSV)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Write([]byte(body))
}

// handleExportXLSX downloads the filtered payments as a spreadsheet.
func (s *server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	page, params, ok := s.exportRows(r)
	if !ok {
		return
	}
	body, err := export.ToXLSX(page.Filtered(params), export.LayoutFormatter(pages.DateLayout, s.loc))
	if err != nil {
		internalError(w, err)
		return
	}
	name := export.Filename(page.Now().In(s.loc), export.FormatXLSX)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Write(body)
}
