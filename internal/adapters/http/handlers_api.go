package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gritgym/internal/adapters/http/middleware"
	"gritgym/internal/application/listutil"
	"gritgym/internal/application/orchestrators"
	"gritgym/internal/application/pages"
	"gritgym/internal/domain/analytics"
	"gritgym/internal/domain/payment"
	"gritgym/internal/domain/timestamp"
)

// paymentJSON is the wire shape of a payment; timestamps are RFC 3339 or null.
type paymentJSON struct {
	ID               string                `json:"id"`
	FullName         string                `json:"fullName"`
	Email            string                `json:"email"`
	ContactNumber    string                `json:"contactNumber"`
	ReferenceNumber  string                `json:"referenceNumber"`
	Amount           float64               `json:"amount"`
	PaymentMethod    string                `json:"paymentMethod"`
	Plan             string                `json:"plan"`
	Status           string                `json:"status"`
	CreatedAt        *time.Time            `json:"createdAt"`
	ExpiresAt        *time.Time            `json:"expiresAt"`
	DurationDays     int                   `json:"durationDays"`
	EmergencyContact *emergencyContactJSON `json:"emergencyContact,omitempty"`
	Expiry           expiryJSON            `json:"expiry"`
}

type emergencyContactJSON struct {
	Person        string `json:"person"`
	ContactNumber string `json:"contactNumber"`
	Address       string `json:"address"`
}

type expiryJSON struct {
	Days     *int   `json:"daysLeft"`
	Category string `json:"category"`
	Label    string `json:"label"`
}

func instantJSON(i timestamp.Instant) *time.Time {
	t, ok := i.Time()
	if !ok {
		return nil
	}
	t = t.UTC()
	return &t
}

func toPaymentJSON(p payment.Payment, now time.Time) paymentJSON {
	st := p.Expiry(now)
	out := paymentJSON{
		ID:              p.ID,
		FullName:        p.FullName,
		Email:           p.Email,
		ContactNumber:   p.ContactNumber,
		ReferenceNumber: p.ReferenceNumber,
		Amount:          p.Amount,
		PaymentMethod:   p.PaymentMethod,
		Plan:            p.Plan,
		Status:          string(p.Status),
		CreatedAt:       instantJSON(p.Created()),
		ExpiresAt:       instantJSON(p.Expires()),
		DurationDays:    p.DurationDays,
		Expiry:          expiryJSON{Category: string(st.Category), Label: st.Label()},
	}
	if st.Known {
		days := st.Days
		out.Expiry.Days = &days
	}
	if ec := p.EmergencyContact; ec != nil {
		out.EmergencyContact = &emergencyContactJSON{Person: ec.Person, ContactNumber: ec.ContactNumber, Address: ec.Address}
	}
	return out
}

func toPaymentsJSON(list []payment.Payment, now time.Time) []paymentJSON {
	out := make([]paymentJSON, len(list))
	for i, p := range list {
		out[i] = toPaymentJSON(p, now)
	}
	return out
}

// handleAPIPayments returns the filtered payments.
func (s *server) handleAPIPayments(w http.ResponseWriter, r *http.Request) {
	page, ok := s.loadPaymentsPage(r.Context())
	if !ok {
		return
	}
	params := listutil.ParseListParams(r.URL.Query())
	writeJSON(w, http.StatusOK, map[string]any{
		"payments":    toPaymentsJSON(page.Filtered(params), page.Now()),
		"total":       len(page.Payments()),
		"fetchFailed": page.FetchFailed(),
	})
}

// handleAPIPayment returns one payment.
func (s *server) handleAPIPayment(w http.ResponseWriter, r *http.Request) {
	page, ok := s.loadPaymentsPage(r.Context())
	if !ok {
		return
	}
	row, found := page.Detail(r.PathValue("id"))
	if !found {
		writeJSONError(w, http.StatusNotFound, "Payment not found")
		return
	}
	writeJSON(w, http.StatusOK, toPaymentJSON(row.Payment, page.Now()))
}

// apiMutate applies fn and responds with the patched record.
func (s *server) apiMutate(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, page *pages.PaymentsPage, id string) error) {
	page, ok := s.loadPaymentsPage(r.Context())
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := fn(r.Context(), page, id); err != nil {
		status, msg := mutationStatus(err)
		writeJSONError(w, status, msg)
		return
	}
	row, found := page.Detail(id)
	if !found {
		// written to the store but absent from this pass's snapshot
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentJSON(row.Payment, page.Now()))
}

func (s *server) handleAPIApprove(w http.ResponseWriter, r *http.Request) {
	s.apiMutate(w, r, func(ctx context.Context, page *pages.PaymentsPage, id string) error {
		return page.Approve(ctx, id)
	})
}

func (s *server) handleAPIReject(w http.ResponseWriter, r *http.Request) {
	s.apiMutate(w, r, func(ctx context.Context, page *pages.PaymentsPage, id string) error {
		return page.Reject(ctx, id)
	})
}

// setExpiryRequest is the body of POST /api/payments/{id}/expiry.
type setExpiryRequest struct {
	Mode string `json:"mode"` // "date" or "duration"
	Date string `json:"date"`
	Days int    `json:"days"`
}

func (s *server) handleAPISetExpiry(w http.ResponseWriter, r *http.Request) {
	var req setExpiryRequest
	if err := strictDecode(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	s.apiMutate(w, r, func(ctx context.Context, page *pages.PaymentsPage, id string) error {
		if req.Mode == orchestrators.ExpiryByDuration {
			return page.SetExpiryByDuration(ctx, id, req.Days)
		}
		return page.SetExpiryByDate(ctx, id, req.Date)
	})
}

// handleAPIIntake stores a new pending payment.
func (s *server) handleAPIIntake(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.IntakePaymentInput
	if err := strictDecode(r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	id, err := orchestrators.ExecuteIntakePayment(r.Context(), input, orchestrators.IntakePaymentDeps{
		Payments: s.stores.Documents,
		Now:      s.now,
	})
	if errors.Is(err, orchestrators.ErrInvalidInput) {
		writeJSONError(w, http.StatusBadRequest, capitalize(err.Error()))
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// handleAPIMembers returns one page of active members.
func (s *server) handleAPIMembers(w http.ResponseWriter, r *http.Request) {
	page := pages.NewMembersPage(s.pageDeps(), s.now())
	if err := page.Load(r.Context()); errors.Is(err, pages.ErrDiscarded) {
		return
	}
	view := page.View(listutil.ParseListParams(r.URL.Query()))
	members := make([]paymentJSON, len(view.Rows))
	for i, row := range view.Rows {
		members[i] = toPaymentJSON(row.Payment, page.Now())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"members":    members,
		"page":       view.Page.Page,
		"totalPages": view.Page.TotalPages,
		"total":      view.Page.Total,
	})
}

// analyticsJSON is the wire shape of the analytics report.
type analyticsJSON struct {
	Summary            analytics.Summary          `json:"summary"`
	StatusDistribution []analytics.StatusSlice    `json:"statusDistribution"`
	RevenueByStatus    []analytics.StatusSlice    `json:"revenueByStatus"`
	Plans              []analytics.PlanBucket     `json:"plans"`
	Timeline           []analytics.TimelineBucket `json:"timeline"`
}

func (s *server) handleAPIAnalytics(w http.ResponseWriter, r *http.Request) {
	page := pages.NewAnalyticsPage(s.pageDeps(), s.now())
	if err := page.Load(r.Context()); errors.Is(err, pages.ErrDiscarded) {
		return
	}
	view := page.View()
	writeJSON(w, http.StatusOK, analyticsJSON{
		Summary:            view.Summary,
		StatusDistribution: view.StatusDistribution,
		RevenueByStatus:    view.RevenueByStatus,
		Plans:              view.Plans,
		Timeline:           view.Timeline,
	})
}

// handlePerf returns timing aggregates for the last window.
func (s *server) handlePerf(w http.ResponseWriter, r *http.Request) {
	if s.collector == nil {
		writeJSONError(w, http.StatusNotFound, "Timing collector disabled")
		return
	}
	window := 15 * time.Minute
	if v, err := time.ParseDuration(r.URL.Query().Get("window")); err == nil && v > 0 {
		window = v
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"window":   window.String(),
		"operator": sess.Email,
		"snapshot": s.collector.Snapshot(s.now().Add(-window), 10),
	})
}
