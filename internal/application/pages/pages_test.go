package pages

import (
	"context"
	"errors"
	"testing"
	"time"

	"gritgym/internal/adapters/storage/docstore"
	"gritgym/internal/application/listutil"
	"gritgym/internal/domain/expiry"
	"gritgym/internal/domain/payment"
)

var testNow = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

// --- Mock store ---

type mockStore struct {
	docs      map[string]map[string]any
	order     []string
	listErr   error
	updateErr error
	onList    func()
	updates   int
}

func newMockStore() *mockStore {
	return &mockStore{docs: map[string]map[string]any{}}
}

func (m *mockStore) put(id string, fields map[string]any) {
	m.docs[id] = fields
	m.order = append(m.order, id)
}

func (m *mockStore) ListAll(_ context.Context, _ string) ([]docstore.Document, error) {
	if m.onList != nil {
		m.onList()
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]docstore.Document, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, docstore.Document{ID: id, Fields: m.docs[id]})
	}
	return out, nil
}

func (m *mockStore) Get(_ context.Context, _, id string) (docstore.Document, error) {
	f, ok := m.docs[id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return docstore.Document{ID: id, Fields: f}, nil
}

func (m *mockStore) UpdateFields(_ context.Context, _, id string, fields map[string]any) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates++
	for k, v := range fields {
		m.docs[id][k] = v
	}
	return nil
}

func seeded() *mockStore {
	s := newMockStore()
	s.put("p1", map[string]any{"fullName": "Jane Doe", "email": "jane@x.com", "status": "pending", "amount": 500.0, "plan": "Monthly", "createdAt": testNow.Add(-48 * time.Hour)})
	s.put("p2", map[string]any{"fullName": "John Roe", "email": "john@x.com", "status": "approved", "amount": 1500.0, "plan": "Quarterly", "createdAt": testNow.Add(-24 * time.Hour), "expiresAt": testNow.Add(3 * 24 * time.Hour)})
	s.put("p3", map[string]any{"fullName": "Ann Lee", "email": "ann@x.com", "status": "rejected", "amount": 500.0, "plan": "Monthly"})
	return s
}

func deps(s *mockStore) Deps {
	return Deps{Documents: s, Payments: s, Location: time.UTC}
}

func loadedPayments(t *testing.T, s *mockStore) *PaymentsPage {
	t.Helper()
	p := NewPaymentsPage(deps(s), testNow)
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return p
}

// --- Load ---

func TestLoad_FetchFailureDegradesToEmpty(t *testing.T) {
	s := seeded()
	s.listErr = errors.New("offline")
	p := NewPaymentsPage(deps(s), testNow)

	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if !p.FetchFailed() {
		t.Error("FetchFailed() = false, want true")
	}
	view := p.View(listutil.ListParams{Status: listutil.StatusAll})
	if len(view.Rows) != 0 || !view.FetchFailed {
		t.Errorf("view = %d rows failed=%v, want empty failed", len(view.Rows), view.FetchFailed)
	}
}

func TestLoad_DiscardsAfterUnmount(t *testing.T) {
	s := seeded()
	p := NewPaymentsPage(deps(s), testNow)
	s.onList = p.Unmount

	if err := p.Load(context.Background()); !errors.Is(err, ErrDiscarded) {
		t.Fatalf("Load() error = %v, want ErrDiscarded", err)
	}
	if p.Payments() != nil {
		t.Errorf("Payments() = %v, want nil after discard", p.Payments())
	}
}

func TestLoad_DiscardsAfterCancel(t *testing.T) {
	s := seeded()
	ctx, cancel := context.WithCancel(context.Background())
	s.onList = cancel
	p := NewMembersPage(deps(s), testNow)

	if err := p.Load(ctx); !errors.Is(err, ErrDiscarded) {
		t.Fatalf("Load() error = %v, want ErrDiscarded", err)
	}
	if p.FetchFailed() {
		t.Error("FetchFailed() = true for a discarded result")
	}
}

// --- Payments page ---

func TestPaymentsView_FilterAndSearch(t *testing.T) {
	p := loadedPayments(t, seeded())

	tests := []struct {
		name   string
		params listutil.ListParams
		want   []string
	}{
		{"all", listutil.ListParams{Status: "all"}, []string{"p1", "p2", "p3"}},
		{"pending", listutil.ListParams{Status: "pending"}, []string{"p1"}},
		{"search name", listutil.ListParams{Status: "all", Search: "JOHN"}, []string{"p2"}},
		{"filter then search", listutil.ListParams{Status: "rejected", Search: "jane"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := p.View(tt.params)
			var got []string
			for _, r := range view.Rows {
				got = append(got, r.ID)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ids = %v, want %v", got, tt.want)
				}
			}
			if view.Total != 3 {
				t.Errorf("Total = %d, want 3", view.Total)
			}
		})
	}
}

func TestPaymentsView_RowActions(t *testing.T) {
	p := loadedPayments(t, seeded())
	rows := p.View(listutil.ListParams{Status: "all"}).Rows

	if !rows[0].ShowApprove || !rows[0].ShowReject || rows[0].ShowExpiry {
		t.Errorf("pending row actions = %+v", rows[0])
	}
	if rows[1].ShowApprove || rows[1].ShowReject || !rows[1].ShowExpiry {
		t.Errorf("approved row actions = %+v", rows[1])
	}
	if rows[2].ShowApprove || rows[2].ShowReject || rows[2].ShowExpiry {
		t.Errorf("rejected row actions = %+v", rows[2])
	}
	if rows[1].Expiry.Category != expiry.CategoryExpiringSoon {
		t.Errorf("approved expiry = %v, want expiring soon", rows[1].Expiry.Category)
	}
	if rows[2].CreatedText != NotAvailable {
		t.Errorf("CreatedText = %q, want N/A", rows[2].CreatedText)
	}
	if rows[0].CreatedText != "May 8, 2025, 12:00 PM" {
		t.Errorf("CreatedText = %q", rows[0].CreatedText)
	}
}

func TestEditor(t *testing.T) {
	p := loadedPayments(t, seeded())

	if _, ok := p.Editor("p1"); ok {
		t.Error("Editor(pending) ok = true, want false")
	}
	ed, ok := p.Editor("p2")
	if !ok {
		t.Fatal("Editor(approved) ok = false")
	}
	if ed.DateValue != "2025-05-13" {
		t.Errorf("DateValue = %q, want 2025-05-13", ed.DateValue)
	}
	if ed.DefaultDays != payment.DefaultDurationDays {
		t.Errorf("DefaultDays = %d, want %d", ed.DefaultDays, payment.DefaultDurationDays)
	}
	if len(ed.QuickAdd) != 3 {
		t.Errorf("QuickAdd = %v", ed.QuickAdd)
	}
}

func TestApprove_PatchesOnlyTarget(t *testing.T) {
	s := seeded()
	p := loadedPayments(t, s)
	before := p.Payments()

	if err := p.Approve(context.Background(), "p1"); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	after := p.Payments()
	if after[0].Status != payment.StatusApproved {
		t.Errorf("status = %q, want approved", after[0].Status)
	}
	if before[0].Status != payment.StatusPending {
		t.Error("Approve mutated the previous list in place")
	}
	if after[1].ExpiresAt != before[1].ExpiresAt || after[2].Status != before[2].Status {
		t.Error("Approve changed other records")
	}
	if s.updates != 1 {
		t.Errorf("store updates = %d, want 1", s.updates)
	}
}

func TestReject_FailureLeavesListUnchanged(t *testing.T) {
	s := seeded()
	s.updateErr = errors.New("write denied")
	p := loadedPayments(t, s)

	if err := p.Reject(context.Background(), "p1"); err == nil {
		t.Fatal("Reject() error = nil, want error")
	}
	if got := p.Payments()[0].Status; got != payment.StatusPending {
		t.Errorf("status = %q, want pending", got)
	}
}

func TestSetExpiryByDuration(t *testing.T) {
	s := seeded()
	p := loadedPayments(t, s)

	if err := p.SetExpiryByDuration(context.Background(), "p2", 90); err != nil {
		t.Fatalf("SetExpiryByDuration() error = %v", err)
	}
	row, _ := p.Detail("p2")
	if row.DurationDays != 90 {
		t.Errorf("DurationDays = %d, want 90", row.DurationDays)
	}
	if row.Expiry.Days != 90 || row.Expiry.Category != expiry.CategoryActive {
		t.Errorf("Expiry = %+v, want 90 days active", row.Expiry)
	}
}

func TestSetExpiryByDate(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		date    string
		wantErr bool
	}{
		{"future date", "p2", "2025-06-01", false},
		{"past date", "p2", "2025-01-01", true},
		{"garbage", "p2", "June", true},
		{"not approved", "p1", "2025-06-01", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := loadedPayments(t, seeded())
			before, _ := p.Detail(tt.id)

			err := p.SetExpiryByDate(context.Background(), tt.id, tt.date)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetExpiryByDate() error = %v, wantErr %v", err, tt.wantErr)
			}
			after, _ := p.Detail(tt.id)
			if tt.wantErr && after.ExpiresText != before.ExpiresText {
				t.Errorf("ExpiresText changed to %q on failure", after.ExpiresText)
			}
			if !tt.wantErr && after.ExpiresText != "Jun 1, 2025, 12:00 AM" {
				t.Errorf("ExpiresText = %q", after.ExpiresText)
			}
		})
	}
}

// --- Members page ---

func TestMembersView_Pagination(t *testing.T) {
	s := newMockStore()
	for i := range 23 {
		s.put(string(rune('a'+i)), map[string]any{"fullName": "Member", "status": "approved"})
	}
	s.put("x", map[string]any{"fullName": "Pending", "status": "pending"})
	m := NewMembersPage(deps(s), testNow)
	if err := m.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		page     int
		wantPage int
		wantRows int
	}{
		{1, 1, 10},
		{3, 3, 3},
		{9, 3, 3},
		{0, 1, 10},
	}
	for _, tt := range tests {
		view := m.View(listutil.ListParams{Page: tt.page})
		if view.Page.Page != tt.wantPage || len(view.Rows) != tt.wantRows {
			t.Errorf("page %d: got page %d rows %d, want %d/%d", tt.page, view.Page.Page, len(view.Rows), tt.wantPage, tt.wantRows)
		}
		if view.Page.Total != 23 {
			t.Errorf("Total = %d, want 23", view.Page.Total)
		}
	}
}

func TestMembersView_OnlyApproved(t *testing.T) {
	m := NewMembersPage(deps(seeded()), testNow)
	if err := m.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	view := m.View(listutil.ListParams{})
	if len(view.Rows) != 1 || view.Rows[0].ID != "p2" {
		t.Fatalf("rows = %+v, want only p2", view.Rows)
	}
	if view.Rows[0].JoinedText != "May 9, 2025" || view.Rows[0].ExpiresText != "May 13, 2025" {
		t.Errorf("dates = %q / %q", view.Rows[0].JoinedText, view.Rows[0].ExpiresText)
	}
	if view.Rows[0].Expiry.Caption() != "3 days left" {
		t.Errorf("Caption() = %q", view.Rows[0].Expiry.Caption())
	}
}

// --- Analytics page ---

func TestAnalyticsView(t *testing.T) {
	a := NewAnalyticsPage(deps(seeded()), testNow)
	if err := a.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	view := a.View()
	if view.Summary.Revenue != 1500 || view.Summary.PendingRevenue != 500 {
		t.Errorf("revenue = %v pending %v", view.Summary.Revenue, view.Summary.PendingRevenue)
	}
	if view.Percent(view.Summary.Approved) != 33 {
		t.Errorf("Percent(approved) = %d, want 33", view.Percent(view.Summary.Approved))
	}
	if len(view.StatusDistribution) != 3 {
		t.Errorf("StatusDistribution = %v", view.StatusDistribution)
	}
	if (AnalyticsView{}).Percent(5) != 0 {
		t.Error("Percent on empty view should be 0")
	}
}
