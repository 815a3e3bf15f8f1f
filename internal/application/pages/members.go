package pages

import (
	"time"

	"gritgym/internal/application/listutil"
	"gritgym/internal/domain/expiry"
	"gritgym/internal/domain/payment"
)

// MemberRow is one active member prepared for display.
type MemberRow struct {
	payment.Payment
	JoinedText  string
	ExpiresText string
	Expiry      expiry.Status
}

// MembersView is one page of the members list.
type MembersView struct {
	Rows        []MemberRow
	Params      listutil.ListParams
	Page        listutil.PageInfo
	FetchFailed bool
}

// MembersPage controls the members screen for one render pass.
type MembersPage struct {
	base
}

// NewMembersPage creates the controller; now is sampled once by the caller.
func NewMembersPage(deps Deps, now time.Time) *MembersPage {
	return &MembersPage{base: newBase("members", deps, now)}
}

// View returns approved payments matching the search, 10 per page.
// POST: The requested page is clamped into range
func (m *MembersPage) View(params listutil.ListParams) MembersView {
	members := m.payments.Approved().SearchMembers(params.Search)
	info := listutil.NewPageInfo(params.Page, listutil.MembersPerPage, len(members))
	params.Page = info.Page

	pageItems := listutil.Paginate(members, info)
	rows := make([]MemberRow, len(pageItems))
	for i, pm := range pageItems {
		rows[i] = MemberRow{
			Payment:     pm,
			JoinedText:  m.format(pm.Created(), DateLayout),
			ExpiresText: m.format(pm.Expires(), DateLayout),
			Expiry:      pm.Expiry(m.now),
		}
	}
	return MembersView{Rows: rows, Params: params, Page: info, FetchFailed: m.fetchFailed}
}
