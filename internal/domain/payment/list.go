package payment

import "strings"

// List is an ordered set of payments held by a page.
type List []Payment

// Find returns the payment with id.
func (l List) Find(id string) (Payment, bool) {
	for _, p := range l {
		if p.ID == id {
			return p, true
		}
	}
	return Payment{}, false
}

// Patch returns a copy of l where only the record with id is changed by fn.
// PRE: fn only mutates the fields that were written to the store
// POST: Other records are returned unchanged and in the same order
func (l List) Patch(id string, fn func(*Payment)) List {
	out := make(List, len(l))
	copy(out, l)
	for i := range out {
		if out[i].ID == id {
			fn(&out[i])
		}
	}
	return out
}

// WithStatus keeps payments with status; "all" or "" keeps everything.
func (l List) WithStatus(status string) List {
	if status == "" || status == "all" {
		return l
	}
	var out List
	for _, p := range l {
		if string(p.Status) == status {
			out = append(out, p)
		}
	}
	return out
}

// Approved keeps approved payments, i.e. active members.
func (l List) Approved() List {
	return l.WithStatus(string(StatusApproved))
}

// Search matches name, email or reference number, case-insensitively.
func (l List) Search(term string) List {
	if term == "" {
		return l
	}
	q := strings.ToLower(term)
	var out List
	for _, p := range l {
		if strings.Contains(strings.ToLower(p.FullName), q) ||
			strings.Contains(strings.ToLower(p.Email), q) ||
			strings.Contains(strings.ToLower(p.ReferenceNumber), q) {
			out = append(out, p)
		}
	}
	return out
}

// SearchMembers matches name or email case-insensitively, or contact number as typed.
func (l List) SearchMembers(term string) List {
	if term == "" {
		return l
	}
	q := strings.ToLower(term)
	var out List
	for _, p := range l {
		if strings.Contains(strings.ToLower(p.FullName), q) ||
			strings.Contains(strings.ToLower(p.Email), q) ||
			strings.Contains(p.ContactNumber, term) {
			out = append(out, p)
		}
	}
	return out
}
