// Package listutil parses list-view query parameters and paginates
// in-memory result sets.
package listutil

import (
	"net/url"
	"strconv"
	"strings"
)

// MembersPerPage is the fixed page size of the members list.
const MembersPerPage = 10

// StatusAll disables the status filter.
const StatusAll = "all"

// ListParams carries the search, filter and page parsed from a request.
type ListParams struct {
	Search string // free-text query, trimmed
	Status string // "all" or a payment status
	Page   int    // 1-indexed, unclamped
}

// ParseListParams reads q, status and page from URL query values.
// POST: Page >= 1; Status defaults to "all"
func ParseListParams(q url.Values) ListParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	status := strings.ToLower(strings.TrimSpace(q.Get("status")))
	if status == "" {
		status = StatusAll
	}
	return ListParams{
		Search: strings.TrimSpace(q.Get("q")),
		Status: status,
		Page:   page,
	}
}

// Query renders p back into URL values, omitting defaults.
func (p ListParams) Query() url.Values {
	v := url.Values{}
	if p.Search != "" {
		v.Set("q", p.Search)
	}
	if p.Status != "" && p.Status != StatusAll {
		v.Set("status", p.Status)
	}
	if p.Page > 1 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	return v
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: Page is clamped to [1, TotalPages]; TotalPages >= 1
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = MembersPerPage
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	page = min(max(page, 1), totalPages)
	return PageInfo{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset returns the index of the first item on the page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first row number, 0 when empty.
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row number.
func (p PageInfo) EndRow() int {
	return min(p.Offset()+p.PerPage, p.Total)
}

// HasPrev reports whether a previous page exists.
func (p PageInfo) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p PageInfo) HasNext() bool { return p.Page < p.TotalPages }

// PageNumbers returns every page number, 1..TotalPages.
func (p PageInfo) PageNumbers() []int {
	pages := make([]int, p.TotalPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// ShowPagination reports whether there is more than one page.
func (p PageInfo) ShowPagination() bool {
	return p.TotalPages > 1
}

// Paginate returns the slice of items on the page described by info.
func Paginate[T any](items []T, info PageInfo) []T {
	start := min(info.Offset(), len(items))
	end := min(start+info.PerPage, len(items))
	return items[start:end]
}
