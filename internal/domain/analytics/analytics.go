// Package analytics folds payment lists into the dashboard's summary figures.
package analytics

import (
	"time"

	"gritgym/internal/domain/payment"
)

// UnknownPlan labels payments without a plan.
const UnknownPlan = "Unknown"

// UnknownDate labels payments whose createdAt cannot be normalized.
const UnknownDate = "N/A"

// TimelineLayout is the month+day bucket key format (en-US short form).
const TimelineLayout = "Jan 2"

// Summary carries counts and revenue totals.
type Summary struct {
	Pending        int     `json:"pending"`
	Approved       int     `json:"approved"`
	Rejected       int     `json:"rejected"`
	ActiveMembers  int     `json:"activeMembers"`
	Revenue        float64 `json:"revenue"`
	PendingRevenue float64 `json:"pendingRevenue"`
}

// StatusSlice is one segment of the status distribution chart.
type StatusSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// PlanBucket aggregates payments sharing a plan.
type PlanBucket struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// TimelineBucket aggregates payments created on the same calendar day.
type TimelineBucket struct {
	Date     string `json:"date"`
	Payments int    `json:"payments"`
	Approved int    `json:"approved"`
}

// Report is the full analytics view.
type Report struct {
	Summary  Summary
	Plans    []PlanBucket
	Timeline []TimelineBucket
}

// Summarize counts statuses and sums revenue.
// POST: Revenue only counts approved, PendingRevenue only pending; rejected never counts
func Summarize(payments []payment.Payment) Summary {
	var s Summary
	for _, p := range payments {
		switch p.Status {
		case payment.StatusPending:
			s.Pending++
			s.PendingRevenue += p.Amount
		case payment.StatusApproved:
			s.Approved++
			s.Revenue += p.Amount
		case payment.StatusRejected:
			s.Rejected++
		}
	}
	s.ActiveMembers = s.Approved
	return s
}

// StatusDistribution returns the pie chart slices.
func (s Summary) StatusDistribution() []StatusSlice {
	return []StatusSlice{
		{Name: "Approved", Value: float64(s.Approved), Color: "#16a34a"},
		{Name: "Pending", Value: float64(s.Pending), Color: "#eab308"},
		{Name: "Rejected", Value: float64(s.Rejected), Color: "#dc2626"},
	}
}

// RevenueByStatus returns the revenue bar chart slices.
func (s Summary) RevenueByStatus() []StatusSlice {
	return []StatusSlice{
		{Name: "Approved", Value: s.Revenue, Color: "#16a34a"},
		{Name: "Pending", Value: s.PendingRevenue, Color: "#eab308"},
	}
}

// PlanDistribution groups payments by plan in first-seen order.
// INVARIANT: Empty plans share the "Unknown" bucket
func PlanDistribution(payments []payment.Payment) []PlanBucket {
	var buckets []PlanBucket
	index := make(map[string]int)
	for _, p := range payments {
		name := p.Plan
		if name == "" {
			name = UnknownPlan
		}
		i, ok := index[name]
		if !ok {
			i = len(buckets)
			index[name] = i
			buckets = append(buckets, PlanBucket{Name: name})
		}
		buckets[i].Count++
		buckets[i].Revenue += p.Amount
	}
	return buckets
}

// Timeline groups payments by the month and day of createdAt in loc.
// PRE: loc may be nil (UTC)
// POST: Buckets are in first-seen order; unparsable dates share the "N/A" bucket
func Timeline(payments []payment.Payment, loc *time.Location) []TimelineBucket {
	if loc == nil {
		loc = time.UTC
	}
	var buckets []TimelineBucket
	index := make(map[string]int)
	for _, p := range payments {
		key := p.Created().Format(TimelineLayout, loc, UnknownDate)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, TimelineBucket{Date: key})
		}
		buckets[i].Payments++
		if p.Status == payment.StatusApproved {
			buckets[i].Approved++
		}
	}
	return buckets
}

// Compute builds the full report. The parts are independent of each other.
func Compute(payments []payment.Payment, loc *time.Location) Report {
	return Report{
		Summary:  Summarize(payments),
		Plans:    PlanDistribution(payments),
		Timeline: Timeline(payments, loc),
	}
}
