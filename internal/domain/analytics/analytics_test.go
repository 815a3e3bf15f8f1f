package analytics_test

import (
	"reflect"
	"testing"
	"time"

	"gritgym/internal/domain/analytics"
	"gritgym/internal/domain/payment"
)

// TestSummarize_RevenueByStatus verifies rejected payments never count as revenue.
func TestSummarize_RevenueByStatus(t *testing.T) {
	payments := []payment.Payment{
		{ID: "a", Status: payment.StatusApproved, Amount: 100},
		{ID: "b", Status: payment.StatusPending, Amount: 50},
		{ID: "c", Status: payment.StatusRejected, Amount: 30},
	}
	got := analytics.Summarize(payments)
	want := analytics.Summary{
		Pending: 1, Approved: 1, Rejected: 1, ActiveMembers: 1,
		Revenue: 100, PendingRevenue: 50,
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

// TestSummarize_Empty verifies an empty list yields zeros.
func TestSummarize_Empty(t *testing.T) {
	if got := analytics.Summarize(nil); got != (analytics.Summary{}) {
		t.Errorf("got %+v", got)
	}
}

// TestPlanDistribution_UnknownBucket verifies empty plans share one bucket.
func TestPlanDistribution_UnknownBucket(t *testing.T) {
	payments := []payment.Payment{
		{Plan: "", Amount: 10},
		{Plan: "Monthly", Amount: 1500},
		{Plan: "", Amount: 20},
	}
	got := analytics.PlanDistribution(payments)
	want := []analytics.PlanBucket{
		{Name: "Unknown", Count: 2, Revenue: 30},
		{Name: "Monthly", Count: 1, Revenue: 1500},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

// TestPlanDistribution_FirstSeenOrder verifies groups are not sorted.
func TestPlanDistribution_FirstSeenOrder(t *testing.T) {
	payments := []payment.Payment{{Plan: "Zeta"}, {Plan: "Alpha"}, {Plan: "Zeta"}}
	first := analytics.PlanDistribution(payments)
	second := analytics.PlanDistribution(payments)
	if first[0].Name != "Zeta" || first[1].Name != "Alpha" {
		t.Errorf("order = %v", first)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated runs differ")
	}
}

// TestTimeline_GroupsByDay verifies month+day buckets with approved counts.
func TestTimeline_GroupsByDay(t *testing.T) {
	d1 := time.Date(2025, time.March, 5, 8, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, time.March, 6, 8, 0, 0, 0, time.UTC)
	payments := []payment.Payment{
		{CreatedAt: d2, Status: payment.StatusApproved},
		{CreatedAt: map[string]any{"seconds": float64(d1.Unix())}, Status: payment.StatusPending},
		{CreatedAt: d2.Add(3 * time.Hour), Status: payment.StatusRejected},
		{CreatedAt: d1.AddDate(1, 0, 0), Status: payment.StatusApproved},
	}
	got := analytics.Timeline(payments, time.UTC)
	want := []analytics.TimelineBucket{
		{Date: "Mar 6", Payments: 2, Approved: 1},
		{Date: "Mar 5", Payments: 2, Approved: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

// TestTimeline_UnparsableDatesDoNotCrash verifies malformed createdAt values collide in one bucket.
func TestTimeline_UnparsableDatesDoNotCrash(t *testing.T) {
	payments := []payment.Payment{
		{CreatedAt: "yesterday-ish"},
		{CreatedAt: nil, Status: payment.StatusApproved},
	}
	got := analytics.Timeline(payments, nil)
	if len(got) != 1 || got[0].Date != analytics.UnknownDate || got[0].Payments != 2 || got[0].Approved != 1 {
		t.Errorf("got %+v", got)
	}
}

// TestCompute_AssemblesReport verifies the report combines the independent parts.
func TestCompute_AssemblesReport(t *testing.T) {
	payments := []payment.Payment{{Plan: "Annual", Amount: 12000, Status: payment.StatusApproved}}
	r := analytics.Compute(payments, time.UTC)
	if r.Summary.Revenue != 12000 || len(r.Plans) != 1 || len(r.Timeline) != 1 {
		t.Errorf("got %+v", r)
	}
	if dist := r.Summary.StatusDistribution(); dist[0].Value != 1 {
		t.Errorf("status distribution = %+v", dist)
	}
}
