package perf

import (
	"sync"
	"testing"
	"time"
)

// TestCollector_Snapshot verifies request and store aggregation.
func TestCollector_Snapshot(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()

	c.Record(Entry{Kind: KindRequest, Op: "GET /payments", StatusCode: 200, DurationMs: 10, At: now})
	c.Record(Entry{Kind: KindRequest, Op: "GET /payments", StatusCode: 500, DurationMs: 30, At: now})
	c.Record(Entry{Kind: KindStore, Op: "docstore.ListAll", DurationMs: 5, Failed: true, At: now})

	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.TotalRecorded != 3 {
		t.Errorf("TotalRecorded = %d, want 3", snap.TotalRecorded)
	}
	if len(snap.SlowestPaths) != 1 || snap.SlowestPaths[0].AvgMs != 20 || snap.SlowestPaths[0].Failures != 1 {
		t.Fatalf("SlowestPaths = %+v", snap.SlowestPaths)
	}
	if len(snap.SlowestStore) != 1 || snap.SlowestStore[0].Failures != 1 {
		t.Fatalf("SlowestStore = %+v", snap.SlowestStore)
	}
}

// TestCollector_RingOverwrites verifies only the newest entries are kept.
func TestCollector_RingOverwrites(t *testing.T) {
	c := NewCollector(3)
	now := time.Now()
	for i := 0; i < 5; i++ {
		c.Record(Entry{Kind: KindRequest, Op: "GET /x", DurationMs: float64(i), At: now})
	}
	if c.TotalRecorded() != 5 {
		t.Errorf("TotalRecorded = %d, want 5", c.TotalRecorded())
	}
	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.SlowestPaths[0].Count != 3 || snap.SlowestPaths[0].MaxMs != 4 {
		t.Errorf("stat = %+v", snap.SlowestPaths[0])
	}
}

// TestCollector_Percentiles verifies P50/P95/P99 calculation.
func TestCollector_Percentiles(t *testing.T) {
	c := NewCollector(200)
	now := time.Now()
	for i := 1; i <= 101; i++ {
		c.Record(Entry{Kind: KindRequest, Op: "GET /p", DurationMs: float64(i), At: now})
	}
	snap := c.Snapshot(now.Add(-time.Minute), 5)
	if snap.RequestP50Ms != 51 || snap.RequestP95Ms != 96 || snap.RequestP99Ms != 100 {
		t.Errorf("percentiles = %v %v %v", snap.RequestP50Ms, snap.RequestP95Ms, snap.RequestP99Ms)
	}
}

// TestCollector_SinceFilter verifies old entries are excluded.
func TestCollector_SinceFilter(t *testing.T) {
	c := NewCollector(10)
	now := time.Now()
	c.Record(Entry{Kind: KindRequest, Op: "GET /old", DurationMs: 1, At: now.Add(-time.Hour)})
	c.Record(Entry{Kind: KindRequest, Op: "GET /new", DurationMs: 1, At: now})
	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if len(snap.SlowestPaths) != 1 || snap.SlowestPaths[0].Op != "GET /new" {
		t.Errorf("SlowestPaths = %+v", snap.SlowestPaths)
	}
}

// TestCollector_Concurrent verifies Record is safe for concurrent use.
func TestCollector_Concurrent(t *testing.T) {
	c := NewCollector(64)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				c.Record(Entry{Kind: KindStore, Op: "docstore.UpdateFields", DurationMs: 1, At: time.Now()})
			}
		}()
	}
	wg.Wait()
	if c.TotalRecorded() != 800 {
		t.Errorf("TotalRecorded = %d, want 800", c.TotalRecorded())
	}
}
