// Package perf keeps a bounded window of request and store-operation
// timings for the /api/perf endpoint.
package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 4096

// EntryKind distinguishes HTTP requests from store operations.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindStore
)

// Entry is a single timing record.
type Entry struct {
	Kind       EntryKind
	Op         string // "GET /payments" or "docstore.ListAll"
	StatusCode int    // HTTP status; 0 for store operations
	Failed     bool
	DurationMs float64
	At         time.Time
}

// Collector is a fixed-size ring buffer of timing entries.
// INVARIANT: Record never blocks on aggregation; Snapshot copies under the lock
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	pos     int
	total   atomic.Int64
}

// NewCollector creates a collector holding the last size entries.
// POST: size <= 0 falls back to DefaultRingSize
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record stores e, overwriting the oldest entry when full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % len(c.entries)
	c.mu.Unlock()
	c.total.Add(1)
}

// TotalRecorded returns the number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return c.total.Load()
}

// OpStat aggregates timings for one request path or store operation.
type OpStat struct {
	Op       string  `json:"op"`
	Count    int     `json:"count"`
	Failures int     `json:"failures"`
	AvgMs    float64 `json:"avg_ms"`
	MaxMs    float64 `json:"max_ms"`
	totalMs  float64
}

// Snapshot is the aggregated view served to operators.
type Snapshot struct {
	TotalRecorded int64    `json:"total_recorded"`
	RequestP50Ms  float64  `json:"request_p50_ms"`
	RequestP95Ms  float64  `json:"request_p95_ms"`
	RequestP99Ms  float64  `json:"request_p99_ms"`
	SlowestPaths  []OpStat `json:"slowest_paths"`
	SlowestStore  []OpStat `json:"slowest_store_ops"`
}

// Snapshot aggregates entries recorded at or after since.
// POST: Slowest lists hold at most topN items ordered by average duration
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, len(c.entries))
	copy(buf, c.entries)
	c.mu.Unlock()

	var durations []float64
	requests := map[string]*OpStat{}
	store := map[string]*OpStat{}
	for _, e := range buf {
		if e.At.IsZero() || e.At.Before(since) {
			continue
		}
		bucket := store
		if e.Kind == KindRequest {
			bucket = requests
			durations = append(durations, e.DurationMs)
		}
		s, ok := bucket[e.Op]
		if !ok {
			s = &OpStat{Op: e.Op}
			bucket[e.Op] = s
		}
		s.Count++
		s.totalMs += e.DurationMs
		s.MaxMs = math.Max(s.MaxMs, e.DurationMs)
		if e.Failed || e.StatusCode >= 500 {
			s.Failures++
		}
	}

	snap := Snapshot{
		TotalRecorded: c.TotalRecorded(),
		SlowestPaths:  topByAvg(requests, topN),
		SlowestStore:  topByAvg(store, topN),
	}
	if len(durations) > 0 {
		sort.Float64s(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
		snap.RequestP99Ms = percentile(durations, 99)
	}
	return snap
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

func topByAvg(stats map[string]*OpStat, n int) []OpStat {
	list := make([]OpStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.totalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs == list[j].AvgMs {
			return list[i].Op < list[j].Op
		}
		return list[i].AvgMs > list[j].AvgMs
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
