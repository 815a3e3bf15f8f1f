package docstore

import (
	"context"
	"log/slog"
	"time"

	"gritgym/internal/adapters/http/perf"
)

// Timed decorates a Store with per-operation timing.
type Timed struct {
	next      Store
	collector *perf.Collector
	threshold time.Duration
}

var _ Store = (*Timed)(nil)

// NewTimed wraps next; operations slower than threshold are logged as slow_store_op.
func NewTimed(next Store, collector *perf.Collector, threshold time.Duration) *Timed {
	return &Timed{next: next, collector: collector, threshold: threshold}
}

func (t *Timed) observe(op, collection string, start time.Time, err error) {
	elapsed := time.Since(start)
	ms := float64(elapsed.Microseconds()) / 1000.0
	if t.threshold > 0 && elapsed >= t.threshold {
		slog.Warn("slow_store_op", "op", op, "collection", collection, "duration_ms", ms)
	}
	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindStore,
			Op:         "docstore." + op,
			Failed:     err != nil && err != ErrNotFound,
			DurationMs: ms,
			At:         start,
		})
	}
}

// ListAll times next.ListAll.
func (t *Timed) ListAll(ctx context.Context, collection string) ([]Document, error) {
	start := time.Now()
	docs, err := t.next.ListAll(ctx, collection)
	t.observe("ListAll", collection, start, err)
	return docs, err
}

// Get times next.Get.
func (t *Timed) Get(ctx context.Context, collection, id string) (Document, error) {
	start := time.Now()
	doc, err := t.next.Get(ctx, collection, id)
	t.observe("Get", collection, start, err)
	return doc, err
}

// UpdateFields times next.UpdateFields.
func (t *Timed) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	start := time.Now()
	err := t.next.UpdateFields(ctx, collection, id, fields)
	t.observe("UpdateFields", collection, start, err)
	return err
}

// Create times next.Create.
func (t *Timed) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	start := time.Now()
	id, err := t.next.Create(ctx, collection, fields)
	t.observe("Create", collection, start, err)
	return id, err
}
