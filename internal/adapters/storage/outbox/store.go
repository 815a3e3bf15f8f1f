package outbox

import (
	"context"

	domain "gritgym/internal/domain/outbox"
)

// Store defines the interface for queued notification persistence.
type Store interface {
	// GetByID retrieves an entry by its ID.
	// POST: Returns domain.ErrNotFound when absent
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Save persists an entry (insert or update).
	// PRE: entry has been validated
	Save(ctx context.Context, e domain.Entry) error

	// ListByStatus returns entries with the given status, newest first.
	// PRE: limit > 0
	ListByStatus(ctx context.Context, status string, limit int) ([]domain.Entry, error)
}

var _ Store = (*SQLiteStore)(nil)
