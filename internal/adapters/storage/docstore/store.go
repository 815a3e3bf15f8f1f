// Package docstore is a keyed JSON document store: documents grouped into
// collections, read whole and updated field by field.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Document is one stored record. Fields holds decoded values: strings,
// json.Number, bool, nested maps and slices, and Timestamp for store-native times.
type Document struct {
	ID     string
	Fields map[string]any
}

// Store persists documents.
type Store interface {
	// ListAll returns every document in collection, oldest first.
	ListAll(ctx context.Context, collection string) ([]Document, error)
	// Get returns one document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// UpdateFields replaces exactly the named top-level fields of one document.
	UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error
	// Create stores a new document under a generated id.
	Create(ctx context.Context, collection string, fields map[string]any) (string, error)
}
