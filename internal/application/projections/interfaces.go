package projections

import (
	"context"

	"gritgym/internal/adapters/storage/docstore"
)

// DocumentLister reads a whole collection.
type DocumentLister interface {
	ListAll(ctx context.Context, collection string) ([]docstore.Document, error)
}

// DocumentGetter reads one document.
type DocumentGetter interface {
	Get(ctx context.Context, collection, id string) (docstore.Document, error)
}
