package projections

import (
	"context"
	"errors"

	"gritgym/internal/adapters/storage/docstore"
	"gritgym/internal/domain/payment"
)

// GetPaymentQuery carries query parameters.
type GetPaymentQuery struct {
	ID string
}

// GetPaymentDeps holds dependencies for GetPayment.
type GetPaymentDeps struct {
	Documents DocumentGetter
}

// QueryGetPayment fetches and projects a single payment.
// POST: Returns payment.ErrNotFound when the document does not exist
func QueryGetPayment(ctx context.Context, query GetPaymentQuery, deps GetPaymentDeps) (payment.Payment, error) {
	doc, err := deps.Documents.Get(ctx, payment.Collection, query.ID)
	if errors.Is(err, docstore.ErrNotFound) {
		return payment.Payment{}, payment.ErrNotFound
	}
	if err != nil {
		return payment.Payment{}, err
	}
	return payment.FromDocument(doc.ID, doc.Fields), nil
}
