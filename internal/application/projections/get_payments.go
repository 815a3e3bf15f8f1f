package projections

import (
	"context"
	"fmt"

	"gritgym/internal/domain/payment"
)

// GetPaymentsQuery carries query parameters.
type GetPaymentsQuery struct{}

// GetPaymentsResult carries the query result.
type GetPaymentsResult struct {
	Payments payment.List
}

// GetPaymentsDeps holds dependencies for GetPayments.
type GetPaymentsDeps struct {
	Documents DocumentLister
}

// QueryGetPayments fetches the whole payments collection and projects every document.
// PRE: none
// POST: Returns payments in store order; a store error is returned as is, wrapped
// INVARIANT: No filtering happens here; every page derives its own view
func QueryGetPayments(ctx context.Context, _ GetPaymentsQuery, deps GetPaymentsDeps) (GetPaymentsResult, error) {
	docs, err := deps.Documents.ListAll(ctx, payment.Collection)
	if err != nil {
		return GetPaymentsResult{}, fmt.Errorf("failed to fetch payments: %w", err)
	}
	list := make(payment.List, 0, len(docs))
	for _, d := range docs {
		list = append(list, payment.FromDocument(d.ID, d.Fields))
	}
	return GetPaymentsResult{Payments: list}, nil
}
