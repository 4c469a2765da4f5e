// Package store defines the transaction store contract the reporting engine
// consumes, plus the shared period-filtering fallback every adapter uses.
//
// Fetches never surface an error to the engine: a failed fetch degrades to
// FetchResult{Success: false} with no records, so one failed slice cannot
// invalidate the rest of an aggregation batch. Writes do return errors; they
// are the store boundary's hard failures.
package store

import (
	"context"

	"mitcash/internal/core"
)

// FetchResult is the uniform read outcome. Records is nil or empty when
// Success is false.
type FetchResult struct {
	Success bool
	Records []core.Transaction
}

// Store is the transaction store adapter contract.
type Store interface {
	// FetchByPeriod returns all transactions of kind whose date falls within
	// [year-month-01, nextMonth-01), newest first.
	FetchByPeriod(ctx context.Context, kind core.Kind, year, month int) FetchResult

	// FetchAll returns the full collection for kind, newest first.
	FetchAll(ctx context.Context, kind core.Kind) FetchResult

	// Create persists a new transaction and returns its assigned ID.
	Create(ctx context.Context, tx core.Transaction) (string, error)

	// Update replaces the mutable fields of an existing transaction.
	// ID and kind are immutable.
	Update(ctx context.Context, kind core.Kind, id string, tx core.Transaction) error

	// Delete removes a transaction permanently.
	Delete(ctx context.Context, kind core.Kind, id string) error
}

// FilterByPeriod keeps only transactions whose date falls in (year, month).
// Adapters use it as the client-side fallback when a range query fails.
func FilterByPeriod(records []core.Transaction, year, month int) []core.Transaction {
	p := core.Period{Year: year, Month: month}
	out := make([]core.Transaction, 0, len(records))
	for _, r := range records {
		if p.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out
}

// Failure is the degraded result for a fetch that could not complete.
func Failure() FetchResult {
	return FetchResult{Success: false}
}
