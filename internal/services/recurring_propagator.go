package services

import (
	"context"
	"fmt"
	"log/slog"

	"mitcash/internal/core"
	"mitcash/internal/store"
)

// PropagationResult reports what a propagation run did. SourcesFound zero
// and "all already present" are distinct outcomes a caller renders
// differently.
type PropagationResult struct {
	Kind         core.Kind   `json:"kind"`
	Target       core.Period `json:"target"`
	SourcesFound int         `json:"sources_found"`
	Created      int         `json:"created"`
	Skipped      int         `json:"skipped"`
}

// RecurringPropagator copies a period's recurring transactions into the
// following period. Series identity is the transaction's label text:
// two sources sharing a label are treated as one series.
type RecurringPropagator struct {
	store   store.Store
	service *TransactionService
}

func NewRecurringPropagator(s store.Store, service *TransactionService) *RecurringPropagator {
	return &RecurringPropagator{
		store:   s,
		service: service,
	}
}

// Propagate synthesizes target-period copies of every recurring transaction
// found in the immediately preceding period. The copy keeps the source's
// day of month, clamped to the last valid day of the target month.
func (p *RecurringPropagator) Propagate(ctx context.Context, kind core.Kind, target core.Period) (PropagationResult, error) {
	result := PropagationResult{Kind: kind, Target: target}

	if !kind.Valid() {
		return result, core.ErrInvalidKind
	}
	if err := target.Validate(); err != nil {
		return result, err
	}

	prev := target.Previous()
	sources := p.store.FetchByPeriod(ctx, kind, prev.Year, prev.Month)
	if !sources.Success {
		return result, fmt.Errorf("fetch source period %s: store unavailable", prev)
	}

	existing := p.store.FetchByPeriod(ctx, kind, target.Year, target.Month)
	if !existing.Success {
		return result, fmt.Errorf("fetch target period %s: store unavailable", target)
	}

	// A label only blocks re-creation when the existing transaction is
	// itself recurring. Labels created during this run count too, so two
	// sources sharing a label yield a single copy.
	seen := make(map[string]bool)
	for _, tx := range existing.Records {
		if tx.Recurring {
			seen[tx.Label()] = true
		}
	}

	for _, src := range sources.Records {
		if !src.Recurring {
			continue
		}
		result.SourcesFound++

		label := src.Label()
		if seen[label] {
			result.Skipped++
			continue
		}

		copyTx := src
		copyTx.ID = ""
		copyTx.Date = core.NewDate(target.Year, target.Month, target.ClampDay(src.Date.Day()))
		copyTx.Recurring = true

		if _, err := p.service.Create(ctx, copyTx); err != nil {
			slog.ErrorContext(ctx, "Failed to create propagated transaction",
				"kind", kind, "label", label, "target", target.String(), "error", err)
			continue
		}

		seen[label] = true
		result.Created++
	}

	slog.InfoContext(ctx, "Recurring propagation complete",
		"kind", kind,
		"target", target.String(),
		"sources_found", result.SourcesFound,
		"created", result.Created,
		"skipped", result.Skipped)

	return result, nil
}
