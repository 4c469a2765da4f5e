// Package search implements multi-field substring search across the full
// transaction set of all three kinds.
package search

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"mitcash/internal/core"
)

const (
	// MinQueryLen is the minimum trimmed query length. Shorter queries are a
	// distinct "too short" outcome, not an empty result.
	MinQueryLen = 2
	// MaxResults caps the result list, applied after sorting.
	MaxResults = 50
)

// ErrQueryTooShort marks a query below MinQueryLen after trimming. Callers
// render this differently from a query with zero matches.
var ErrQueryTooShort = errors.New("search query too short")

// Match is one search hit annotated with its originating kind.
type Match struct {
	Kind        core.Kind        `json:"kind"`
	Transaction core.Transaction `json:"transaction"`
}

// Search returns transactions whose label, category, notes, or any tag
// contains the trimmed query, case-insensitively. Results come back sorted
// by date descending with ties keeping their original relative order, capped
// at MaxResults after sorting.
func Search(query string, txs []core.Transaction) ([]Match, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(q) < MinQueryLen {
		return nil, ErrQueryTooShort
	}

	var matches []Match
	for _, tx := range txs {
		if matchesQuery(tx, q) {
			matches = append(matches, Match{Kind: tx.Kind, Transaction: tx})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Transaction.Date.After(matches[j].Transaction.Date.Time)
	})
	if len(matches) > MaxResults {
		matches = matches[:MaxResults]
	}
	return matches, nil
}

func matchesQuery(tx core.Transaction, q string) bool {
	if contains(tx.Label(), q) {
		return true
	}
	if tx.Kind == core.KindExpense && contains(tx.Category, q) {
		return true
	}
	if contains(tx.Notes, q) {
		return true
	}
	for _, tag := range tx.Tags {
		if contains(tag, q) {
			return true
		}
	}
	return false
}

func contains(field, q string) bool {
	return field != "" && strings.Contains(strings.ToLower(field), q)
}
