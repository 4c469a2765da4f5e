// Package report computes the aggregated numbers and series the dashboard
// displays: period totals, category rollups, monthly buckets, trends,
// projections, and waterfall decompositions. Every function is a pure
// computation over transaction slices; none mutates its arguments.
package report

import (
	"mitcash/internal/core"
)

// FallbackCategory is used to roll up expenses whose category field is empty.
const FallbackCategory = "Other"

// CategoryAmount is an amount aggregated under one category name.
type CategoryAmount struct {
	Name   string     `json:"name"`
	Amount core.Money `json:"amount"`
}

// CategorySeries is one category's expense totals bucketed by month.
type CategorySeries struct {
	Name    string         `json:"name"`
	Monthly [12]core.Money `json:"monthly"`
}

// Summary holds the headline figures for one period.
type Summary struct {
	TotalIncome      core.Money `json:"totalIncome"`
	TotalExpenses    core.Money `json:"totalExpenses"`
	TotalBills       core.Money `json:"totalBills"`
	NetSavings       core.Money `json:"netSavings"`
	AvailableSavings core.Money `json:"availableSavings"`
	SpendingRatio    float64    `json:"spendingRatio"`
}

// Total sums the amounts of the given transactions. An empty or nil slice
// sums to zero.
func Total(txs []core.Transaction) core.Money {
	var sum core.Money
	for _, tx := range txs {
		sum = sum.Add(tx.Amount)
	}
	return sum
}

// ByCategory rolls expense amounts up by category name in a single pass.
// Transactions without a category land under FallbackCategory. Result order
// is first-seen order of each category.
func ByCategory(expenses []core.Transaction) []CategoryAmount {
	var out []CategoryAmount
	index := make(map[string]int, len(expenses))
	for _, tx := range expenses {
		name := tx.Category
		if name == "" {
			name = FallbackCategory
		}
		i, seen := index[name]
		if !seen {
			index[name] = len(out)
			out = append(out, CategoryAmount{Name: name})
			i = len(out) - 1
		}
		out[i].Amount = out[i].Amount.Add(tx.Amount)
	}
	return out
}

// ByCategoryByMonth rolls expenses up by category and month-of-date using
// ByMonth's bucketing (January = 0, no year filter). Categories come back
// in first-seen order with FallbackCategory standing in for empty names.
func ByCategoryByMonth(expenses []core.Transaction) []CategorySeries {
	var out []CategorySeries
	index := make(map[string]int)
	for _, tx := range expenses {
		name := tx.Category
		if name == "" {
			name = FallbackCategory
		}
		i, seen := index[name]
		if !seen {
			index[name] = len(out)
			out = append(out, CategorySeries{Name: name})
			i = len(out) - 1
		}
		m := tx.Date.Month()
		if m < 1 || m > 12 {
			continue
		}
		out[i].Monthly[m-1] = out[i].Monthly[m-1].Add(tx.Amount)
	}
	return out
}

// ByMonth buckets transaction amounts into twelve sums indexed by
// month-of-date (January = 0). No year filter is applied: callers must
// pre-filter to a single year, or same-month transactions from different
// years alias into one bucket.
func ByMonth(txs []core.Transaction) [12]core.Money {
	var buckets [12]core.Money
	for _, tx := range txs {
		m := tx.Date.Month()
		if m < 1 || m > 12 {
			continue
		}
		buckets[m-1] = buckets[m-1].Add(tx.Amount)
	}
	return buckets
}

// Summarize derives the headline figures for one period. NetSavings and
// AvailableSavings are independent: net savings subtracts expenses, available
// savings subtracts bills, both from the same period's income. SpendingRatio
// is expenses over income clamped to [0, 1], and 0 when there is no income,
// so it is defined for every input.
func Summarize(income, expenses, bills []core.Transaction) Summary {
	s := Summary{
		TotalIncome:   Total(income),
		TotalExpenses: Total(expenses),
		TotalBills:    Total(bills),
	}
	s.NetSavings = s.TotalIncome.Sub(s.TotalExpenses)
	s.AvailableSavings = s.TotalIncome.Sub(s.TotalBills)
	if s.TotalIncome.Cents > 0 {
		ratio := float64(s.TotalExpenses.Cents) / float64(s.TotalIncome.Cents)
		if ratio < 0 {
			ratio = 0
		}
		if ratio > 1 {
			ratio = 1
		}
		s.SpendingRatio = ratio
	}
	return s
}
