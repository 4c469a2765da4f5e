package report

import (
	"mitcash/internal/core"
)

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"

	// trendWindow is the number of months in each comparison window.
	trendWindow = 3
	// trendThresholdPercent separates "flat" from a real move.
	trendThresholdPercent = 5.0
)

type (
	// Direction classifies a month-over-month trend.
	Direction string

	// Series holds parallel twelve-month bucket arrays for one year.
	Series struct {
		Income   [12]core.Money `json:"income"`
		Expenses [12]core.Money `json:"expenses"`
		Savings  [12]core.Money `json:"savings"`
	}

	// Trend is the percentage change between the recent three-month window
	// and the three months before it.
	Trend struct {
		ChangePercent float64   `json:"changePercent"`
		Direction     Direction `json:"direction"`
	}

	// Outlook extrapolates the year from the months elapsed so far.
	Outlook struct {
		Income      core.Money `json:"income"`
		Expenses    core.Money `json:"expenses"`
		Savings     core.Money `json:"savings"`
		SavingsRate float64    `json:"savingsRate"` // percent of projected income
	}

	// WaterfallBar is one step of a waterfall decomposition. Delta carries
	// the sign; Magnitude is the rendered bar height (always non-negative).
	WaterfallBar struct {
		Label     string     `json:"label"`
		Delta     core.Money `json:"delta"`
		Running   core.Money `json:"running"`
		Magnitude core.Money `json:"magnitude"`
	}
)

// MonthlySeries buckets income and expenses by month and derives the savings
// series as their per-month difference. Callers pre-filter both slices to a
// single year (see ByMonth).
func MonthlySeries(income, expenses []core.Transaction) Series {
	s := Series{
		Income:   ByMonth(income),
		Expenses: ByMonth(expenses),
	}
	for i := range s.Savings {
		s.Savings[i] = s.Income[i].Sub(s.Expenses[i])
	}
	return s
}

// TrendDelta compares the three buckets ending at refMonth (0-based) against
// the three immediately before them. The change is 0 when the previous
// window sums to zero, never infinite. Buckets outside the array contribute
// nothing, so early months compare against partial windows.
func TrendDelta(buckets [12]core.Money, refMonth int) Trend {
	recent := windowSum(buckets, refMonth-trendWindow+1, refMonth)
	previous := windowSum(buckets, refMonth-2*trendWindow+1, refMonth-trendWindow)

	var change float64
	if previous != 0 {
		change = float64(recent-previous) / float64(previous) * 100
	}

	dir := DirectionFlat
	switch {
	case change > trendThresholdPercent:
		dir = DirectionUp
	case change < -trendThresholdPercent:
		dir = DirectionDown
	}
	return Trend{ChangePercent: change, Direction: dir}
}

func windowSum(buckets [12]core.Money, lo, hi int) int64 {
	var sum int64
	for i := lo; i <= hi; i++ {
		if i < 0 || i >= len(buckets) {
			continue
		}
		sum += buckets[i].Cents
	}
	return sum
}

// ProjectAnnual extrapolates a full year from the total observed over
// monthsElapsed months: (total / monthsElapsed) * 12. Zero when no months
// have elapsed.
func ProjectAnnual(txs []core.Transaction, monthsElapsed int) core.Money {
	if monthsElapsed <= 0 {
		return core.Money{}
	}
	total := Total(txs)
	return core.Money{Cents: total.Cents * 12 / int64(monthsElapsed)}
}

// Project builds the annual outlook from the income and expense transactions
// observed so far. SavingsRate is projected savings as a percentage of
// projected income, 0 when projected income is zero.
func Project(income, expenses []core.Transaction, monthsElapsed int) Outlook {
	o := Outlook{
		Income:   ProjectAnnual(income, monthsElapsed),
		Expenses: ProjectAnnual(expenses, monthsElapsed),
	}
	o.Savings = o.Income.Sub(o.Expenses)
	if o.Income.Cents > 0 {
		o.SavingsRate = float64(o.Savings.Cents) / float64(o.Income.Cents) * 100
	}
	return o
}

// Waterfall decomposes income down to net savings: an income bar, one
// negative bar per category total in the given order, and a final "Net" bar
// equal to the running total after all subtractions.
func Waterfall(totalIncome core.Money, categories []CategoryAmount) []WaterfallBar {
	bars := make([]WaterfallBar, 0, len(categories)+2)
	running := totalIncome
	bars = append(bars, WaterfallBar{
		Label:     "Income",
		Delta:     totalIncome,
		Running:   running,
		Magnitude: abs(totalIncome),
	})
	for _, cat := range categories {
		delta := core.Money{Cents: -cat.Amount.Cents}
		running = running.Add(delta)
		bars = append(bars, WaterfallBar{
			Label:     cat.Name,
			Delta:     delta,
			Running:   running,
			Magnitude: abs(delta),
		})
	}
	bars = append(bars, WaterfallBar{
		Label:     "Net",
		Delta:     running,
		Running:   running,
		Magnitude: abs(running),
	})
	return bars
}

func abs(m core.Money) core.Money {
	if m.Cents < 0 {
		return core.Money{Cents: -m.Cents}
	}
	return m
}
