package services

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"mitcash/internal/categories"
	"mitcash/internal/core"
	"mitcash/internal/report"
	"mitcash/internal/store"
)

// PeriodData holds one period's transactions for all three kinds, plus
// per-slice fetch outcomes. A failed slice is empty, not fatal.
type PeriodData struct {
	Period   core.Period
	Income   []core.Transaction
	Expenses []core.Transaction
	Bills    []core.Transaction

	// Partial is true when at least one slice failed to fetch.
	Partial bool
}

// MonthSummary is everything the dashboard renders for a single period.
type MonthSummary struct {
	Period     core.Period
	Summary    report.Summary
	Categories []report.CategoryAmount
	Waterfall  []report.WaterfallBar
	Partial    bool
}

// AnnualOverview carries a year's monthly series, the per-category expense
// breakdown by month, and the projection derived from the months elapsed
// so far.
type AnnualOverview struct {
	Year           int
	Series         report.Series
	CategorySeries []report.CategorySeries
	Outlook        report.Outlook
	Partial        bool
}

// DashboardService loads transaction slices and runs the reporting engine
// over them. It holds no state between calls.
type DashboardService struct {
	store    store.Store
	registry *categories.Registry
}

// NewDashboardService builds the service. The registry orders waterfall
// bars; a nil registry leaves category totals in first-seen order.
func NewDashboardService(s store.Store, reg *categories.Registry) *DashboardService {
	return &DashboardService{store: s, registry: reg}
}

// LoadPeriod fetches income, expenses, and bills for one period
// concurrently. Fetch results are independent; the slices are combined
// only after all three complete.
func (s *DashboardService) LoadPeriod(ctx context.Context, p core.Period) (PeriodData, error) {
	if err := p.Validate(); err != nil {
		return PeriodData{}, err
	}

	kinds := []core.Kind{core.KindIncome, core.KindExpense, core.KindBill}
	slices := make([][]core.Transaction, len(kinds))
	failed := make([]bool, len(kinds))

	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			res := s.store.FetchByPeriod(ctx, kind, p.Year, p.Month)
			if !res.Success {
				slog.WarnContext(ctx, "Period fetch failed, treating slice as empty",
					"kind", kind, "period", p.String())
				failed[i] = true
				return nil
			}
			slices[i] = res.Records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return PeriodData{}, err
	}

	return PeriodData{
		Period:   p,
		Income:   slices[0],
		Expenses: slices[1],
		Bills:    slices[2],
		Partial:  failed[0] || failed[1] || failed[2],
	}, nil
}

// SummarizePeriod produces the month dashboard: totals, ratios, category
// rollup, and the income-minus-categories waterfall.
func (s *DashboardService) SummarizePeriod(ctx context.Context, p core.Period) (MonthSummary, error) {
	data, err := s.LoadPeriod(ctx, p)
	if err != nil {
		return MonthSummary{}, err
	}

	summary := report.Summarize(data.Income, data.Expenses, data.Bills)
	byCategory := report.ByCategory(data.Expenses)

	return MonthSummary{
		Period:     p,
		Summary:    summary,
		Categories: byCategory,
		Waterfall:  report.Waterfall(summary.TotalIncome, s.registryOrder(byCategory)),
		Partial:    data.Partial,
	}, nil
}

// registryOrder re-sorts category totals into merged registry order,
// built-ins first then customs. Orphaned names keep their first-seen order
// after all registered ones.
func (s *DashboardService) registryOrder(cats []report.CategoryAmount) []report.CategoryAmount {
	if s.registry == nil {
		return cats
	}

	rank := make(map[string]int)
	for i, c := range s.registry.Merge() {
		rank[c.Name] = i
	}

	out := make([]report.CategoryAmount, len(cats))
	copy(out, cats)
	sort.SliceStable(out, func(i, j int) bool {
		ri, iKnown := rank[out[i].Name]
		rj, jKnown := rank[out[j].Name]
		if iKnown != jKnown {
			return iKnown
		}
		return iKnown && ri < rj
	})
	return out
}

// LoadYear fetches all twelve periods of a year concurrently and returns
// the combined income and expense sets. One failed month does not
// invalidate the other eleven.
func (s *DashboardService) LoadYear(ctx context.Context, year int) (income, expenses []core.Transaction, partial bool, err error) {
	type monthSlice struct {
		income   []core.Transaction
		expenses []core.Transaction
		partial  bool
	}
	months := make([]monthSlice, 12)

	g, ctx := errgroup.WithContext(ctx)
	for m := 1; m <= 12; m++ {
		g.Go(func() error {
			data, err := s.LoadPeriod(ctx, core.Period{Year: year, Month: m})
			if err != nil {
				return err
			}
			months[m-1] = monthSlice{income: data.Income, expenses: data.Expenses, partial: data.Partial}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, false, err
	}

	for _, ms := range months {
		income = append(income, ms.income...)
		expenses = append(expenses, ms.expenses...)
		partial = partial || ms.partial
	}
	return income, expenses, partial, nil
}

// AnnualReport builds the year's monthly series and projects the annual
// outlook from the months elapsed so far. monthsElapsed is typically the
// current month number when viewing the current year, or 12 for past years.
func (s *DashboardService) AnnualReport(ctx context.Context, year, monthsElapsed int) (AnnualOverview, error) {
	income, expenses, partial, err := s.LoadYear(ctx, year)
	if err != nil {
		return AnnualOverview{}, err
	}

	return AnnualOverview{
		Year:           year,
		Series:         report.MonthlySeries(income, expenses),
		CategorySeries: report.ByCategoryByMonth(expenses),
		Outlook:        report.Project(income, expenses, monthsElapsed),
		Partial:        partial,
	}, nil
}

// FetchKindByPeriod exposes a single kind-and-period fetch for listing
// surfaces.
func (s *DashboardService) FetchKindByPeriod(ctx context.Context, kind core.Kind, p core.Period) store.FetchResult {
	return s.store.FetchByPeriod(ctx, kind, p.Year, p.Month)
}

// FetchAllOfKind returns a kind's full collection.
func (s *DashboardService) FetchAllOfKind(ctx context.Context, kind core.Kind) store.FetchResult {
	return s.store.FetchAll(ctx, kind)
}

// FetchEverything returns the full transaction set across all three kinds,
// for the search surface. Failed slices degrade to empty.
func (s *DashboardService) FetchEverything(ctx context.Context) []core.Transaction {
	var all []core.Transaction
	for _, kind := range []core.Kind{core.KindIncome, core.KindExpense, core.KindBill} {
		res := s.store.FetchAll(ctx, kind)
		if !res.Success {
			slog.WarnContext(ctx, "Full fetch failed, treating slice as empty", "kind", kind)
			continue
		}
		all = append(all, res.Records...)
	}
	return all
}
