package report

import (
	"testing"

	"mitcash/internal/core"
)

func cents(vals ...int64) [12]core.Money {
	var buckets [12]core.Money
	for i, v := range vals {
		if i >= 12 {
			break
		}
		buckets[i] = core.Money{Cents: v}
	}
	return buckets
}

func TestMonthlySeries(t *testing.T) {
	incomes := []core.Transaction{
		income(core.NewDate(2026, 1, 1), 1000),
		income(core.NewDate(2026, 2, 1), 1000),
	}
	expenses := []core.Transaction{
		expense(core.NewDate(2026, 1, 15), 400, "Rent"),
		expense(core.NewDate(2026, 2, 15), 1200, "Rent"),
	}

	s := MonthlySeries(incomes, expenses)
	if s.Income[0].Cents != 1000 || s.Expenses[0].Cents != 400 || s.Savings[0].Cents != 600 {
		t.Fatalf("January = %v / %v / %v", s.Income[0], s.Expenses[0], s.Savings[0])
	}
	if s.Savings[1].Cents != -200 {
		t.Fatalf("February savings = %d, want -200", s.Savings[1].Cents)
	}
	for i := 2; i < 12; i++ {
		if s.Income[i].Cents != 0 || s.Expenses[i].Cents != 0 || s.Savings[i].Cents != 0 {
			t.Fatalf("month %d should be zero", i)
		}
	}
}

func TestTrendDelta(t *testing.T) {
	tests := []struct {
		name     string
		buckets  [12]core.Money
		ref      int
		wantPct  float64
		wantDir  Direction
	}{
		{
			name:    "up",
			buckets: cents(100, 100, 100, 200, 200, 200),
			ref:     5, // recent = Apr+May+Jun = 600, previous = Jan+Feb+Mar = 300
			wantPct: 100,
			wantDir: DirectionUp,
		},
		{
			name:    "down",
			buckets: cents(200, 200, 200, 100, 100, 100),
			ref:     5,
			wantPct: -50,
			wantDir: DirectionDown,
		},
		{
			name:    "flat within threshold",
			buckets: cents(100, 100, 100, 101, 101, 101),
			ref:     5,
			wantPct: 1,
			wantDir: DirectionFlat,
		},
		{
			name:    "previous window zero",
			buckets: cents(0, 0, 0, 500, 500, 500),
			ref:     5,
			wantPct: 0,
			wantDir: DirectionFlat,
		},
		{
			name:    "all zero",
			buckets: cents(),
			ref:     5,
			wantPct: 0,
			wantDir: DirectionFlat,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrendDelta(tt.buckets, tt.ref)
			if got.ChangePercent != tt.wantPct {
				t.Errorf("ChangePercent = %v, want %v", got.ChangePercent, tt.wantPct)
			}
			if got.Direction != tt.wantDir {
				t.Errorf("Direction = %v, want %v", got.Direction, tt.wantDir)
			}
		})
	}
}

func TestTrendDeltaEarlyReference(t *testing.T) {
	// refMonth 1: previous window is entirely out of range, so change is 0.
	buckets := cents(100, 200)
	got := TrendDelta(buckets, 1)
	if got.ChangePercent != 0 || got.Direction != DirectionFlat {
		t.Fatalf("got %+v, want zero/flat", got)
	}
}

func TestProjectAnnual(t *testing.T) {
	txs := []core.Transaction{
		income(core.NewDate(2026, 1, 1), 10000),
		income(core.NewDate(2026, 2, 1), 20000),
		income(core.NewDate(2026, 3, 1), 30000),
	}
	// 60000 over 3 months -> 20000/month -> 240000/year
	if got := ProjectAnnual(txs, 3); got.Cents != 240000 {
		t.Fatalf("ProjectAnnual = %d, want 240000", got.Cents)
	}
	if got := ProjectAnnual(txs, 0); got.Cents != 0 {
		t.Fatalf("ProjectAnnual(0 months) = %d, want 0", got.Cents)
	}
}

func TestProject(t *testing.T) {
	incomes := []core.Transaction{income(core.NewDate(2026, 1, 1), 500000)}
	expenses := []core.Transaction{expense(core.NewDate(2026, 1, 5), 300000, "Rent")}

	o := Project(incomes, expenses, 1)
	if o.Income.Cents != 6000000 || o.Expenses.Cents != 3600000 {
		t.Fatalf("outlook = %+v", o)
	}
	if o.Savings.Cents != 2400000 {
		t.Fatalf("Savings = %d", o.Savings.Cents)
	}
	if o.SavingsRate != 40 {
		t.Fatalf("SavingsRate = %v, want 40", o.SavingsRate)
	}
}

func TestProjectZeroIncome(t *testing.T) {
	expenses := []core.Transaction{expense(core.NewDate(2026, 1, 5), 300000, "Rent")}
	o := Project(nil, expenses, 4)
	if o.SavingsRate != 0 {
		t.Fatalf("SavingsRate with no income = %v, want 0", o.SavingsRate)
	}
}

func TestWaterfall(t *testing.T) {
	categories := []CategoryAmount{
		{Name: "Rent", Amount: core.Money{Cents: 120000}},
		{Name: "Groceries", Amount: core.Money{Cents: 30000}},
	}
	bars := Waterfall(core.Money{Cents: 500000}, categories)

	if len(bars) != 4 {
		t.Fatalf("got %d bars, want 4", len(bars))
	}
	if bars[0].Label != "Income" || bars[0].Delta.Cents != 500000 || bars[0].Running.Cents != 500000 {
		t.Fatalf("income bar = %+v", bars[0])
	}
	if bars[1].Label != "Rent" || bars[1].Delta.Cents != -120000 || bars[1].Running.Cents != 380000 {
		t.Fatalf("rent bar = %+v", bars[1])
	}
	if bars[1].Magnitude.Cents != 120000 {
		t.Fatalf("rent magnitude = %d, want positive 120000", bars[1].Magnitude.Cents)
	}
	if bars[2].Label != "Groceries" || bars[2].Running.Cents != 350000 {
		t.Fatalf("groceries bar = %+v", bars[2])
	}
	final := bars[3]
	if final.Label != "Net" || final.Delta.Cents != 350000 || final.Running.Cents != 350000 {
		t.Fatalf("net bar = %+v", final)
	}
}

func TestWaterfallOverspend(t *testing.T) {
	categories := []CategoryAmount{{Name: "Rent", Amount: core.Money{Cents: 800}}}
	bars := Waterfall(core.Money{Cents: 500}, categories)
	final := bars[len(bars)-1]
	if final.Running.Cents != -300 {
		t.Fatalf("running = %d, want -300", final.Running.Cents)
	}
	if final.Magnitude.Cents != 300 {
		t.Fatalf("magnitude = %d, want 300 (absolute)", final.Magnitude.Cents)
	}
}
