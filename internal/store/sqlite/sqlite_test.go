package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"mitcash/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndFetchByPeriod(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := core.Transaction{
		Kind:        core.KindExpense,
		Date:        core.NewDate(2026, 3, 14),
		Amount:      core.Money{Cents: 8250},
		Description: "Hardware store",
		Category:    "Utilities",
		Tags:        []string{"house", "repair"},
	}
	id, err := s.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	other := in
	other.Date = core.NewDate(2026, 4, 2)
	other.Description = "Next month"
	if _, err := s.Create(ctx, other); err != nil {
		t.Fatalf("Create: %v", err)
	}

	res := s.FetchByPeriod(ctx, core.KindExpense, 2026, 3)
	if !res.Success {
		t.Fatal("expected success")
	}
	if len(res.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(res.Records))
	}
	got := res.Records[0]
	if got.ID != id || got.Description != "Hardware store" || got.Amount.Cents != 8250 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "house" {
		t.Errorf("tags = %v", got.Tags)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestFetchByPeriodYearBoundary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	dec := core.Transaction{
		Kind:   core.KindIncome,
		Date:   core.NewDate(2025, 12, 31),
		Amount: core.Money{Cents: 100000},
		Source: "Salary",
	}
	jan := dec
	jan.Date = core.NewDate(2026, 1, 1)
	for _, tx := range []core.Transaction{dec, jan} {
		if _, err := s.Create(ctx, tx); err != nil {
			t.Fatal(err)
		}
	}

	res := s.FetchByPeriod(ctx, core.KindIncome, 2025, 12)
	if len(res.Records) != 1 || res.Records[0].Date.Year() != 2025 {
		t.Errorf("December fetch = %+v, want only the 2025 record", res.Records)
	}
}

func TestFetchAllOrdersNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, day := range []int{7, 25, 1} {
		tx := core.Transaction{
			Kind:        core.KindBill,
			Date:        core.NewDate(2026, 5, day),
			Amount:      core.Money{Cents: 5000},
			Description: "Internet",
			Category:    "Utilities",
		}
		if _, err := s.Create(ctx, tx); err != nil {
			t.Fatal(err)
		}
	}

	res := s.FetchAll(ctx, core.KindBill)
	if !res.Success || len(res.Records) != 3 {
		t.Fatalf("FetchAll = %+v", res)
	}
	if d := res.Records[0].Date.Day(); d != 25 {
		t.Errorf("first record day = %d, want 25", d)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tx := core.Transaction{
		Kind:        core.KindExpense,
		Date:        core.NewDate(2026, 3, 5),
		Amount:      core.Money{Cents: 1200},
		Description: "Lunch",
		Category:    "Eating Out",
	}
	id, err := s.Create(ctx, tx)
	if err != nil {
		t.Fatal(err)
	}

	tx.Amount = core.Money{Cents: 1500}
	tx.Notes = "with tip"
	if err := s.Update(ctx, core.KindExpense, id, tx); err != nil {
		t.Fatalf("Update: %v", err)
	}
	res := s.FetchAll(ctx, core.KindExpense)
	if res.Records[0].Amount.Cents != 1500 || res.Records[0].Notes != "with tip" {
		t.Errorf("after update: %+v", res.Records[0])
	}

	if err := s.Update(ctx, core.KindExpense, "missing", tx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update missing = %v, want ErrNotFound", err)
	}

	if err := s.Delete(ctx, core.KindExpense, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, core.KindExpense, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	s := newTestStore(t)
	bad := core.Transaction{
		Kind:   core.KindExpense,
		Date:   core.NewDate(2026, 3, 5),
		Amount: core.Money{Cents: 1200},
	}
	if _, err := s.Create(context.Background(), bad); !errors.Is(err, core.ErrEmptyDescription) {
		t.Errorf("Create invalid = %v, want ErrEmptyDescription", err)
	}
}
