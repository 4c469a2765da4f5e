package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2026, 1, 1), true},
		{NewDate(2026, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-05")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Year() != 2026 || d.Month() != 3 || d.Day() != 5 {
		t.Fatalf("got %v", d)
	}
	if _, err := ParseDate("not-a-date"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err != nil {
		t.Fatalf("zero is a valid amount, got %v", err)
	}
	if err := (Money{Cents: -1}).Validate(); err == nil {
		t.Fatal("expected error for negative")
	}
}

func TestPeriodPrevious(t *testing.T) {
	cases := []struct {
		in, want Period
	}{
		{Period{2026, 2}, Period{2026, 1}},
		{Period{2026, 1}, Period{2025, 12}}, // year boundary
	}
	for _, tc := range cases {
		if got := tc.in.Previous(); got != tc.want {
			t.Fatalf("Previous(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestPeriodNext(t *testing.T) {
	cases := []struct {
		in, want Period
	}{
		{Period{2026, 11}, Period{2026, 12}},
		{Period{2026, 12}, Period{2027, 1}}, // year boundary
	}
	for _, tc := range cases {
		if got := tc.in.Next(); got != tc.want {
			t.Fatalf("Next(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestPeriodClampDay(t *testing.T) {
	feb := Period{Year: 2026, Month: 2} // 28 days
	if got := feb.ClampDay(31); got != 28 {
		t.Fatalf("ClampDay(31) in Feb 2026 = %d, want 28", got)
	}
	if got := feb.ClampDay(15); got != 15 {
		t.Fatalf("ClampDay(15) = %d, want 15", got)
	}
	leap := Period{Year: 2028, Month: 2}
	if got := leap.DaysIn(); got != 29 {
		t.Fatalf("DaysIn Feb 2028 = %d, want 29", got)
	}
	apr := Period{Year: 2026, Month: 4} // 30 days
	if got := apr.ClampDay(31); got != 30 {
		t.Fatalf("ClampDay(31) in Apr = %d, want 30", got)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := []Transaction{
		{Kind: KindIncome, Date: NewDate(2026, 3, 1), Amount: Money{Cents: 500000}, Source: "Paycheck"},
		{Kind: KindExpense, Date: NewDate(2026, 3, 5), Amount: Money{Cents: 120000}, Description: "Rent payment", Category: "Rent"},
		{Kind: KindBill, Date: NewDate(2026, 3, 20), Amount: Money{Cents: 45000}, Description: "Chase Credit Card"},
		{Kind: KindIncome, Date: NewDate(2026, 3, 1), Amount: Money{Cents: 0}, Source: "Nothing"}, // zero amount allowed
	}
	for i, tx := range good {
		if err := tx.Validate(); err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
	}

	bad := []struct {
		tx   Transaction
		want error
	}{
		{Transaction{Kind: "savings", Date: NewDate(2026, 1, 1), Amount: Money{Cents: 1}, Source: "x"}, ErrInvalidKind},
		{Transaction{Kind: KindIncome, Amount: Money{Cents: 1}, Source: "x"}, ErrInvalidDate},
		{Transaction{Kind: KindIncome, Date: NewDate(2026, 1, 1), Amount: Money{Cents: -1}, Source: "x"}, ErrInvalidAmount},
		{Transaction{Kind: KindIncome, Date: NewDate(2026, 1, 1), Amount: Money{Cents: 1}}, ErrEmptySource},
		{Transaction{Kind: KindExpense, Date: NewDate(2026, 1, 1), Amount: Money{Cents: 1}, Category: "Rent"}, ErrEmptyDescription},
		{Transaction{Kind: KindExpense, Date: NewDate(2026, 1, 1), Amount: Money{Cents: 1}, Description: "x"}, ErrEmptyCategory},
		{Transaction{Kind: KindBill, Date: NewDate(2026, 1, 1), Amount: Money{Cents: 1}}, ErrEmptyDescription},
	}
	for i, tc := range bad {
		if err := tc.tx.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d got %v, want %v", i, err, tc.want)
		}
	}
}

func TestTransactionLabel(t *testing.T) {
	income := Transaction{Kind: KindIncome, Source: "Freelance"}
	if income.Label() != "Freelance" {
		t.Fatalf("income label = %q", income.Label())
	}
	bill := Transaction{Kind: KindBill, Description: "Electric"}
	if bill.Label() != "Electric" {
		t.Fatalf("bill label = %q", bill.Label())
	}
}
