package core

import (
	"errors"
	"strings"
	"time"
)

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expenses"
	KindBill    Kind = "bills"
)

type (
	// Kind identifies one of the three transaction collections. The string
	// values double as collection/table names in the store adapters.
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Period selects a (year, month) bucket of transactions.
	Period struct {
		Year  int
		Month int // 1-12
	}

	// Transaction is the central record. Kind-specific fields: Source is set
	// only for income, Description for expenses and bills, Category only for
	// expenses. Validate enforces the per-kind shape.
	Transaction struct {
		ID          string    `json:"id,omitempty"`
		Kind        Kind      `json:"kind"`
		Date        Date      `json:"date"`
		Amount      Money     `json:"amount"`
		Source      string    `json:"source,omitempty"`
		Description string    `json:"description,omitempty"`
		Category    string    `json:"category,omitempty"`
		Notes       string    `json:"notes,omitempty"`
		Tags        []string  `json:"tags,omitempty"`
		Recurring   bool      `json:"recurring,omitempty"`
		CreatedAt   time.Time `json:"createdAt,omitempty"`
		UpdatedAt   time.Time `json:"updatedAt,omitempty"`
	}
)

var (
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptySource      = errors.New("empty income source")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty expense category")
)

// Valid reports whether k is one of the three known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindIncome, KindExpense, KindBill:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind maps a collection name to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

// NewDate creates a Date from year, month, day. Day-of-month values past the
// end of the month normalize forward per time.Date semantics; callers that
// need clamping should use Period.ClampDay first.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month, 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate rejects negative amounts. Zero is a valid amount.
func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (p Period) Validate() error {
	if p.Year < 1 || p.Month < 1 || p.Month > 12 {
		return ErrInvalidDate
	}
	return nil
}

// Previous returns the immediately preceding period, rolling back to
// December of the prior year at a year boundary.
func (p Period) Previous() Period {
	if p.Month == 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Next returns the immediately following period, rolling over to January
// of the next year at a year boundary.
func (p Period) Next() Period {
	if p.Month == 12 {
		return Period{Year: p.Year + 1, Month: 1}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// DaysIn returns the number of days in the period's month.
func (p Period) DaysIn() int {
	return time.Date(p.Year, time.Month(p.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay returns day limited to the last valid day of the period's month.
func (p Period) ClampDay(day int) int {
	if last := p.DaysIn(); day > last {
		return last
	}
	return day
}

// Contains reports whether d falls within the period.
func (p Period) Contains(d Date) bool {
	return d.Year() == p.Year && d.Month() == p.Month
}

func (p Period) String() string {
	return NewDate(p.Year, p.Month, 1).Format("2006-01")
}

// Label returns the kind's free-text label field: Source for income,
// Description for expenses and bills.
func (t Transaction) Label() string {
	if t.Kind == KindIncome {
		return t.Source
	}
	return t.Description
}

// Validate checks the shared invariants and the kind-specific field shape.
func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	switch t.Kind {
	case KindIncome:
		if strings.TrimSpace(t.Source) == "" {
			return ErrEmptySource
		}
	case KindExpense:
		if strings.TrimSpace(t.Description) == "" {
			return ErrEmptyDescription
		}
		if strings.TrimSpace(t.Category) == "" {
			return ErrEmptyCategory
		}
	case KindBill:
		if strings.TrimSpace(t.Description) == "" {
			return ErrEmptyDescription
		}
	}
	return nil
}
