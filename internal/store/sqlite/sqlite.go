// Package sqlite implements the transaction store on a local SQLite file
// using the modernc pure-Go driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"mitcash/internal/core"
	"mitcash/internal/store"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("transaction not found")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const selectColumns = `id, kind, date, amount_cents, source, description, category, notes, tags, recurring, created_at, updated_at`

func (s *Store) FetchByPeriod(ctx context.Context, kind core.Kind, year, month int) store.FetchResult {
	p := core.Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		slog.WarnContext(ctx, "Invalid period for fetch", "year", year, "month", month, "error", err)
		return store.Failure()
	}

	start := fmt.Sprintf("%04d-%02d-01", year, month)
	next := p.Next()
	end := fmt.Sprintf("%04d-%02d-01", next.Year, next.Month)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM transactions
		 WHERE kind = ? AND date >= ? AND date < ?
		 ORDER BY date DESC`,
		string(kind), start, end)
	if err != nil {
		// Range query failed, fall back to a full scan with client-side
		// filtering so a partial index problem does not blank the period.
		slog.WarnContext(ctx, "Period query failed, falling back to full scan",
			"kind", kind, "error", err)
		all := s.FetchAll(ctx, kind)
		if !all.Success {
			return store.Failure()
		}
		return store.FetchResult{Success: true, Records: store.FilterByPeriod(all.Records, year, month)}
	}
	defer rows.Close()

	records, err := scanTransactions(rows)
	if err != nil {
		slog.ErrorContext(ctx, "Scan transactions failed", "kind", kind, "error", err)
		return store.Failure()
	}
	return store.FetchResult{Success: true, Records: records}
}

func (s *Store) FetchAll(ctx context.Context, kind core.Kind) store.FetchResult {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM transactions WHERE kind = ? ORDER BY date DESC`,
		string(kind))
	if err != nil {
		slog.ErrorContext(ctx, "Fetch all failed", "kind", kind, "error", err)
		return store.Failure()
	}
	defer rows.Close()

	records, err := scanTransactions(rows)
	if err != nil {
		slog.ErrorContext(ctx, "Scan transactions failed", "kind", kind, "error", err)
		return store.Failure()
	}
	return store.FetchResult{Success: true, Records: records}
}

func (s *Store) Create(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	tags, err := json.Marshal(tx.Tags)
	if err != nil {
		return "", fmt.Errorf("marshal tags: %w", err)
	}
	now := time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, kind, date, amount_cents, source, description, category, notes, tags, recurring, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, string(tx.Kind), tx.Date.String(), tx.Amount.Cents,
		tx.Source, tx.Description, tx.Category, tx.Notes,
		string(tags), boolToInt(tx.Recurring), now, now)
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"kind", tx.Kind,
		"label", tx.Label(),
		"amount_cents", tx.Amount.Cents,
		"date", tx.Date.String())

	return id, nil
}

func (s *Store) Update(ctx context.Context, kind core.Kind, id string, tx core.Transaction) error {
	tx.Kind = kind
	if err := tx.Validate(); err != nil {
		return err
	}

	tags, err := json.Marshal(tx.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions
		 SET date = ?, amount_cents = ?, source = ?, description = ?, category = ?, notes = ?, tags = ?, recurring = ?, updated_at = ?
		 WHERE id = ? AND kind = ?`,
		tx.Date.String(), tx.Amount.Cents, tx.Source, tx.Description,
		tx.Category, tx.Notes, string(tags), boolToInt(tx.Recurring),
		time.Now().UTC(), id, string(kind))
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (s *Store) Delete(ctx context.Context, kind core.Kind, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND kind = ?`, id, string(kind))
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		var (
			tx        core.Transaction
			kind      string
			date      string
			tags      string
			recurring int
		)
		if err := rows.Scan(&tx.ID, &kind, &date, &tx.Amount.Cents,
			&tx.Source, &tx.Description, &tx.Category, &tx.Notes,
			&tags, &recurring, &tx.CreatedAt, &tx.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		tx.Kind = core.Kind(kind)
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", date, err)
		}
		tx.Date = d
		if err := json.Unmarshal([]byte(tags), &tx.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
		tx.Recurring = recurring != 0
		out = append(out, tx)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
