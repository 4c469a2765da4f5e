// Package firestore implements the transaction store on Cloud Firestore,
// with one collection per transaction kind. Documents keep amounts as
// decimal dollars and dates as YYYY-MM-DD strings, matching the layout
// the web dashboard reads directly.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"mitcash/internal/core"
	"mitcash/internal/store"
)

var ErrNotFound = errors.New("transaction not found")

type Store struct {
	client *firestore.Client
	auth   *fbauth.Client
}

// New initializes a Firebase app and returns a Firestore-backed store.
// credentialsFile may be empty, in which case application default
// credentials are used.
func New(ctx context.Context, projectID, credentialsFile string) (*Store, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize firestore client: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("initialize auth client: %w", err)
	}

	return &Store{client: client, auth: authClient}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Auth exposes the Firebase auth client for ID token verification.
func (s *Store) Auth() *fbauth.Client {
	return s.auth
}

func (s *Store) FetchByPeriod(ctx context.Context, kind core.Kind, year, month int) store.FetchResult {
	p := core.Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		slog.WarnContext(ctx, "Invalid period for fetch", "year", year, "month", month, "error", err)
		return store.Failure()
	}

	start := fmt.Sprintf("%04d-%02d-01", year, month)
	next := p.Next()
	end := fmt.Sprintf("%04d-%02d-01", next.Year, next.Month)

	iter := s.client.Collection(string(kind)).
		Where("date", ">=", start).
		Where("date", "<", end).
		OrderBy("date", firestore.Desc).
		Documents(ctx)

	records, err := collect(kind, iter)
	if err != nil {
		// The range query needs a composite index per collection. If it is
		// missing, fall back to a full fetch with client-side filtering.
		slog.WarnContext(ctx, "Period query failed, falling back to full fetch",
			"kind", kind, "error", err)
		all := s.FetchAll(ctx, kind)
		if !all.Success {
			return store.Failure()
		}
		return store.FetchResult{Success: true, Records: store.FilterByPeriod(all.Records, year, month)}
	}
	return store.FetchResult{Success: true, Records: records}
}

func (s *Store) FetchAll(ctx context.Context, kind core.Kind) store.FetchResult {
	iter := s.client.Collection(string(kind)).
		OrderBy("date", firestore.Desc).
		Documents(ctx)

	records, err := collect(kind, iter)
	if err != nil {
		slog.ErrorContext(ctx, "Fetch all failed", "kind", kind, "error", err)
		return store.Failure()
	}
	return store.FetchResult{Success: true, Records: records}
}

func (s *Store) Create(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}

	data := docData(tx)
	data["createdAt"] = firestore.ServerTimestamp
	data["updatedAt"] = firestore.ServerTimestamp

	ref, _, err := s.client.Collection(string(tx.Kind)).Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", ref.ID,
		"kind", tx.Kind,
		"label", tx.Label(),
		"amount_cents", tx.Amount.Cents,
		"date", tx.Date.String())

	return ref.ID, nil
}

func (s *Store) Update(ctx context.Context, kind core.Kind, id string, tx core.Transaction) error {
	tx.Kind = kind
	if err := tx.Validate(); err != nil {
		return err
	}

	data := docData(tx)
	data["updatedAt"] = firestore.ServerTimestamp

	ref := s.client.Collection(string(kind)).Doc(id)
	if _, err := ref.Get(ctx); err != nil {
		return ErrNotFound
	}
	if _, err := ref.Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, kind core.Kind, id string) error {
	ref := s.client.Collection(string(kind)).Doc(id)
	if _, err := ref.Get(ctx); err != nil {
		return ErrNotFound
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// document mirrors the dashboard's Firestore schema. Amounts are stored as
// decimal dollars there.
type document struct {
	Date        string    `firestore:"date"`
	Amount      float64   `firestore:"amount"`
	Source      string    `firestore:"source"`
	Description string    `firestore:"description"`
	Category    string    `firestore:"category"`
	Notes       string    `firestore:"notes"`
	Tags        []string  `firestore:"tags"`
	Recurring   bool      `firestore:"recurring"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

func docData(tx core.Transaction) map[string]any {
	return map[string]any{
		"date":        tx.Date.String(),
		"amount":      tx.Amount.Dollars(),
		"source":      tx.Source,
		"description": tx.Description,
		"category":    tx.Category,
		"notes":       tx.Notes,
		"tags":        tx.Tags,
		"recurring":   tx.Recurring,
	}
}

func collect(kind core.Kind, iter *firestore.DocumentIterator) ([]core.Transaction, error) {
	defer iter.Stop()

	var out []core.Transaction
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate documents: %w", err)
		}

		var d document
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", doc.Ref.ID, err)
		}
		tx, err := fromDocument(kind, doc.Ref.ID, d)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.Ref.ID, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

func fromDocument(kind core.Kind, id string, d document) (core.Transaction, error) {
	date, err := core.ParseDate(d.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", d.Date, err)
	}
	return core.Transaction{
		ID:          id,
		Kind:        kind,
		Date:        date,
		Amount:      core.Money{Cents: int64(math.Round(d.Amount * 100))},
		Source:      d.Source,
		Description: d.Description,
		Category:    d.Category,
		Notes:       d.Notes,
		Tags:        d.Tags,
		Recurring:   d.Recurring,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}
