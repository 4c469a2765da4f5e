// Package memory provides an in-memory transaction store for tests and the
// demo backend. Safe for concurrent use.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"mitcash/internal/core"
	"mitcash/internal/store"
)

var ErrNotFound = errors.New("transaction not found")

type Store struct {
	mu      sync.RWMutex
	records map[core.Kind][]core.Transaction
	now     func() time.Time
}

func New() *Store {
	return &Store{
		records: make(map[core.Kind][]core.Transaction),
		now:     time.Now,
	}
}

func (s *Store) FetchByPeriod(ctx context.Context, kind core.Kind, year, month int) store.FetchResult {
	all := s.FetchAll(ctx, kind)
	if !all.Success {
		return all
	}
	return store.FetchResult{Success: true, Records: store.FilterByPeriod(all.Records, year, month)}
}

func (s *Store) FetchAll(_ context.Context, kind core.Kind) store.FetchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.records[kind]
	out := make([]core.Transaction, len(src))
	copy(out, src)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return store.FetchResult{Success: true, Records: out}
}

func (s *Store) Create(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx.ID = uuid.NewString()
	now := s.now()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	s.records[tx.Kind] = append(s.records[tx.Kind], tx)
	return tx.ID, nil
}

func (s *Store) Update(_ context.Context, kind core.Kind, id string, tx core.Transaction) error {
	tx.Kind = kind
	if err := tx.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.records[kind]
	for i := range list {
		if list[i].ID == id {
			tx.ID = id
			tx.CreatedAt = list[i].CreatedAt
			tx.UpdatedAt = s.now()
			list[i] = tx
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store) Delete(_ context.Context, kind core.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.records[kind]
	for i := range list {
		if list[i].ID == id {
			s.records[kind] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
