package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	fsstore "mitcash/internal/store/firestore"
	"mitcash/internal/store/memory"
	"mitcash/internal/store/sqlite"
)

var (
	errSQLitePathRequired = errors.New("sqlite database path is required for sqlite backend")
	errProjectIDRequired  = errors.New("firestore project ID is required for firestore backend")
)

func invalidTypeError(t Type) error {
	return fmt.Errorf("invalid backend type: %q (valid: %v)", t, Types())
}

// DefaultFactory builds stores from configuration.
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateStore(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case SQLite:
		return f.createSQLite(cfg)
	case Firestore:
		return f.createFirestore(ctx, cfg)
	case Memory:
		return f.createMemory()
	default:
		return nil, invalidTypeError(cfg.Type)
	}
}

func (f *DefaultFactory) createSQLite(cfg Config) (*Result, error) {
	s, err := sqlite.New(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite store: %w", err)
	}

	f.logger.Info("Initialized SQLite store", "db_path", cfg.SQLiteDBPath)

	return &Result{Store: s, Cleanup: s.Close}, nil
}

func (f *DefaultFactory) createFirestore(ctx context.Context, cfg Config) (*Result, error) {
	s, err := fsstore.New(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialFile)
	if err != nil {
		return nil, fmt.Errorf("initialize firestore store: %w", err)
	}

	f.logger.Info("Initialized Firestore store", "project_id", cfg.FirestoreProjectID)

	return &Result{Store: s, Cleanup: s.Close, Verifier: s.Auth()}, nil
}

func (f *DefaultFactory) createMemory() (*Result, error) {
	f.logger.Info("Initialized in-memory store")
	return &Result{Store: memory.New()}, nil
}
