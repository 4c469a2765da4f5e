// Package backend selects and constructs the configured transaction store.
package backend

import (
	"context"

	fbauth "firebase.google.com/go/v4/auth"

	"mitcash/internal/store"
)

// Type identifies a store implementation.
type Type string

const (
	Memory    Type = "memory"
	SQLite    Type = "sqlite"
	Firestore Type = "firestore"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite, Firestore:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{Memory, SQLite, Firestore}
}

// CleanupFunc releases resources held by a store.
type CleanupFunc func() error

// Result bundles the constructed store with its cleanup function and, for
// backends that carry one, a Firebase token verifier for the sign-in gate.
type Result struct {
	Store    store.Store
	Cleanup  CleanupFunc
	Verifier *fbauth.Client
}

// Config holds the per-backend settings needed to build a store.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// Firestore specific
	FirestoreProjectID      string
	FirestoreCredentialFile string
}

// Validate checks that the settings the selected backend needs are present.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return invalidTypeError(c.Type)
	}

	switch c.Type {
	case SQLite:
		if c.SQLiteDBPath == "" {
			return errSQLitePathRequired
		}
	case Firestore:
		if c.FirestoreProjectID == "" {
			return errProjectIDRequired
		}
	case Memory:
		// Nothing to validate.
	}
	return nil
}

// Factory builds stores from backend configuration.
type Factory interface {
	CreateStore(ctx context.Context, cfg Config) (*Result, error)
}
