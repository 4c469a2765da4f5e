// Package auth implements the sign-in gate. Access is restricted to a single
// allowed account: any verified identity whose email does not match exactly is
// denied and signed out.
package auth

import (
	"context"
	"log/slog"
	"sync"

	fbauth "firebase.google.com/go/v4/auth"
)

// Status is the outcome of a sign-in attempt.
type Status string

const (
	// Authenticated means the identity was verified and is the allowed account.
	Authenticated Status = "authenticated"
	// Denied means verification succeeded but the account is not allowed, or
	// verification itself failed.
	Denied Status = "denied"
	// Cancelled means the user abandoned the sign-in flow before producing a
	// credential. Not an error.
	Cancelled Status = "cancelled"
)

// Result describes a completed sign-in attempt.
type Result struct {
	Status Status
	Email  string
	UID    string
}

// Identity is the currently signed-in account.
type Identity struct {
	Email string
	UID   string
}

// TokenVerifier checks an ID token and returns the decoded identity.
// *fbauth.Client satisfies this.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// Gate verifies sign-in credentials against the allow-list and tracks the
// current session. Safe for concurrent use.
type Gate struct {
	verifier TokenVerifier
	allowed  string
	logger   *slog.Logger

	mu      sync.RWMutex
	current *Identity
}

func NewGate(verifier TokenVerifier, allowedEmail string, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{verifier: verifier, allowed: allowedEmail, logger: logger}
}

// Allowed reports whether email matches the allowed account exactly.
func (g *Gate) Allowed(email string) bool {
	return email != "" && email == g.allowed
}

// SignIn verifies idToken and, if the identity is the allowed account,
// records it as the current session. An empty token means the user backed
// out of the flow and maps to Cancelled, never Denied.
func (g *Gate) SignIn(ctx context.Context, idToken string) Result {
	if idToken == "" {
		g.logger.Info("Sign-in cancelled before credential was produced")
		return Result{Status: Cancelled}
	}

	token, err := g.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		g.logger.Warn("ID token verification failed", "error", err)
		return Result{Status: Denied}
	}

	email, _ := token.Claims["email"].(string)
	if !g.Allowed(email) {
		g.logger.Warn("Sign-in denied for non-allowed account", "email", email)
		return Result{Status: Denied, Email: email, UID: token.UID}
	}

	g.mu.Lock()
	g.current = &Identity{Email: email, UID: token.UID}
	g.mu.Unlock()

	g.logger.Info("Sign-in succeeded", "email", email)
	return Result{Status: Authenticated, Email: email, UID: token.UID}
}

// CurrentIdentity returns the signed-in account, or nil when signed out.
func (g *Gate) CurrentIdentity() *Identity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.current == nil {
		return nil
	}
	id := *g.current
	return &id
}

// SignOut clears the current session. Signing out while already signed out
// is a no-op.
func (g *Gate) SignOut() {
	g.mu.Lock()
	g.current = nil
	g.mu.Unlock()
}
