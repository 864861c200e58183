// Package admin gates access to the submissions listing behind a shared
// access code. It is a single boolean gate, not a credential system.
package admin

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/DAVIDafergan/tatpro-intake/internal/ports"
)

// ErrRejected is returned for a wrong access code.
var ErrRejected = errors.New("wrong access code")

// Gate holds the session-only login state. It is never persisted.
type Gate struct {
	checker  ports.AdminChecker
	username string
	loggedIn bool
}

func NewGate(checker ports.AdminChecker) *Gate {
	return &Gate{checker: checker}
}

// Login checks code and flips the gate open on a match. On ErrRejected or a
// checker failure the gate state is unchanged.
func (g *Gate) Login(ctx context.Context, username, code string) error {
	ok, err := g.checker.Check(ctx, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRejected
	}
	g.username = username
	g.loggedIn = true
	return nil
}

// Logout closes the gate and keeps the username for the next attempt.
func (g *Gate) Logout() { g.loggedIn = false }

func (g *Gate) LoggedIn() bool   { return g.loggedIn }
func (g *Gate) Username() string { return g.username }

// SecretChecker compares codes against a locally held secret.
type SecretChecker struct {
	secret []byte
}

func NewSecretChecker(secret string) SecretChecker {
	return SecretChecker{secret: []byte(secret)}
}

// Check never matches when no secret is configured.
func (c SecretChecker) Check(_ context.Context, code string) (bool, error) {
	return c.Match(code), nil
}

func (c SecretChecker) Match(code string) bool {
	if len(c.secret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(c.secret, []byte(code)) == 1
}
