package admin

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenSubject = "admin"

// Tokens issues and verifies short-lived admin session tokens (HS256).
type Tokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokens(key []byte, ttl time.Duration) *Tokens {
	return &Tokens{key: key, ttl: ttl, now: time.Now}
}

func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue returns a signed token valid for the configured TTL.
func (t *Tokens) Issue() (string, error) {
	if len(t.key) == 0 {
		return "", errors.New("admin token key is empty")
	}
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   tokenSubject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("sign admin token: %w", err)
	}
	return signed, nil
}

// Verify reports an error unless raw is an unexpired token signed with our key.
func (t *Tokens) Verify(raw string) error {
	if len(t.key) == 0 {
		return errors.New("admin token key is empty")
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(tokenSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return fmt.Errorf("verify admin token: %w", err)
	}
	return nil
}
