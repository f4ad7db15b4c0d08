// Package token issues and verifies long-lived API bearer tokens. Only a
// bcrypt hash is stored; the plaintext leaves Issue exactly once.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mlowell/gatehouse/internal/model"
	"github.com/mlowell/gatehouse/internal/store"
)

// Lifetime is how long an issued token stays valid.
const Lifetime = 60 * 24 * time.Hour

// ErrInvalidToken rejects a candidate that is missing, expired, or wrong.
// One sentinel covers all three so callers cannot tell an expired token
// from a bad one.
var ErrInvalidToken = errors.New("invalid token")

type Service struct {
	accounts *store.AccountStore
	now      func() time.Time
}

func NewService(accounts *store.AccountStore) *Service {
	return &Service{accounts: accounts, now: time.Now}
}

// generate returns a fresh alphanumeric bearer token: two UUIDv4 strings
// with hyphens stripped, 64 hex characters in total.
func generate() string {
	a := strings.ReplaceAll(uuid.NewString(), "-", "")
	b := strings.ReplaceAll(uuid.NewString(), "-", "")
	return a + b
}

// Issue generates a new token for the account, persists its bcrypt hash
// and expiration in one atomic update, and returns the plaintext. The
// plaintext is not recoverable after this call; any previously issued
// token is invalidated.
func (s *Service) Issue(account *model.Account) (string, time.Time, error) {
	plaintext := generate()
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("hash token: %w", err)
	}

	expiresOn := s.now().UTC().Add(Lifetime)
	if err := s.accounts.SetToken(account.ID, string(hash), expiresOn); err != nil {
		return "", time.Time{}, err
	}
	return plaintext, expiresOn, nil
}

// Verify checks a candidate token against the account's stored hash and
// expiration. The bcrypt comparison is constant time over the candidate.
func (s *Service) Verify(account *model.Account, candidate string) error {
	if account.TokenHash == nil || account.TokenExpiration == nil {
		return ErrInvalidToken
	}
	if !account.TokenExpiration.After(s.now()) {
		return ErrInvalidToken
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*account.TokenHash), []byte(candidate)); err != nil {
		return ErrInvalidToken
	}
	return nil
}
