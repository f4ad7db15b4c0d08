package token

import (
	"errors"
	"testing"
	"time"

	"github.com/mlowell/gatehouse/internal/database"
	"github.com/mlowell/gatehouse/internal/model"
	"github.com/mlowell/gatehouse/internal/store"
)

func setupTokenTest(t *testing.T) (*Service, *store.AccountStore, *model.Account) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	accounts := store.NewAccountStore(db)
	account, err := accounts.Create("Alice")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return NewService(accounts), accounts, account
}

func isAlphanumeric(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		default:
			return false
		}
	}
	return true
}

func TestIssueFormat(t *testing.T) {
	svc, _, account := setupTokenTest(t)

	plaintext, _, err := svc.Issue(account)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(plaintext) != 64 {
		t.Errorf("token length = %d, want 64", len(plaintext))
	}
	if !isAlphanumeric(plaintext) {
		t.Errorf("token %q contains non-alphanumeric characters", plaintext)
	}
}

func TestIssueExpiration(t *testing.T) {
	svc, accounts, account := setupTokenTest(t)
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	_, expiresOn, err := svc.Issue(account)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	want := issuedAt.Add(60 * 24 * time.Hour)
	if !expiresOn.Equal(want) {
		t.Errorf("expires on = %v, want %v", expiresOn, want)
	}

	stored, err := accounts.GetByID(account.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if stored.TokenExpiration == nil || !stored.TokenExpiration.Equal(want) {
		t.Errorf("stored expiration = %v, want %v", stored.TokenExpiration, want)
	}
}

func TestIssueStoresOnlyHash(t *testing.T) {
	svc, accounts, account := setupTokenTest(t)

	plaintext, _, err := svc.Issue(account)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	stored, _ := accounts.GetByID(account.ID)
	if stored.TokenHash == nil {
		t.Fatal("expected stored token hash")
	}
	if *stored.TokenHash == plaintext {
		t.Error("plaintext token must never be stored")
	}
}

func TestVerify(t *testing.T) {
	svc, accounts, account := setupTokenTest(t)

	plaintext, _, err := svc.Issue(account)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	stored, _ := accounts.GetByID(account.ID)

	if err := svc.Verify(stored, plaintext); err != nil {
		t.Errorf("verify issued token: %v", err)
	}
	if err := svc.Verify(stored, "wrong-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("verify wrong token: err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyNoTokenSet(t *testing.T) {
	svc, _, account := setupTokenTest(t)

	if err := svc.Verify(account, "anything"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	svc, accounts, account := setupTokenTest(t)
	issuedAt := time.Now().UTC()
	svc.now = func() time.Time { return issuedAt }

	plaintext, _, err := svc.Issue(account)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	stored, _ := accounts.GetByID(account.ID)

	svc.now = func() time.Time { return issuedAt.Add(60*24*time.Hour + time.Minute) }
	if err := svc.Verify(stored, plaintext); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("verify past expiration: err = %v, want ErrInvalidToken", err)
	}
}

func TestReissueInvalidatesPrevious(t *testing.T) {
	svc, accounts, account := setupTokenTest(t)

	first, _, err := svc.Issue(account)
	if err != nil {
		t.Fatalf("first issue: %v", err)
	}
	second, _, err := svc.Issue(account)
	if err != nil {
		t.Fatalf("second issue: %v", err)
	}
	if first == second {
		t.Fatal("two issuances produced the same token")
	}

	stored, _ := accounts.GetByID(account.ID)
	if err := svc.Verify(stored, first); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("first token after reissue: err = %v, want ErrInvalidToken", err)
	}
	if err := svc.Verify(stored, second); err != nil {
		t.Errorf("second token: %v", err)
	}
}
