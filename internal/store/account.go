package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mlowell/gatehouse/internal/model"
)

// ErrAmbiguousEmail reports that one address resolved to more than one
// account. The schema forbids this, so it signals a data integrity defect
// rather than a normal lookup miss, and callers must not pick a row.
var ErrAmbiguousEmail = errors.New("email address matches multiple accounts")

type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

func scanAccount(scanner interface{ Scan(...any) error }) (*model.Account, error) {
	var a model.Account
	var tokenHash sql.NullString
	var tokenExp sql.NullTime
	err := scanner.Scan(&a.ID, &a.Name, &tokenHash, &tokenExp, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if tokenHash.Valid {
		a.TokenHash = &tokenHash.String
	}
	if tokenExp.Valid {
		a.TokenExpiration = &tokenExp.Time
	}
	return &a, nil
}

const accountCols = `id, name, token_hash, token_expiration, created_at, updated_at`

func (s *AccountStore) Create(name string) (*model.Account, error) {
	result, err := s.db.Exec(`INSERT INTO accounts (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *AccountStore) GetByID(id int64) (*model.Account, error) {
	row := s.db.QueryRow(`SELECT `+accountCols+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// GetByEmail resolves the account owning the given verified address.
// Zero matches returns (nil, nil); more than one returns ErrAmbiguousEmail.
func (s *AccountStore) GetByEmail(address string) (*model.Account, error) {
	rows, err := s.db.Query(
		`SELECT a.id, a.name, a.token_hash, a.token_expiration, a.created_at, a.updated_at
		 FROM accounts a JOIN emails e ON e.account_id = a.id
		 WHERE e.address = ?`,
		address,
	)
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	defer rows.Close()

	var account *model.Account
	for rows.Next() {
		if account != nil {
			return nil, ErrAmbiguousEmail
		}
		account, err = scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account by email: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts by email: %w", err)
	}
	return account, nil
}

// AddEmail attaches an address to an account. Fails on a duplicate
// address anywhere in the system.
func (s *AccountStore) AddEmail(accountID int64, address string) (*model.Email, error) {
	result, err := s.db.Exec(
		`INSERT INTO emails (address, account_id) VALUES (?, ?)`,
		address, accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert email: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(
		`SELECT id, address, account_id, created_at FROM emails WHERE id = ?`, id,
	)
	var e model.Email
	if err := row.Scan(&e.ID, &e.Address, &e.AccountID, &e.CreatedAt); err != nil {
		return nil, fmt.Errorf("get email: %w", err)
	}
	return &e, nil
}

// SetToken replaces the account's token hash and expiration in one update,
// so the pair can never be observed half-written. Any previously stored
// token hash is overwritten.
func (s *AccountStore) SetToken(accountID int64, hash string, expiration time.Time) error {
	result, err := s.db.Exec(
		`UPDATE accounts SET token_hash = ?, token_expiration = ?, updated_at = datetime('now') WHERE id = ?`,
		hash, expiration, accountID,
	)
	if err != nil {
		return fmt.Errorf("set token: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("set token: account %d not found", accountID)
	}
	return nil
}

func (s *AccountStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}
