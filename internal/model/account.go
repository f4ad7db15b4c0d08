package model

import "time"

// Account is a registered user. TokenHash holds the bcrypt hash of the
// account's API token; the plaintext is returned once at issuance and
// never stored.
type Account struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	TokenHash       *string    `json:"-"`
	TokenExpiration *time.Time `json:"token_expiration,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Email is a verified address owned by an account. Addresses are unique
// across the system and serve as the join key between an identity
// assertion and an account.
type Email struct {
	ID        int64     `json:"id"`
	Address   string    `json:"address"`
	AccountID int64     `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
}
