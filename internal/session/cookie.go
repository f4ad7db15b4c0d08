// Package session manages the signed "user" cookie that represents an
// authenticated browser session.
package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the session cookie set on login. The cookie is httponly
// so page-level script can never read or lift it.
const CookieName = "user"

// Payload is the signed cookie's content.
type Payload struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
}

type claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
}

// Manager signs, reads, and clears the session cookie. The secure flag
// follows deployment configuration: TLS-terminated deployments must set
// it, plain-HTTP ones must not or browsers drop the cookie.
type Manager struct {
	key    []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewManager(key []byte, ttl time.Duration, secure bool) *Manager {
	return &Manager{key: key, ttl: ttl, secure: secure, now: time.Now}
}

// Establish writes a signed session cookie carrying the payload.
func (m *Manager) Establish(w http.ResponseWriter, p Payload) error {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		UserID:   p.UserID,
		UserName: p.UserName,
	})
	signed, err := token.SignedString(m.key)
	if err != nil {
		return fmt.Errorf("sign session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
	})
	return nil
}

// Read returns the payload of a present, signature-valid, unexpired
// cookie. Anything else reports false; anonymous requests are routine,
// not errors.
func (m *Manager) Read(r *http.Request) (Payload, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return Payload{}, false
	}

	var cl claims
	token, err := jwt.ParseWithClaims(cookie.Value, &cl,
		func(t *jwt.Token) (any, error) { return m.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return Payload{}, false
	}
	return Payload{UserID: cl.UserID, UserName: cl.UserName}, true
}

// Clear expires the session cookie. Idempotent when no cookie is set.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
	})
}
