package middleware

import (
	"net/http"

	"github.com/mlowell/gatehouse/internal/auth"
	"github.com/mlowell/gatehouse/internal/session"
)

// RequireAuth validates the session cookie and attaches the caller's
// identity to the request context. Requests without a valid cookie get
// 401 before any handler runs.
func RequireAuth(cookies *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload, ok := cookies.Read(r)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{
				UserID:   payload.UserID,
				UserName: payload.UserName,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
