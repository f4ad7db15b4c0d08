package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mlowell/gatehouse/internal/auth"
	"github.com/mlowell/gatehouse/internal/session"
	"github.com/mlowell/gatehouse/internal/store"
	"github.com/mlowell/gatehouse/internal/token"
	"github.com/mlowell/gatehouse/internal/verifier"
)

type AuthHandler struct {
	accounts *store.AccountStore
	verifier *verifier.Client
	cookies  *session.Manager
	tokens   *token.Service
	logger   *slog.Logger
}

func NewAuthHandler(
	accounts *store.AccountStore,
	vc *verifier.Client,
	cookies *session.Manager,
	tokens *token.Service,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		verifier: vc,
		cookies:  cookies,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login verifies the posted identity assertion against the external
// verification service, resolves the verified e-mail to an account, and
// establishes the session cookie. The session is written only after both
// steps succeed; no failure path sets a cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	assertion := strings.TrimSpace(r.FormValue("assertion"))
	if assertion == "" {
		http.Error(w, "Assertion is required", http.StatusBadRequest)
		return
	}

	// The in-flight verifier call finishes on its own schedule even if
	// the client disconnects mid-verification.
	ctx := context.WithoutCancel(r.Context())
	result, err := h.verifier.Verify(ctx, assertion, r.Host)
	if err != nil {
		h.logger.Error("assertion verification", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if !result.Okay() {
		http.Error(w, "Failed assertion test", http.StatusBadRequest)
		return
	}

	account, err := h.accounts.GetByEmail(result.Email)
	if errors.Is(err, store.ErrAmbiguousEmail) {
		h.logger.Error("multiple accounts for one email", "email", result.Email)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if err != nil {
		h.logger.Error("account lookup", "email", result.Email, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if account == nil {
		http.Error(w,
			fmt.Sprintf("There is no account associated with the e-mail address %s", result.Email),
			http.StatusUnprocessableEntity,
		)
		return
	}

	if err := h.cookies.Establish(w, session.Payload{UserID: account.ID, UserName: account.Name}); err != nil {
		h.logger.Error("establish session", "account_id", account.ID, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": result.Email})
}

// Logout clears the session cookie. It succeeds whether or not a session
// existed; the cookie is httponly, so clearing it cannot be done from
// page script.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// Token issues a fresh API token for the authenticated account and returns
// the plaintext, shown exactly once. GETting twice resets the token: the
// previous one stops verifying.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	account, err := h.accounts.GetByID(id.UserID)
	if err != nil {
		h.logger.Error("token account lookup", "user_id", id.UserID, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if account == nil {
		// Session cookie refers to an account that no longer exists.
		h.cookies.Clear(w)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	plaintext, expiresOn, err := h.tokens.Issue(account)
	if err != nil {
		h.logger.Error("issue token", "account_id", account.ID, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token":      plaintext,
		"expires_on": expiresOn.Format(time.RFC3339),
	})
}
