//go:build debug

package handler

import (
	"log/slog"
	"net/http"

	"github.com/mlowell/gatehouse/internal/session"
	"github.com/mlowell/gatehouse/internal/store"
)

// DebugHandler bypasses assertion verification for local development. It
// compiles only under the debug build tag, so production binaries cannot
// reach these routes.
type DebugHandler struct {
	accounts *store.AccountStore
	cookies  *session.Manager
	logger   *slog.Logger
}

func NewDebugHandler(accounts *store.AccountStore, cookies *session.Manager, logger *slog.Logger) *DebugHandler {
	return &DebugHandler{accounts: accounts, cookies: cookies, logger: logger}
}

func (h *DebugHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /debug/create/{address}", h.Create)
	mux.HandleFunc("GET /debug/login/{address}", h.Login)
	mux.HandleFunc("GET /debug/logout", h.Logout)
}

// Create makes an account owning the given address.
func (h *DebugHandler) Create(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")

	account, err := h.accounts.Create(address)
	if err != nil {
		h.logger.Error("debug create account", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if _, err := h.accounts.AddEmail(account.ID, address); err != nil {
		h.logger.Error("debug add email", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":    account.ID,
		"email": address,
	})
}

// Login establishes a session for an existing account without any
// assertion check.
func (h *DebugHandler) Login(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")

	account, err := h.accounts.GetByEmail(address)
	if err != nil {
		h.logger.Error("debug login lookup", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if account == nil {
		http.Error(w, "No such account", http.StatusUnprocessableEntity)
		return
	}

	if err := h.cookies.Establish(w, session.Payload{UserID: account.ID, UserName: account.Name}); err != nil {
		h.logger.Error("debug establish session", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": address})
}

func (h *DebugHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}
