//go:build !debug

package handler

import (
	"log/slog"
	"net/http"

	"github.com/mlowell/gatehouse/internal/session"
	"github.com/mlowell/gatehouse/internal/store"
)

// DebugHandler registers nothing in production builds. The bypass routes
// exist only when compiled with the debug build tag.
type DebugHandler struct{}

func NewDebugHandler(_ *store.AccountStore, _ *session.Manager, _ *slog.Logger) *DebugHandler {
	return &DebugHandler{}
}

func (h *DebugHandler) Register(_ *http.ServeMux) {}
