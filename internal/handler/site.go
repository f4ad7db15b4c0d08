package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mlowell/gatehouse/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type SiteHandler struct {
	cookies *session.Manager
}

func NewSiteHandler(cookies *session.Manager) *SiteHandler {
	return &SiteHandler{cookies: cookies}
}

// Index reports service status and, for signed-in callers, who they are.
func (h *SiteHandler) Index(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"service": "gatehouse",
		"status":  "ok",
	}
	if p, ok := h.cookies.Read(r); ok {
		body["user_name"] = p.UserName
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *SiteHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
}
