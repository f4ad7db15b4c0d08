package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/mlowell/gatehouse/internal/config"
	"github.com/mlowell/gatehouse/internal/handler"
	"github.com/mlowell/gatehouse/internal/middleware"
	"github.com/mlowell/gatehouse/internal/session"
	"github.com/mlowell/gatehouse/internal/store"
	"github.com/mlowell/gatehouse/internal/token"
	"github.com/mlowell/gatehouse/internal/verifier"
)

type Server struct {
	db          *sql.DB
	authH       *handler.AuthHandler
	siteH       *handler.SiteHandler
	debugH      *handler.DebugHandler
	cookies     *session.Manager
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) *Server {
	accounts := store.NewAccountStore(db)
	cookies := session.NewManager([]byte(cfg.CookieKey), cfg.CookieTTL, cfg.HTTPS)
	verifierClient := verifier.NewClient(cfg.VerifierURL)
	tokens := token.NewService(accounts)

	return &Server{
		db:          db,
		authH:       handler.NewAuthHandler(accounts, verifierClient, cookies, tokens, logger.With("component", "auth")),
		siteH:       handler.NewSiteHandler(cookies),
		debugH:      handler.NewDebugHandler(accounts, cookies, logger.With("component", "debug")),
		cookies:     cookies,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	mux.HandleFunc("POST /logout", s.authH.Logout)
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /{$}", s.siteH.Index)
	mux.HandleFunc("/", s.siteH.NotFound)

	// Token issuance requires a valid session
	requireAuth := middleware.RequireAuth(s.cookies)
	mux.Handle("GET /token", requireAuth(http.HandlerFunc(s.authH.Token)))

	// No-op outside debug builds
	s.debugH.Register(mux)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
