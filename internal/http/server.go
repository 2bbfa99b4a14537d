// Package http exposes the JSON API under /api/v1.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fintrack/internal/auth"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

// Pinger reports storage health for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	JWTSecret      []byte
	RequestTimeout time.Duration
	Logger         *applog.Logger

	// RateLimit is the per-IP request budget per minute.
	RateLimit int

	// UserCacheTTL enables caching of authenticated users when positive.
	UserCacheTTL time.Duration
}

type Server struct {
	http.Server
	svc         *services.Services
	health      Pinger
	rateLimiter *rateLimiter
	metrics     *securityMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *services.Services, health Pinger, opts Options) *Server {
	if opts.RateLimit <= 0 {
		opts.RateLimit = 60
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}

	metrics := &securityMetrics{}
	s := &Server{
		svc:         svc,
		health:      health,
		metrics:     metrics,
		rateLimiter: newRateLimiter(opts.RateLimit, metrics),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(echoRequestID)
	r.Use(applog.Middleware(opts.Logger))
	r.Use(applog.RequestIDMiddleware(requestID))
	r.Use(applog.AccessLog(extractClientIP))
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.Get("/healthz", s.handleHealth)

	var users auth.UserLookup = svc.Users
	if opts.UserCacheTTL > 0 {
		users = auth.NewCachedLookup(svc.Users, 1024, opts.UserCacheTTL)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.rateLimiter.middleware)
		r.Use(auth.Middleware(opts.JWTSecret, users))

		r.Get("/me", s.handleMe)

		r.Route("/wallets", func(r chi.Router) {
			r.Get("/", s.handleListWallets)
			r.Post("/", s.handleCreateWallet)
			r.Get("/{id}", s.handleGetWallet)
			r.Patch("/{id}", s.handleUpdateWallet)
			r.Delete("/{id}", s.handleDeleteWallet)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Get("/{id}", s.handleGetCategory)
			r.Patch("/{id}", s.handleUpdateCategory)
			r.Delete("/{id}", s.handleDeleteCategory)
		})
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Get("/{id}", s.handleGetTransaction)
			r.Patch("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})
		r.Route("/transfers", func(r chi.Router) {
			r.Get("/", s.handleListTransfers)
			r.Post("/", s.handleCreateTransfer)
			r.Get("/{id}", s.handleGetTransfer)
			r.Patch("/{id}", s.handleUpdateTransfer)
			r.Delete("/{id}", s.handleDeleteTransfer)
		})
		r.Route("/recurring-transactions", func(r chi.Router) {
			r.Get("/", s.handleListRecurring)
			r.Post("/", s.handleCreateRecurring)
			r.Get("/{id}", s.handleGetRecurring)
			r.Patch("/{id}", s.handleUpdateRecurring)
			r.Delete("/{id}", s.handleDeleteRecurring)
		})
		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", s.handleListBudgets)
			r.Post("/", s.handleCreateBudget)
			r.Get("/{id}", s.handleGetBudget)
			r.Patch("/{id}", s.handleUpdateBudget)
			r.Delete("/{id}", s.handleDeleteBudget)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := s.svc.Users.Get(r.Context(), actor.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
