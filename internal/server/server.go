// Package server is the composition root: it wires the database,
// repositories, services, handlers, and middleware together and owns the
// HTTP server lifecycle.
//
// DEPENDENCY FLOW:
//
//	main.go loads config → server.New builds:
//	  sqlite.DB → repos → services → handlers → routes
//	  identity.Provider → auth middleware + auth handler
//
// Everything is constructed once here and injected downward; no package
// below this one reaches for globals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ymatsui/memoboard/internal/handler"
	"github.com/ymatsui/memoboard/internal/identity"
	"github.com/ymatsui/memoboard/internal/metrics"
	"github.com/ymatsui/memoboard/internal/middleware"
	sqliteRepo "github.com/ymatsui/memoboard/internal/repository/sqlite"
	"github.com/ymatsui/memoboard/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port           int
	DBPath         string
	Identity       identity.Config
	AllowedOrigins []string
}

// Server owns the router and the process-lifetime resources (the database
// pool), which it closes on graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with the whole dependency graph assembled.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	provider, err := identity.NewProvider(cfg.Identity)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring identity provider: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	s.setupRoutes(provider)
	return s, nil
}

// setupRoutes wires middleware, handlers, and the route table.
//
// ROUTE STRUCTURE:
//
//	GET    /healthz                  → liveness
//	GET    /metrics                  → prometheus
//	GET    /auth/login               → redirect to identity provider (when configured)
//	GET    /auth/callback            → OAuth code exchange, session cookie
//	POST   /auth/logout              → provider sign-out + clear cookie
//	GET    /api/me                   → caller's account (bootstrap find-or-create)   [auth]
//	       /api/users...             → user CRUD (public per product contract)
//	GET    /api/posts, /posts/{id}   → public reads
//	POST/PUT/DELETE /api/posts...    → owner-gated mutations                         [auth]
//	GET    /api/memos                → public list
//	GET    /api/memos/{id}           → owner-gated read                              [auth]
//	POST/PUT/DELETE /api/memos...    → owner-gated mutations                         [auth]
func (s *Server) setupRoutes(provider *identity.Provider) {
	collector := metrics.NewCollector()

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(collector.Middleware)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	s.router.Handle("/metrics", collector.Handler())

	userService := service.NewUserService(sqliteRepo.NewUserRepo(s.db), s.logger)
	postService := service.NewPostService(sqliteRepo.NewPostRepo(s.db), sqliteRepo.NewUserRepo(s.db), s.logger)
	memoService := service.NewMemoService(sqliteRepo.NewMemoRepo(s.db), sqliteRepo.NewUserRepo(s.db), s.logger)

	userHandler := handler.NewUserHandler(userService, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)
	memoHandler := handler.NewMemoHandler(memoService, s.logger)
	authHandler := handler.NewAuthHandler(provider, userService, s.logger)

	// Login redirect flow only exists when client credentials are set;
	// token verification and logout work either way.
	if provider.LoginEnabled() {
		s.router.Get("/auth/login", authHandler.HandleLogin)
		s.router.Get("/auth/callback", authHandler.HandleCallback)
	} else {
		s.logger.Warn("identity client credentials not set — /auth/login flow disabled")
	}
	s.router.Post("/auth/logout", authHandler.HandleLogout)

	s.router.Route("/api", func(r chi.Router) {
		// Public routes.
		r.Get("/users", userHandler.HandleList)
		r.Get("/users/{id}", userHandler.HandleGetByID)
		r.Post("/users", userHandler.HandleCreate)
		r.Put("/users/{id}", userHandler.HandleUpdate)
		r.Delete("/users/{id}", userHandler.HandleDelete)

		r.Get("/posts", postHandler.HandleList)
		r.Get("/posts/{id}", postHandler.HandleGetByID)
		r.Get("/memos", memoHandler.HandleList)

		// Authenticated routes.
		r.Group(func(r chi.Router) {
			r.Use(identity.RequireAuth(provider))

			r.Get("/me", authHandler.HandleMe)

			r.Post("/posts", postHandler.HandleCreate)
			r.Put("/posts/{id}", postHandler.HandleUpdate)
			r.Delete("/posts/{id}", postHandler.HandleDelete)

			r.Get("/memos/{id}", memoHandler.HandleGetByID)
			r.Post("/memos", memoHandler.HandleCreate)
			r.Put("/memos/{id}", memoHandler.HandleUpdate)
			r.Delete("/memos/{id}", memoHandler.HandleDelete)
		})
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30s,
// close the database pool.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// Router exposes the configured router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
