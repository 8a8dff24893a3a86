// Package server exposes articles, digests and semantic search over HTTP
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"newsdesk/internal/config"
	"newsdesk/internal/core"
	"newsdesk/internal/digest"
	"newsdesk/internal/enrich"
	"newsdesk/internal/ingest"
	"newsdesk/internal/logger"
	"newsdesk/internal/persistence"
	"newsdesk/internal/search"
	"newsdesk/internal/throttle"
	"newsdesk/internal/vectorstore"
)

// Ingester runs one fetch-and-persist cycle
type Ingester interface {
	Run(ctx context.Context) (ingest.RunResult, error)
}

// Enricher fills in summaries and embeddings for up to limit articles
type Enricher interface {
	Run(ctx context.Context, limit int) (enrich.Report, error)
}

// Digests creates and retrieves daily digests
type Digests interface {
	Create(ctx context.Context, date string) (*digest.Result, error)
	Get(ctx context.Context, date string) (*core.Digest, error)
	Delete(ctx context.Context, date string) error
}

// Searcher answers semantic queries
type Searcher interface {
	Search(ctx context.Context, query string, opts search.Options) ([]vectorstore.SearchResult, error)
}

// Deps are the collaborators behind the HTTP routes
type Deps struct {
	DB       persistence.Database
	Sources  []core.Source
	Ingester Ingester
	Enricher Enricher
	Digests  Digests
	Searcher Searcher
	Vectors  vectorstore.VectorStore
	Logger   *slog.Logger
}

type limiters struct {
	read   *throttle.ClientLimiter
	search *throttle.ClientLimiter
	fetch  *throttle.ClientLimiter
	enrich *throttle.ClientLimiter
	digest *throttle.ClientLimiter
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	deps       Deps
	config     config.Server
	search     config.Search
	batchLimit int
	limiters   limiters
	log        *slog.Logger
}

// New creates a new HTTP server instance
func New(cfg *config.Config, deps Deps) *Server {
	log := deps.Logger
	if log == nil {
		log = logger.Get()
	}

	limits := cfg.Server.RateLimits
	s := &Server{
		router:     chi.NewRouter(),
		deps:       deps,
		config:     cfg.Server,
		search:     cfg.Search,
		batchLimit: cfg.Enrichment.BatchLimit,
		limiters: limiters{
			read:   throttle.PerMinute(limits.Read),
			search: throttle.PerMinute(limits.Search),
			fetch:  throttle.PerMinute(limits.Fetch),
			enrich: throttle.PerMinute(limits.Enrich),
			digest: throttle.PerMinute(limits.Digest),
		},
		log: log,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      s.router,
		ReadTimeout:  config.Duration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.Duration(cfg.Server.WriteTimeout, 120*time.Second),
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(config.Duration(s.config.RequestTimeout, 120*time.Second)))
	s.router.Use(securityHeaders)

	if len(s.config.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300, // Maximum value not ignored by any major browsers
		}))
	}
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleRoot)
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit("read", s.limiters.read))
			r.Get("/articles", s.handleListArticles)
			r.Get("/sources", s.handleListSources)
			r.Get("/digest/{date}", s.handleGetDigest)
			r.Get("/stats", s.handleStats)
		})

		r.With(s.rateLimit("search", s.limiters.search)).Post("/search", s.handleSearch)
		r.With(s.rateLimit("fetch", s.limiters.fetch)).Post("/fetch-news", s.handleFetchNews)
		r.With(s.rateLimit("enrich", s.limiters.enrich)).Post("/generate-summaries", s.handleGenerateSummaries)

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit("digest", s.limiters.digest))
			r.Post("/create-digest", s.handleCreateDigest)
			r.Delete("/digest/{date}", s.handleDeleteDigest)
		})
	})

	if dir := s.config.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			fs := http.StripPrefix("/static/", http.FileServer(http.Dir(dir)))
			s.router.With(cacheStaticAssets).Get("/static/*", fs.ServeHTTP)
		} else {
			s.log.Warn("Static directory not found, static files disabled", "dir", dir)
		}
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.httpServer.ReadTimeout,
		"write_timeout", s.httpServer.WriteTimeout,
		"cors_origins", s.config.CORSOrigins,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
