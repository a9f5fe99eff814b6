// Package server exposes analysis runs over HTTP: triggering new runs,
// browsing selections, graphs, and concepts, and managing artifact
// staleness.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"codelens/internal/conceptindex"
	"codelens/internal/config"
	"codelens/internal/enrich"
	"codelens/internal/snapshot"
	"codelens/internal/trace"
)

// Server serves the comprehension API.
type Server struct {
	cfg      *config.Config
	store    *snapshot.Store
	concepts *conceptindex.Index // nil when no embedder is configured
	oracle   enrich.Oracle       // nil disables intent enrichment
	hub      *Hub

	router     chi.Router
	httpServer *http.Server

	mu      sync.Mutex
	indexes map[string]*trace.Index // run ID → live traceability index
}

// New creates a server. concepts and oracle may be nil.
func New(cfg *config.Config, store *snapshot.Store, concepts *conceptindex.Index, oracle enrich.Oracle) *Server {
	s := &Server{
		cfg:      cfg,
		store:    store,
		concepts: concepts,
		oracle:   oracle,
		hub:      NewHub(),
		indexes:  make(map[string]*trace.Index),
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.Server.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.registerRoutes(r)
	r.Get("/ws/progress", s.handleProgressSocket)

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("codelens server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// indexFor returns the live traceability index for a run, rebuilding it
// from the persisted snapshot on first access.
func (s *Server) indexFor(ctx context.Context, runID string) (*trace.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ix, ok := s.indexes[runID]; ok {
		return ix, nil
	}
	run, err := s.store.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	ix := run.Index()
	s.indexes[runID] = ix
	return ix, nil
}

// persistIndex writes a run's current index state back to the store.
func (s *Server) persistIndex(ctx context.Context, runID string, ix *trace.Index) {
	if err := s.store.UpdateTrace(ctx, runID, ix.Export()); err != nil {
		log.Printf("server: persisting trace index for run %s: %v", runID, err)
	}
}
