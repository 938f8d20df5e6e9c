// Package server provides the termground HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/termground/internal/config"
	"github.com/hyperjump/termground/internal/disambig"
	"github.com/hyperjump/termground/internal/engine"
	"github.com/hyperjump/termground/internal/models"
	"github.com/hyperjump/termground/internal/search"
)

// Service is the grounding backend the handlers call.
type Service interface {
	Ground(ctx context.Context, req *models.GroundRequest) (*models.GroundResponse, error)
	GroundBatch(ctx context.Context, req *models.BatchGroundRequest) ([]models.GroundResponse, error)
	Lookup(req *models.LookupRequest) ([]models.Term, error)
	Disambiguate(ctx context.Context, req *models.DisambiguateRequest) ([]models.ScoredMatch, error)
	Suggest(text string, n int) []string
	Search(ctx context.Context, q *search.Query) (*search.Response, error)
	Models() []disambig.ModelInfo
	Status() engine.Status
	Reload(ctx context.Context) error
}

// Server is the HTTP server for the termground API.
type Server struct {
	service Service
	metrics http.Handler
	config  *config.ServerConfig
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server. metrics may be nil, in which case /metrics is not mounted.
func NewServer(service Service, metrics http.Handler, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		service: service,
		metrics: metrics,
		config:  cfg,
		logger:  logger,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ground", s.handleGround)
		r.Post("/ground/batch", s.handleGroundBatch)
		r.Post("/lookup", s.handleLookup)
		r.Post("/disambiguate", s.handleDisambiguate)
		r.Get("/suggest", s.handleSuggest)
		r.Get("/search", s.handleSearch)
		r.Get("/models", s.handleModels)
		r.Get("/status", s.handleStatus)
		r.Post("/reload", s.handleReload)
	})
	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
