// Package api provides the HTTP API for ranking task batches.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/app"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/commands"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/priority"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/validation"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

// DefaultMaxBodyBytes caps request bodies.
const DefaultMaxBodyBytes int64 = 4 << 20

// Server is the HTTP API server.
type Server struct {
	mux     *http.ServeMux
	server  *http.Server
	logger  *slog.Logger
	handler *Handler
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	CORSAllowedOrigins []string
	MaxBodyBytes       int64
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:               "0.0.0.0:8000",
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       15 * time.Second,
		IdleTimeout:        60 * time.Second,
		CORSAllowedOrigins: []string{"*"},
		MaxBodyBytes:       DefaultMaxBodyBytes,
	}
}

// Dependencies are the application services the API calls.
type Dependencies struct {
	Scorer     *priority.Scorer
	Decoder    *validation.Decoder
	Analyze    *commands.AnalyzeTasksHandler
	Suggest    *commands.SuggestTasksHandler
	Strategies *queries.ListStrategiesHandler
	ListRuns   *queries.ListRunsHandler
	GetRun     *queries.GetRunHandler
	Health     *observability.HealthRegistry
	Metrics    *observability.InMemoryMetrics
}

// DependenciesFromContainer picks the API's services out of the container.
func DependenciesFromContainer(c *app.Container) Dependencies {
	return Dependencies{
		Scorer:     c.Scorer,
		Decoder:    c.Decoder,
		Analyze:    c.AnalyzeTasksHandler,
		Suggest:    c.SuggestTasksHandler,
		Strategies: c.ListStrategiesHandler,
		ListRuns:   c.ListRunsHandler,
		GetRun:     c.GetRunHandler,
		Health:     c.Health,
		Metrics:    c.Metrics,
	}
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, deps Dependencies, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	var metrics observability.Metrics
	if deps.Metrics != nil {
		metrics = deps.Metrics
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		handler: NewHandler(deps, logger),
	}
	s.registerRoutes()

	s.server = &http.Server{
		Addr: cfg.Addr,
		Handler: chain(s.mux,
			withCORS(cfg.CORSAllowedOrigins),
			withRequestContext(),
			withAccessLog(logger, metrics),
			withBodyLimit(cfg.MaxBodyBytes),
		),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// registerRoutes sets up the API routes. Collection routes answer with and
// without the trailing slash.
func (s *Server) registerRoutes() {
	h := s.handler

	s.mux.HandleFunc("GET /health", h.Health)
	s.mux.HandleFunc("GET /metrics", h.Metrics)

	s.mux.HandleFunc("POST /api/analyze", h.Analyze)
	s.mux.HandleFunc("POST /api/analyze/{$}", h.Analyze)
	s.mux.HandleFunc("POST /api/suggest", h.Suggest)
	s.mux.HandleFunc("POST /api/suggest/{$}", h.Suggest)
	s.mux.HandleFunc("GET /api/strategies", h.ListStrategies)
	s.mux.HandleFunc("GET /api/strategies/{$}", h.ListStrategies)
	s.mux.HandleFunc("GET /api/runs", h.ListRuns)
	s.mux.HandleFunc("GET /api/runs/{$}", h.ListRuns)
	s.mux.HandleFunc("GET /api/runs/{id}", h.GetRun)
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server",
		"addr", s.server.Addr,
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}

// APIError represents an API error.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common API errors
var (
	ErrBadRequest = &APIError{
		Status:  http.StatusBadRequest,
		Code:    "bad_request",
		Message: "Invalid request",
	}
	ErrNotFound = &APIError{
		Status:  http.StatusNotFound,
		Code:    "not_found",
		Message: "Resource not found",
	}
	ErrPayloadTooLarge = &APIError{
		Status:  http.StatusRequestEntityTooLarge,
		Code:    "payload_too_large",
		Message: "Request body too large",
	}
	ErrHistoryUnavailable = &APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    "history_disabled",
		Message: "Analysis history is disabled",
	}
	ErrInternalServer = &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "Internal server error",
	}
)

func writeAPIError(w http.ResponseWriter, e *APIError) {
	writeJSON(w, e.Status, e)
}
