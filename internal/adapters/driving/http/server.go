package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driving"
	"github.com/nyaya-labs/nyaya-core/internal/runtime"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// ExplainerFactory builds a generative explainer from settings. Returns
// nil without error when the settings do not describe a usable explainer.
type ExplainerFactory func(settings *domain.ExplainerSettings) (driven.Explainer, error)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	analysisService  driving.AnalysisService
	knowledgeService driving.KnowledgeService
	auditService     driving.AuditService

	// Runtime collaborators
	services         *runtime.Services
	explainerFactory ExplainerFactory
	tokenAdapter     driven.TokenAdapter

	// Infrastructure
	taskQueue   driven.TaskQueue // can be nil when running without a queue
	db          Pinger           // PostgreSQL health check
	redisClient Pinger           // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	analysisService driving.AnalysisService,
	knowledgeService driving.KnowledgeService,
	auditService driving.AuditService,
	services *runtime.Services,
	explainerFactory ExplainerFactory,
	tokenAdapter driven.TokenAdapter,
	taskQueue driven.TaskQueue, // can be nil
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	s := &Server{
		router:           http.NewServeMux(),
		version:          cfg.Version,
		analysisService:  analysisService,
		knowledgeService: knowledgeService,
		auditService:     auditService,
		services:         services,
		explainerFactory: explainerFactory,
		tokenAdapter:     tokenAdapter,
		taskQueue:        taskQueue,
		db:               db,
		redisClient:      redisClient,
	}

	s.setupRoutes()

	handler := NewRecoveryMiddleware().Handler(
		NewLoggingMiddleware().Handler(s.router))
	if len(cfg.AllowedOrigins) > 0 {
		handler = NewCORSMiddleware(cfg.AllowedOrigins).Handler(handler)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.tokenAdapter)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Analysis endpoints
	s.router.Handle("POST /api/v1/analyses",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleAnalyze)))
	s.router.Handle("POST /api/v1/analyses/async",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleEnqueueAnalysis)))
	s.router.Handle("GET /api/v1/analyses",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListAnalyses)))
	s.router.Handle("GET /api/v1/analyses/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetAnalysis)))
	s.router.Handle("GET /api/v1/analyses/{id}/duplicates",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetDuplicates)))

	// Task endpoints
	s.router.Handle("GET /api/v1/tasks/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetTask)))
	s.router.Handle("DELETE /api/v1/tasks/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleCancelTask)))

	// Knowledge base endpoints
	s.router.Handle("GET /api/v1/kb",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetKB)))
	s.router.Handle("POST /api/v1/kb/reload",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleReloadKB)))
	s.router.Handle("GET /api/v1/patterns",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListPatterns)))

	// Explainer settings endpoints
	s.router.Handle("GET /api/v1/settings/explainer",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetExplainerStatus)))
	s.router.Handle("PUT /api/v1/settings/explainer",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleUpdateExplainer)))
	s.router.Handle("DELETE /api/v1/settings/explainer",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleRemoveExplainer)))

	// Stats endpoint
	s.router.Handle("GET /api/v1/stats",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetStats)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
