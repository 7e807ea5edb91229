package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/aescanero/devops-info/internal/application/health"
	metrics "github.com/aescanero/devops-info/pkg/adapters/metrics/prometheus"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// AllowedMethods lists the methods every route accepts
const AllowedMethods = "GET, HEAD, OPTIONS"

// Server represents the HTTP API server
type Server struct {
	router   *gin.Engine
	server   *http.Server
	monitor  *health.Monitor
	metrics  *metrics.Collector
	gatherer prometheus.Gatherer
	logger   *zap.Logger
}

// Config holds HTTP server configuration
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSEnabled  bool

	Monitor *health.Monitor
	Metrics *metrics.Collector
	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(requestLogger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(instrument(cfg.Metrics))
	}
	if cfg.CORSEnabled {
		router.Use(corsMiddleware())
	}

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		router:   router,
		monitor:  cfg.Monitor,
		metrics:  cfg.Metrics,
		gatherer: gatherer,
		logger:   cfg.Logger,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	// Info
	s.readOnly("/name", s.handleName)
	s.readOnly("/version", s.handleVersion)

	// Health check
	s.readOnly("/health", s.handleHealth)

	// Metrics
	s.readOnly("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	// Every route accepts the same methods, so a 405 always advertises AllowedMethods
	s.router.NoMethod(func(c *gin.Context) {
		c.Header("Allow", AllowedMethods)
	})
}

// readOnly registers handler for GET and HEAD, and answers OPTIONS with Allow
func (s *Server) readOnly(path string, handler gin.HandlerFunc) {
	s.router.GET(path, handler)
	s.router.HEAD(path, handler)
	s.router.OPTIONS(path, handleOptions)
}

// Handler returns the root handler, for use with httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Listen binds the configured address
func (s *Server) Listen() (net.Listener, error) {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	return listener, nil
}

// Start binds the configured address and blocks until the server is shut down
func (s *Server) Start() error {
	listener, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Serve serves HTTP on an existing listener until the server is shut down
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("starting HTTP server", zap.String("addr", listener.Addr().String()))

	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}
