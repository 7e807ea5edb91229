package grpc

import (
	"context"
	"fmt"
	"net"

	"github.com/aescanero/devops-info/internal/application/health"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health-checked service name
const ServiceName = "devops.info.v1.Info"

// Server represents the gRPC health server
type Server struct {
	server *grpc.Server
	health *grpchealth.Server
	addr   string
	logger *zap.Logger
}

// Config holds gRPC server configuration
type Config struct {
	Addr   string
	Logger *zap.Logger
}

// NewServer creates a new gRPC server exposing grpc.health.v1.Health.
// Both the overall and per-service status start as NOT_SERVING.
func NewServer(cfg *Config) *Server {
	grpcServer := grpc.NewServer()
	healthServer := grpchealth.NewServer()

	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	s := &Server{
		server: grpcServer,
		health: healthServer,
		addr:   cfg.Addr,
		logger: cfg.Logger,
	}
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)

	return s
}

// OnStateChange mirrors the service lifecycle into the health service
func (s *Server) OnStateChange(state health.State) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if state == health.StateServing {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.setStatus(status)

	s.logger.Debug("gRPC health status updated",
		zap.String("state", string(state)),
		zap.String("status", status.String()))
}

func (s *Server) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Listen binds the configured address
func (s *Server) Listen() (net.Listener, error) {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to create listener: %w", err)
	}
	return listener, nil
}

// Start listens on the configured address and serves until shut down
func (s *Server) Start() error {
	listener, err := s.Listen()
	if err != nil {
		return err
	}

	return s.Serve(listener)
}

// Serve serves gRPC on an existing listener
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("starting gRPC server", zap.String("addr", listener.Addr().String()))

	if err := s.server.Serve(listener); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("failed to serve gRPC: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server, forcing a stop if ctx expires first
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down gRPC server")

	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.server.Stop()
		<-done
		s.logger.Warn("gRPC server forced to stop", zap.Error(ctx.Err()))
	}

	s.logger.Info("gRPC server shut down complete")
	return nil
}
