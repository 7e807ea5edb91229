package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/aescanero/devops-info/internal/application/health"
	"github.com/aescanero/devops-info/internal/config"
	"github.com/aescanero/devops-info/internal/info"
	metrics "github.com/aescanero/devops-info/pkg/adapters/metrics/prometheus"
	"github.com/aescanero/devops-info/pkg/api/grpc"
	"github.com/aescanero/devops-info/pkg/api/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting info service",
		zap.String("name", info.Name),
		zap.String("version", info.Version),
		zap.String("build_version", info.BuildVersion),
		zap.String("build_time", info.BuildTime))

	metricsCollector := metrics.NewCollector(prometheus.DefaultRegisterer)
	metricsCollector.SetBuildInfo(info.Name, info.Version, info.BuildVersion)

	monitor := health.NewMonitor(cfg.HealthCheckInterval, metricsCollector, logger)

	// Initialize API servers
	httpServer := http.NewServer(&http.Config{
		Addr:         cfg.GetHTTPAddr(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		CORSEnabled:  cfg.HTTP.CORSEnabled,
		Monitor:      monitor,
		Metrics:      metricsCollector,
		Logger:       logger,
	})

	var grpcServer *grpc.Server
	if cfg.GRPC.Enabled {
		grpcServer = grpc.NewServer(&grpc.Config{
			Addr:   cfg.GetGRPCAddr(),
			Logger: logger,
		})
		monitor.AddListener(grpcServer)
	}

	// Bind before reporting ready so a port conflict is fatal at startup
	listener, err := httpServer.Listen()
	if err != nil {
		logger.Fatal("failed to bind HTTP listener", zap.Error(err))
	}

	var grpcListener net.Listener
	if grpcServer != nil {
		grpcListener, err = grpcServer.Listen()
		if err != nil {
			logger.Fatal("failed to bind gRPC listener", zap.Error(err))
		}
	}

	// Start servers
	go func() {
		if err := httpServer.Serve(listener); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	if grpcServer != nil {
		go func() {
			if err := grpcServer.Serve(grpcListener); err != nil {
				logger.Fatal("gRPC server failed", zap.Error(err))
			}
		}()
	}

	monitor.MarkServing()
	monitor.Start()

	logger.Info("info service started",
		zap.String("http_addr", listener.Addr().String()),
		zap.Bool("grpc_enabled", cfg.GRPC.Enabled))

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")
	monitor.MarkDraining()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if grpcServer != nil {
		if err := grpcServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("gRPC server shutdown error", zap.Error(err))
		}
	}

	monitor.Stop()

	logger.Info("info service shut down complete")
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(parseLevel(level))
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
