package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the info service
type Config struct {
	// Server configuration
	HTTP     HTTPConfig
	GRPC     GRPCConfig
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Health monitor heartbeat
	HealthCheckInterval time.Duration `env:"HEALTH_CHECK_INTERVAL" envDefault:"30s"`

	// Timeouts
	ShutdownTimeout time.Duration `env:"TIMEOUT_SHUTDOWN" envDefault:"30s"`
}

// HTTPConfig holds HTTP listener configuration
type HTTPConfig struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"HTTP_PORT" envDefault:"5000"`

	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`

	CORSEnabled bool `env:"HTTP_CORS_ENABLED" envDefault:"false"`
}

// GRPCConfig holds gRPC health server configuration
type GRPCConfig struct {
	Enabled bool `env:"GRPC_ENABLED" envDefault:"true"`
	Port    int  `env:"GRPC_PORT" envDefault:"5001"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFromMap reads configuration from the given variables instead of
// the process environment.
func LoadFromMap(vars map[string]string) (*Config, error) {
	if vars == nil {
		vars = map[string]string{}
	}
	return load(env.Options{Environment: vars})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTP.Port)
	}
	// Hostnames are resolved by net.Listen; only reject what cannot form host:port
	if net.ParseIP(c.HTTP.Host) == nil && strings.ContainsAny(c.HTTP.Host, " \t:/") {
		return fmt.Errorf("invalid HTTP host: %s", c.HTTP.Host)
	}

	if c.GRPC.Enabled {
		if c.GRPC.Port < 1 || c.GRPC.Port > 65535 {
			return fmt.Errorf("invalid gRPC port: %d", c.GRPC.Port)
		}
		if c.GRPC.Port == c.HTTP.Port {
			return fmt.Errorf("gRPC port %d collides with HTTP port", c.GRPC.Port)
		}
	}

	durations := map[string]time.Duration{
		"HTTP_READ_TIMEOUT":     c.HTTP.ReadTimeout,
		"HTTP_WRITE_TIMEOUT":    c.HTTP.WriteTimeout,
		"HTTP_IDLE_TIMEOUT":     c.HTTP.IdleTimeout,
		"HEALTH_CHECK_INTERVAL": c.HealthCheckInterval,
		"TIMEOUT_SHUTDOWN":      c.ShutdownTimeout,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return net.JoinHostPort(c.HTTP.Host, strconv.Itoa(c.HTTP.Port))
}

// GetGRPCAddr returns the gRPC server address
func (c *Config) GetGRPCAddr() string {
	return net.JoinHostPort(c.HTTP.Host, strconv.Itoa(c.GRPC.Port))
}
