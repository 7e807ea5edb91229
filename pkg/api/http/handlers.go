package http

import (
	"net/http"
	"time"

	"github.com/aescanero/devops-info/internal/info"
	"github.com/gin-gonic/gin"
)

// HealthResponse represents a health check response
type HealthResponse struct {
	Status        string  `json:"status"`
	Name          string  `json:"name"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Timestamp     string  `json:"timestamp"`
}

// handleName returns the service name as plain text
func (s *Server) handleName(c *gin.Context) {
	c.String(http.StatusOK, info.Name)
}

// handleVersion returns the service version as plain text
func (s *Server) handleVersion(c *gin.Context) {
	c.String(http.StatusOK, info.Version)
}

// handleOptions advertises the allowed methods
func handleOptions(c *gin.Context) {
	c.Header("Allow", AllowedMethods)
	c.Status(http.StatusOK)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	if s.monitor == nil {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "serving",
			Name:      info.Name,
			Version:   info.Version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	status := s.monitor.GetStatus()

	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, HealthResponse{
		Status:        string(status.State),
		Name:          info.Name,
		Version:       info.Version,
		UptimeSeconds: status.Uptime.Seconds(),
		Timestamp:     status.Timestamp.UTC().Format(time.RFC3339),
	})
}
