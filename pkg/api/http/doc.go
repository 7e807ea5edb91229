// Package http provides the HTTP API implementation.
//
// The HTTP server exposes endpoints for:
//   - GET /name and GET /version, returning fixed plain-text values
//   - Health checks
//   - Prometheus metrics
package http
