// Package info holds the fixed values served by the service.
package info

const (
	// Name is returned by GET /name
	Name = "Devops Bharat"

	// Version is returned by GET /version
	Version = "v1.0.0.0"
)

// Build metadata is set by build flags, for example:
//
//	go build -ldflags "-X github.com/aescanero/devops-info/internal/info.BuildVersion=1.2.3"
//
// It describes the binary, not the served version.
var (
	BuildVersion = "dev"
	BuildTime    = "unknown"
)
