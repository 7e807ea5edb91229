// Package health tracks the lifecycle of the info service.
//
// The monitor moves one way through starting, serving and draining. It:
//   - Notifies listeners (such as the gRPC health server) on each transition
//   - Runs a heartbeat that logs status and records uptime
//   - Backs the /health endpoint
package health
