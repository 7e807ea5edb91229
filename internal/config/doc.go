// Package config provides configuration management for the info service.
//
// Configuration is loaded from environment variables using the env package.
// Defaults bind the HTTP listener to 0.0.0.0:5000. The served name and
// version are not configurable.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("HTTP server will listen on %s\n", cfg.GetHTTPAddr())
package config
