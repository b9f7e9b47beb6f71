// Package config handles loading and validating prelogate configuration.
//
// This package manages:
//   - Loading configuration from an optional YAML file
//   - Overriding with PRELOGATE_* environment variables
//   - Validation of every section, reported together
//
// Security Considerations:
//   - Broker passwords and InfluxDB tokens should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load(os.Getenv("PRELOGATE_CONFIG"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Solver.Workers)
package config
