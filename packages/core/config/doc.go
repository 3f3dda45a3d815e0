// Package config handles configuration loading and management for giraftest.
//
// It provides functionality for:
//   - Loading giraftest.config.json or giraftest.yaml
//   - Default values, including the seeded GIRAF accounts
//   - Overrides from GIRAF_* environment variables
//
// Layers are combined with Merge, later layers winning:
// defaults, config file, environment, command-line flags.
package config
