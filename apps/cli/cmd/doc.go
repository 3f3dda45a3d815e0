// Package cmd implements the giraftest CLI commands using Cobra.
//
// Available commands:
//   - run: Execute the GIRAF API suites and report each case
//   - list: Display suites, cases, tags and prerequisites
//   - mock: Serve a fake GIRAF API backed by an in-memory store
//   - history: List recorded runs and compare their outcomes
//   - init: Write a starter config file and .env.example
//   - version: Show giraftest version information
//   - completion: Generate shell completion scripts
//
// Configuration is layered as defaults, config file, GIRAF_* environment
// variables (including a .env file) and command-line flags, later layers
// taking precedence.
package cmd
