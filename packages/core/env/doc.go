// Package env reads GIRAF_* settings from .env files and the process
// environment.
//
// Keys are returned without the GIRAF_ prefix (GIRAF_BASE_URL becomes
// BASE_URL) and are turned into configuration by config.FromEnv.
package env
