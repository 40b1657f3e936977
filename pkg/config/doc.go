// Package config provides configuration management for Portcullis.
//
// This package handles loading and validating Portcullis server configuration
// from environment variables and configuration files.
//
// # Configuration Sources
//
// Configuration is layered, later sources winning:
//
//   - Built-in defaults
//   - $PORTCULLIS_CONFIG_PATH/portcullis.yml (default /etc/portcullis)
//   - Environment variables (PORTCULLIS_<ATTRIBUTE>)
//
// The source of every attribute is tracked and shown by
// `portcullisctl configuration show`.
//
// # Key Configuration Options
//
//   - PORTCULLIS_SECRET_KEY: Token signing key (required)
//   - PORTCULLIS_TOKEN_TTL: Default token lifetime in seconds
//   - PORTCULLIS_LOG_LEVEL: Logging verbosity
//   - DATABASE_URL: Database connection
//   - PORT: Server listen port
package config
