// Package config loads host configuration from YAML files and environment
// variables.
//
// Configuration is resolved in layers: a config.yml file provides the base,
// a .env file (when present) is loaded into the process environment, and
// environment variables override both. Hosts embed or use Config directly
// and call ApplyDefaults and Validate before wiring components.
package config
