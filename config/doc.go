// Package config loads the monitor options from defaults, an optional YAML
// file, MONITOR_* environment variables and command line flags, and validates
// them. It also renders the startup banner, which reports credentials only as
// a boolean.
package config
