// Package config loads, validates, and defaults the TOML configuration
// shared by all vadseg commands. Load resolves the config file location
// (explicit flag, ~/.config/vadseg/config.toml, or ./vadseg.toml), expands
// home-relative paths, and rejects out-of-range values before any command
// runs.
package config
