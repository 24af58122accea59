// Package config handles configuration management for dupes.
// It supports loading configuration from multiple sources including
// TOML files, environment variables, and command-line flags.
//
// Layers, lowest precedence first:
//
//	embedded defaults
//	$XDG_CONFIG_HOME/dupes/config.toml
//	<root>/.dupes.toml
//	--config file
//	DUPES_* environment variables
//
// Command-line flags are applied by the caller on top of the result.
package config
