// Package config loads the client configuration with viper. Values come from
// defaults, an optional YAML/JSON/TOML file and MDS_* environment variables,
// in increasing order of precedence.
package config
