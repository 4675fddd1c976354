// Package config loads the gateway configuration.
//
// Values come from built-in defaults, then an optional YAML file, then
// LENSGW_* environment variables. The merged result is validated before use.
package config
