// Package logging builds the gateway's zap loggers and the structured fields
// shared across packages.
package logging
