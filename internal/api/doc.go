// Package api implements the gateway maintenance HTTP API.
//
// Endpoints live under /api/v1 and answer with a unified JSON envelope.
// Register reads and writes go through the same store as the Modbus
// listener.
package api
