// Package audit implements the append-only audit trail of the gateway.
//
// Every register write and every failed register access is recorded as one
// JSON line with the actor, request ID, address, value and normalized
// outcome code. The file is size-rotated.
package audit
