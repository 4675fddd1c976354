package registers

import (
	"context"
	"errors"

	"github.com/BobDeng1974/DNNCam/internal/audit"
)

// Port is the register interface the transports need from the store.
type Port interface {
	Validate(address, count int) bool
	GetValue(ctx context.Context, address int) (int, error)
	SetValue(ctx context.Context, address, value int) error
	GetValues(ctx context.Context, address, count int) ([]int, error)
	SetValues(ctx context.Context, address int, values []int) error
}

// AuditLogger records register accesses.
type AuditLogger interface {
	LogAccess(ctx context.Context, action string, address int, name string, value int, err error)
}

// Compile-time assertion that audit.Logger implements AuditLogger
var _ AuditLogger = (*audit.Logger)(nil)

// ErrOutOfRange indicates a block that does not fit the address interval.
var ErrOutOfRange = errors.New("INVALID_RANGE")

// ErrRemoteUnavailable indicates a reader or writer failed against the
// backend.
var ErrRemoteUnavailable = errors.New("UNAVAILABLE")
