package registers

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/BobDeng1974/DNNCam/internal/audit"
	"github.com/BobDeng1974/DNNCam/internal/lens"
	"github.com/BobDeng1974/DNNCam/internal/logging"
)

// Store serves register reads and writes from an immutable command table.
type Store struct {
	table       *lens.Table
	logger      *zap.Logger
	auditLogger AuditLogger
}

// Compile-time assertion that Store implements Port
var _ Port = (*Store)(nil)

// Option configures a Store at construction.
type Option func(*Store)

// WithAuditLogger sets the audit sink. A nil sink disables auditing.
func WithAuditLogger(a AuditLogger) Option {
	return func(s *Store) {
		s.auditLogger = a
	}
}

// NewStore creates a store over table. The store is immutable once built.
func NewStore(table *lens.Table, logger *zap.Logger, opts ...Option) (*Store, error) {
	if table == nil {
		return nil, fmt.Errorf("command table is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{table: table, logger: logger.Named("registers")}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Table returns the command table the store dispatches through.
func (s *Store) Table() *lens.Table {
	return s.table
}

// Validate reports whether the block [address, address+count) lies inside the
// table interval. Empty blocks are rejected.
func (s *Store) Validate(address, count int) bool {
	if count < 1 || address < s.table.Min() {
		return false
	}
	// Compare without forming address+count so huge counts cannot overflow.
	return address <= s.table.Max() && count <= s.table.Max()-address+1
}

// GetValue reads one address. Unmapped addresses echo the address and
// descriptors without a reader yield 0. No range check is done here.
func (s *Store) GetValue(ctx context.Context, address int) (int, error) {
	d, ok := s.table.Lookup(address)
	if !ok {
		return address, nil
	}
	read, ok := d.Reader()
	if !ok {
		return 0, nil
	}

	value, err := read(ctx)
	if err != nil {
		s.logFailure(ctx, "read", address, d.Name, 0, err)
		s.audit(ctx, audit.ActionRead, address, d.Name, 0, err)
		return 0, &AccessError{Op: "read", Address: address, Name: d.Name, Err: err}
	}
	return value, nil
}

// SetValue writes one address. Writes to addresses without a writer are
// ignored.
func (s *Store) SetValue(ctx context.Context, address, value int) error {
	d, ok := s.table.Lookup(address)
	if !ok {
		return nil
	}
	write, ok := d.Writer()
	if !ok {
		return nil
	}

	err := write(ctx, value)
	s.audit(ctx, audit.ActionWrite, address, d.Name, value, err)
	if err != nil {
		s.logFailure(ctx, "write", address, d.Name, value, err)
		return &AccessError{Op: "write", Address: address, Name: d.Name, Err: err}
	}

	logging.WithContext(ctx, s.logger).Debug("register written",
		zap.Int(logging.FieldAddress, address),
		zap.String(logging.FieldRegister, d.Name),
		zap.Int(logging.FieldValue, value))
	return nil
}

// GetValues reads count consecutive addresses. The first failing read fails
// the block.
func (s *Store) GetValues(ctx context.Context, address, count int) ([]int, error) {
	if !s.Validate(address, count) {
		return nil, fmt.Errorf("%w: address %d count %d outside [%d, %d]",
			ErrOutOfRange, address, count, s.table.Min(), s.table.Max())
	}

	values := make([]int, 0, count)
	for i := 0; i < count; i++ {
		v, err := s.GetValue(ctx, address+i)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// SetValues writes values to consecutive addresses in order. A failed offset
// does not stop later ones; every failure is returned combined.
func (s *Store) SetValues(ctx context.Context, address int, values []int) error {
	var errs error
	for i, v := range values {
		errs = multierr.Append(errs, s.SetValue(ctx, address+i, v))
	}
	return errs
}

func (s *Store) logFailure(ctx context.Context, op string, address int, name string, value int, err error) {
	logging.WithContext(ctx, s.logger).Error("register access failed",
		zap.String(logging.FieldOperation, op),
		zap.Int(logging.FieldAddress, address),
		zap.String(logging.FieldRegister, name),
		zap.Int(logging.FieldValue, value),
		zap.Error(err))
}

func (s *Store) audit(ctx context.Context, action string, address int, name string, value int, err error) {
	if s.auditLogger == nil {
		return
	}
	s.auditLogger.LogAccess(ctx, action, address, name, value, err)
}
